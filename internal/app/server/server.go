package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"sitecrew/internal/domain/attendance"
	"sitecrew/internal/domain/audit"
	"sitecrew/internal/domain/auth"
	"sitecrew/internal/domain/billing"
	"sitecrew/internal/domain/budget"
	"sitecrew/internal/domain/core"
	"sitecrew/internal/domain/notifications"
	"sitecrew/internal/domain/reports"
	"sitecrew/internal/domain/task"
	"sitecrew/internal/platform/config"
	"sitecrew/internal/platform/db"
	"sitecrew/internal/platform/email"
	"sitecrew/internal/platform/jobs"
	"sitecrew/internal/platform/metrics"
	"sitecrew/internal/transport/http/api"
	attendancehandler "sitecrew/internal/transport/http/handlers/attendance"
	audithandler "sitecrew/internal/transport/http/handlers/audit"
	authhandler "sitecrew/internal/transport/http/handlers/auth"
	billinghandler "sitecrew/internal/transport/http/handlers/billing"
	budgethandler "sitecrew/internal/transport/http/handlers/budget"
	corehandler "sitecrew/internal/transport/http/handlers/core"
	notificationshandler "sitecrew/internal/transport/http/handlers/notifications"
	reportshandler "sitecrew/internal/transport/http/handlers/reports"
	taskhandler "sitecrew/internal/transport/http/handlers/task"
	"sitecrew/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *db.Pool
	Router http.Handler
}

func Run() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	authStore := auth.NewStore(pool)
	coreStore := core.NewStore(pool)
	taskStore := task.NewStore(pool)
	attendanceStore := attendance.NewStore(pool)
	budgetStore := budget.NewStore(pool)
	billingStore := billing.NewStore(pool)
	reportsStore := reports.NewStore(pool)

	budgetService := budget.NewService(budgetStore)
	billingService := billing.NewService(billingStore, budgetService)
	reportsService := reports.NewService(reportsStore)
	notifyService := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom)
	auditService := audit.New(pool)

	jobService := jobs.New(pool, cfg, taskStore, billingService)
	jobService.Start(ctx)

	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	if cfg.RateLimitPerMinute > 0 {
		router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	}
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authStore, cfg.JWTSecret, notifyService).RegisterRoutes(r)
		corehandler.NewHandler(coreStore, auditService).RegisterRoutes(r)
		taskhandler.NewHandler(taskStore, coreStore, authStore, notifyService).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceStore, budgetService, coreStore, authStore, notifyService).RegisterRoutes(r)
		budgethandler.NewHandler(budgetStore, budgetService, authStore).RegisterRoutes(r)
		billinghandler.NewHandler(billingStore, billingService, authStore, notifyService).RegisterRoutes(r)
		reportshandler.NewHandler(reportsService, budgetService, authStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notifyService).RegisterRoutes(r)
		audithandler.NewHandler(auditService, authStore).RegisterRoutes(r)

		if cfg.MetricsEnabled {
			r.With(middleware.RequirePermission(auth.PermSystemAdmin, authStore)).
				Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
					api.Success(w, collector.Snapshot(), middleware.GetRequestID(req.Context()))
				})
		}
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	log.Printf("sitecrew server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// spaHandler serves the built frontend, falling back to index.html so
// client-side routes resolve on hard refresh.
type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
