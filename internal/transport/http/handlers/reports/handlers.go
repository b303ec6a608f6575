package reportshandler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sitecrew/internal/domain/auth"
	"sitecrew/internal/domain/budget"
	"sitecrew/internal/domain/reports"
	"sitecrew/internal/requestctx"
	"sitecrew/internal/transport/http/api"
	budgethandler "sitecrew/internal/transport/http/handlers/budget"
	"sitecrew/internal/transport/http/middleware"
	"sitecrew/internal/transport/http/shared"
)

type Handler struct {
	Service *reports.Service
	Budget  *budget.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *reports.Service, budgetSvc *budget.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Budget: budgetSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermReportsRead, h.Perms))
		r.Get("/dashboard/worker", h.handleWorkerDashboard)
		r.Get("/dashboard/supervisor", h.handleSupervisorDashboard)
		r.Get("/dashboard/admin", h.handleAdminDashboard)
		r.Get("/projects/{projectID}/budget.csv", h.handleBudgetCSV)
		r.With(middleware.RequirePermission(auth.PermSystemAdmin, h.Perms)).Get("/jobs", h.handleJobRuns)
	})
}

func (h *Handler) handleWorkerDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	memberID := user.MemberID
	if memberID == "" {
		resolved, err := h.Service.MemberIDByUserID(r.Context(), user.UserID)
		if err != nil {
			api.Fail(w, http.StatusForbidden, "no_member_profile", "no member profile linked to this account", requestID)
			return
		}
		memberID = resolved
	}

	monthStart := startOfMonth(time.Now().UTC())
	hours, days, pending, err := h.Service.WorkerActivity(r.Context(), memberID, monthStart)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", requestID)
		return
	}
	billed, err := h.Service.MemberBilledTotal(r.Context(), memberID, monthStart)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", requestID)
		return
	}
	api.Success(w, reports.WorkerDashboard(hours, days, pending, billed), requestID)
}

func (h *Handler) handleSupervisorDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	if user.RoleName != auth.RoleSupervisor && user.RoleName != auth.RoleAdmin {
		api.Fail(w, http.StatusForbidden, "forbidden", "supervisor role required", requestID)
		return
	}

	pending, err := h.Service.PendingApprovals(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", requestID)
		return
	}
	projects := 0
	spend := 0.0
	if user.MemberID != "" {
		if projects, err = h.Service.SupervisedProjects(r.Context(), user.MemberID); err != nil {
			api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", requestID)
			return
		}
		if spend, err = h.Service.SupervisedSpend(r.Context(), user.MemberID); err != nil {
			api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", requestID)
			return
		}
	}
	api.Success(w, reports.SupervisorDashboard(pending, projects, spend), requestID)
}

func (h *Handler) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	if user.RoleName != auth.RoleAdmin {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin role required", requestID)
		return
	}

	ctx := r.Context()
	activeProjects, err := h.Service.ActiveProjects(ctx)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", requestID)
		return
	}
	totalMembers, err := h.Service.TotalMembers(ctx)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", requestID)
		return
	}
	allocated, err := h.Service.PortfolioAllocated(ctx)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", requestID)
		return
	}
	billed, err := h.Service.PortfolioBilled(ctx)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", requestID)
		return
	}
	drafts, err := h.Service.DraftInvoices(ctx)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", requestID)
		return
	}
	api.Success(w, reports.AdminDashboard(activeProjects, totalMembers, allocated, billed, drafts), requestID)
}

func (h *Handler) handleBudgetCSV(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	projectID := chi.URLParam(r, "projectID")

	filter, v := budgethandler.ReportFilterFromRequest(r)
	if v.HasIssues() {
		v.Respond(w, requestID)
		return
	}

	report, err := h.Budget.ProjectReport(r.Context(), projectID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "budget_export_failed", "failed to build budget report", requestID)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="budget-%s.csv"`, projectID))
	if err := reports.WriteBudgetCSV(w, report); err != nil {
		// Headers already out; nothing useful left to send.
		return
	}
}

func (h *Handler) handleJobRuns(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	query := r.URL.Query()
	page := shared.ParsePagination(r, 50, 200)
	runs, err := h.Service.JobRuns(r.Context(), query.Get("type"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_runs_failed", "failed to list job runs", requestID)
		return
	}
	api.Success(w, runs, requestID)
}

func startOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
