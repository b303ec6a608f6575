package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"sitecrew/internal/domain/billing"
	"sitecrew/internal/domain/core"
	"sitecrew/internal/domain/task"
	"sitecrew/internal/platform/config"
)

const (
	JobRecurrence  = "task_recurrence"
	JobInvoiceSync = "invoice_sync"
)

type Service struct {
	DB       *pgxpool.Pool
	Cfg      config.Config
	Tasks    *task.Store
	Invoices *billing.Service
	queue    chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, tasks *task.Store, invoices *billing.Service) *Service {
	return &Service{
		DB:       db,
		Cfg:      cfg,
		Tasks:    tasks,
		Invoices: invoices,
		queue:    make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.RecurrenceInterval > 0 {
		go s.schedule(ctx, s.Cfg.RecurrenceInterval, func() {
			s.Enqueue(JobRecurrence, s.expandRecurrences)
		})
	}
	if s.Cfg.InvoiceSyncInterval > 0 {
		go s.schedule(ctx, s.Cfg.InvoiceSyncInterval, func() {
			s.Enqueue(JobInvoiceSync, s.generateInvoices)
		})
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) schedule(ctx context.Context, interval time.Duration, fire func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fire()
		}
	}
}

// expandRecurrences clones recurring template tasks forward up to the
// configured horizon.
func (s *Service) expandRecurrences(ctx context.Context) (any, error) {
	templates, err := s.Tasks.ListRecurringTemplates(ctx)
	if err != nil {
		return nil, err
	}

	horizon := time.Now().Add(s.Cfg.RecurrenceHorizon)
	created := 0
	for _, tmpl := range templates {
		if tmpl.WorkDate == nil {
			continue
		}
		until := horizon
		if tmpl.RecurrenceUntil != nil && tmpl.RecurrenceUntil.Before(until) {
			until = *tmpl.RecurrenceUntil
		}
		after := *tmpl.WorkDate
		if tmpl.LastExpanded != nil && tmpl.LastExpanded.After(after) {
			after = *tmpl.LastExpanded
		}
		for _, occurrence := range task.NextOccurrences(tmpl.Recurrence, *tmpl.WorkDate, after, until) {
			if _, err := s.Tasks.CloneForDate(ctx, tmpl.TaskID, occurrence); err != nil {
				slog.Warn("recurrence clone failed", "taskId", tmpl.TaskID, "workDate", occurrence, "err", err)
				continue
			}
			created++
		}
	}
	return map[string]any{"templates": len(templates), "created": created}, nil
}

// generateInvoices drafts an invoice for the previous calendar month for each
// active project that was billed in that month and has no invoice covering it.
func (s *Service) generateInvoices(ctx context.Context) (any, error) {
	now := time.Now().UTC()
	periodEnd := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	periodStart := periodEnd.AddDate(0, -1, 0)

	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT b.project_id
    FROM billing_records b
    JOIN projects p ON b.project_id = p.id
    WHERE p.status = $1
      AND b.created_at >= $2 AND b.created_at < $3
      AND NOT EXISTS (
        SELECT 1 FROM invoices i
        WHERE i.project_id = b.project_id AND i.period_start = $2::date
      )
  `, core.ProjectStatusActive, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projectIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		projectIDs = append(projectIDs, id)
	}

	generated := 0
	for _, projectID := range projectIDs {
		if _, err := s.Invoices.GenerateInvoice(ctx, projectID, &periodStart, &periodEnd); err != nil {
			slog.Warn("invoice generation failed", "projectId", projectID, "err", err)
			continue
		}
		generated++
	}
	return map[string]any{"candidates": len(projectIDs), "generated": generated}, nil
}
