package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"sitecrew/internal/domain/billing"
	"sitecrew/internal/domain/core"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) MemberIDByUserID(ctx context.Context, userID string) (string, error) {
	var memberID string
	err := s.DB.QueryRow(ctx, "SELECT id FROM members WHERE user_id = $1", userID).Scan(&memberID)
	if err != nil {
		return "", err
	}
	return memberID, nil
}

// WorkerActivity aggregates a member's attendance since the given date:
// hour_based hours plus day-equivalents of full/half days.
func (s *Store) WorkerActivity(ctx context.Context, memberID string, since time.Time) (hours float64, daysWorked, pending int, err error) {
	err = s.DB.QueryRow(ctx, `
    SELECT
      COALESCE(SUM(hours) FILTER (WHERE attendance_type = 'hour_based'), 0),
      COUNT(1) FILTER (WHERE attendance_type IN ('full_day','half_day','hour_based')),
      COUNT(1) FILTER (WHERE approved = false)
    FROM attendance_records
    WHERE member_id = $1 AND created_at >= $2
  `, memberID, since).Scan(&hours, &daysWorked, &pending)
	return hours, daysWorked, pending, err
}

func (s *Store) MemberBilledTotal(ctx context.Context, memberID string, since time.Time) (float64, error) {
	var total float64
	if err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(amount), 0) FROM billing_records
    WHERE member_id = $1 AND created_at >= $2
  `, memberID, since).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) PendingApprovals(ctx context.Context) (int, error) {
	var pending int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM attendance_records WHERE approved = false").Scan(&pending); err != nil {
		return 0, err
	}
	return pending, nil
}

func (s *Store) SupervisedProjects(ctx context.Context, memberID string) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM projects WHERE supervisor_id = $1", memberID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) SupervisedSpend(ctx context.Context, memberID string) (float64, error) {
	var spend float64
	if err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(b.amount), 0)
    FROM billing_records b
    JOIN projects p ON b.project_id = p.id
    WHERE p.supervisor_id = $1
  `, memberID).Scan(&spend); err != nil {
		return 0, err
	}
	return spend, nil
}

func (s *Store) ActiveProjects(ctx context.Context) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM projects WHERE status = $1", core.ProjectStatusActive).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) TotalMembers(ctx context.Context) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM members WHERE status = $1", core.MemberStatusActive).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) PortfolioAllocated(ctx context.Context) (float64, error) {
	var allocated float64
	if err := s.DB.QueryRow(ctx, "SELECT COALESCE(SUM(budget_allocated), 0) FROM projects").Scan(&allocated); err != nil {
		return 0, err
	}
	return allocated, nil
}

func (s *Store) PortfolioBilled(ctx context.Context) (float64, error) {
	var billed float64
	if err := s.DB.QueryRow(ctx, "SELECT COALESCE(SUM(amount), 0) FROM billing_records").Scan(&billed); err != nil {
		return 0, err
	}
	return billed, nil
}

func (s *Store) DraftInvoices(ctx context.Context) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM invoices WHERE status = $1", billing.InvoiceStatusDraft).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) ListJobRuns(ctx context.Context, jobType string, limit, offset int) ([]map[string]any, error) {
	query := `
    SELECT id, job_type, status, COALESCE(details_json::text, '{}'), completed_at, created_at
    FROM job_runs
  `
	var args []any
	if jobType != "" {
		args = append(args, jobType)
		query += " WHERE job_type = $1"
	}
	query += " ORDER BY created_at DESC"
	args = append(args, limit, offset)
	query += " LIMIT $" + itoa(len(args)-1) + " OFFSET $" + itoa(len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []map[string]any
	for rows.Next() {
		var id, runType, status, details string
		var completedAt *time.Time
		var createdAt time.Time
		if err := rows.Scan(&id, &runType, &status, &details, &completedAt, &createdAt); err != nil {
			return nil, err
		}
		runs = append(runs, map[string]any{
			"id":          id,
			"jobType":     runType,
			"status":      status,
			"details":     details,
			"completedAt": completedAt,
			"createdAt":   createdAt,
		})
	}
	return runs, nil
}
