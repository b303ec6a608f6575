package budget

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) WageConfig(ctx context.Context, memberID, projectID string) (WageBasis, error) {
	var basis WageBasis
	var dailyRate, monthlySalary *float64
	err := s.DB.QueryRow(ctx, `
    SELECT member_id, project_id, wage_type, daily_rate, monthly_salary, working_days_per_month
    FROM wage_configs
    WHERE member_id = $1 AND project_id = $2
  `, memberID, projectID).Scan(&basis.MemberID, &basis.ProjectID, &basis.WageType,
		&dailyRate, &monthlySalary, &basis.WorkingDaysPerMonth)
	if errors.Is(err, pgx.ErrNoRows) {
		return WageBasis{}, ErrNoWageConfig
	}
	if err != nil {
		return WageBasis{}, err
	}
	// Absent rate columns count as zero rather than failing the lookup.
	if dailyRate != nil {
		basis.DailyRate = decimal.NewFromFloat(*dailyRate)
	}
	if monthlySalary != nil {
		basis.MonthlySalary = decimal.NewFromFloat(*monthlySalary)
	}
	return basis, nil
}

func (s *Store) UpsertWageConfig(ctx context.Context, basis WageBasis) error {
	daily, _ := basis.DailyRate.Float64()
	monthly, _ := basis.MonthlySalary.Float64()
	_, err := s.DB.Exec(ctx, `
    INSERT INTO wage_configs (member_id, project_id, wage_type, daily_rate, monthly_salary, working_days_per_month)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (member_id, project_id)
    DO UPDATE SET wage_type = EXCLUDED.wage_type,
                  daily_rate = EXCLUDED.daily_rate,
                  monthly_salary = EXCLUDED.monthly_salary,
                  working_days_per_month = EXCLUDED.working_days_per_month,
                  updated_at = now()
  `, basis.MemberID, basis.ProjectID, basis.WageType, daily, monthly, basis.WorkingDaysPerMonth)
	return err
}

func (s *Store) ListWageConfigs(ctx context.Context, projectID string) ([]WageBasis, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT member_id, project_id, wage_type,
           COALESCE(daily_rate, 0),
           COALESCE(monthly_salary, 0),
           working_days_per_month
    FROM wage_configs
    WHERE project_id = $1
  `, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []WageBasis
	for rows.Next() {
		var basis WageBasis
		var daily, monthly float64
		if err := rows.Scan(&basis.MemberID, &basis.ProjectID, &basis.WageType, &daily, &monthly, &basis.WorkingDaysPerMonth); err != nil {
			return nil, err
		}
		basis.DailyRate = decimal.NewFromFloat(daily)
		basis.MonthlySalary = decimal.NewFromFloat(monthly)
		configs = append(configs, basis)
	}
	return configs, nil
}

func (s *Store) TasksInRange(ctx context.Context, projectID string, start, end *time.Time) ([]WorkUnit, error) {
	query := `
    SELECT id, name, work_date
    FROM tasks
    WHERE project_id = $1 AND status <> 'cancelled'
  `
	args := []any{projectID}
	if start != nil {
		args = append(args, *start)
		query += " AND work_date >= $2"
	}
	if end != nil {
		args = append(args, *end)
		if start != nil {
			query += " AND work_date <= $3"
		} else {
			query += " AND work_date <= $2"
		}
	}
	query += " ORDER BY work_date NULLS LAST, created_at"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []WorkUnit
	for rows.Next() {
		var unit WorkUnit
		if err := rows.Scan(&unit.TaskID, &unit.Name, &unit.WorkDate); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, nil
}

// TaskLines joins assignments with their attendance records; the record's
// classification wins over the assignment default when one was logged.
func (s *Store) TaskLines(ctx context.Context, taskID string) ([]LineInput, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT ta.member_id,
           COALESCE(ar.attendance_type, ta.attendance_type),
           COALESCE(ar.hours, ta.hours, 0),
           ar.id IS NOT NULL,
           COALESCE(ar.approved, false)
    FROM task_assignments ta
    LEFT JOIN attendance_records ar ON ar.task_id = ta.task_id AND ar.member_id = ta.member_id
    WHERE ta.task_id = $1
  `, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []LineInput
	for rows.Next() {
		var line LineInput
		if err := rows.Scan(&line.MemberID, &line.AttendanceType, &line.Hours, &line.HasRecord, &line.Approved); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *Store) TaskProject(ctx context.Context, taskID string) (string, error) {
	var projectID string
	err := s.DB.QueryRow(ctx, "SELECT project_id FROM tasks WHERE id = $1", taskID).Scan(&projectID)
	return projectID, err
}

func (s *Store) ProjectAllocation(ctx context.Context, projectID string) (decimal.Decimal, error) {
	var allocated float64
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(budget_allocated, 0) FROM projects WHERE id = $1
  `, projectID).Scan(&allocated)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(allocated), nil
}

func (s *Store) MemberName(ctx context.Context, memberID string) (string, error) {
	var first, last string
	err := s.DB.QueryRow(ctx, "SELECT first_name, last_name FROM members WHERE id = $1", memberID).Scan(&first, &last)
	if err != nil {
		return "", err
	}
	return first + " " + last, nil
}

func (s *Store) InsertBillingRecord(ctx context.Context, record BillingRecord) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO billing_records (member_id, task_id, project_id, attendance_type, hours, rate, amount)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, record.MemberID, record.TaskID, record.ProjectID, record.AttendanceType,
		record.Hours, record.Rate, record.Amount)
	return err
}
