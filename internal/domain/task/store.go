package task

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sitecrew/internal/domain/attendance"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const taskColumns = `
    id, project_id,
    COALESCE(milestone_id::text, ''),
    name,
    COALESCE(description, ''),
    status, progress, work_date, recurrence, recurrence_until,
    COALESCE(parent_task_id::text, ''),
    created_at, updated_at`

func (s *Store) Get(ctx context.Context, taskID string) (*Task, error) {
	row := s.DB.QueryRow(ctx, "SELECT"+taskColumns+" FROM tasks WHERE id = $1", taskID)
	var t Task
	err := row.Scan(&t.ID, &t.ProjectID, &t.MilestoneID, &t.Name, &t.Description,
		&t.Status, &t.Progress, &t.WorkDate, &t.Recurrence, &t.RecurrenceUntil,
		&t.ParentTaskID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) ListForProject(ctx context.Context, projectID string, start, end *time.Time, limit, offset int) ([]Task, error) {
	query := "SELECT" + taskColumns + " FROM tasks WHERE project_id = $1"
	args := []any{projectID}
	if start != nil {
		args = append(args, *start)
		query += " AND work_date >= $" + strconv.Itoa(len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += " AND work_date <= $" + strconv.Itoa(len(args))
	}
	args = append(args, limit, offset)
	query += " ORDER BY work_date NULLS LAST, created_at LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *Store) Create(ctx context.Context, t Task) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO tasks (project_id, milestone_id, name, description, status, progress, work_date, recurrence, recurrence_until, parent_task_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `, t.ProjectID, nullIfEmpty(t.MilestoneID), t.Name, t.Description, t.Status, t.Progress,
		t.WorkDate, t.Recurrence, t.RecurrenceUntil, nullIfEmpty(t.ParentTaskID)).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, t Task) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE tasks
    SET milestone_id = $1, name = $2, description = $3, status = $4, progress = $5,
        work_date = $6, recurrence = $7, recurrence_until = $8, updated_at = now()
    WHERE id = $9
  `, nullIfEmpty(t.MilestoneID), t.Name, t.Description, t.Status, t.Progress,
		t.WorkDate, t.Recurrence, t.RecurrenceUntil, t.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, taskID, status string, progress int) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE tasks SET status = $1, progress = $2, updated_at = now() WHERE id = $3
  `, status, progress, taskID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *Store) ListAssignments(ctx context.Context, taskID string) ([]Assignment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, task_id, member_id, attendance_type, COALESCE(hours, 0), created_at
    FROM task_assignments
    WHERE task_id = $1
    ORDER BY created_at
  `, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.MemberID, &a.AttendanceType, &a.Hours, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

// defaultedAssignment fills in the attendance classification so every stored
// assignment carries one from creation.
func defaultedAssignment(a Assignment) Assignment {
	if a.AttendanceType == "" {
		a.AttendanceType = attendance.TypeFullDay
	}
	return a
}

func (s *Store) UpsertAssignment(ctx context.Context, a Assignment) (string, error) {
	a = defaultedAssignment(a)
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO task_assignments (task_id, member_id, attendance_type, hours)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (task_id, member_id)
    DO UPDATE SET attendance_type = EXCLUDED.attendance_type, hours = EXCLUDED.hours
    RETURNING id
  `, a.TaskID, a.MemberID, a.AttendanceType, nullIfZero(a.Hours)).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) RemoveAssignment(ctx context.Context, taskID, memberID string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM task_assignments WHERE task_id = $1 AND member_id = $2
  `, taskID, memberID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// ListRecurringTemplates returns tasks that drive recurrence expansion,
// together with the latest work date already expanded for each template.
func (s *Store) ListRecurringTemplates(ctx context.Context) ([]RecurringTemplate, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT t.id, t.project_id, t.name, t.work_date, t.recurrence, t.recurrence_until,
           COALESCE(MAX(c.work_date), t.work_date)
    FROM tasks t
    LEFT JOIN tasks c ON c.parent_task_id = t.id
    WHERE t.recurrence <> 'none' AND t.parent_task_id IS NULL AND t.work_date IS NOT NULL
    GROUP BY t.id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []RecurringTemplate
	for rows.Next() {
		var tmpl RecurringTemplate
		if err := rows.Scan(&tmpl.TaskID, &tmpl.ProjectID, &tmpl.Name, &tmpl.WorkDate,
			&tmpl.Recurrence, &tmpl.RecurrenceUntil, &tmpl.LastExpanded); err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

type RecurringTemplate struct {
	TaskID          string
	ProjectID       string
	Name            string
	WorkDate        *time.Time
	Recurrence      string
	RecurrenceUntil *time.Time
	LastExpanded    *time.Time
}

// CloneForDate copies a template task (and its assignments) to a new work date.
func (s *Store) CloneForDate(ctx context.Context, templateID string, workDate time.Time) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO tasks (project_id, milestone_id, name, description, status, progress, work_date, recurrence, parent_task_id)
    SELECT project_id, milestone_id, name, description, 'todo', 0, $2, 'none', id
    FROM tasks
    WHERE id = $1
    RETURNING id
  `, templateID, workDate).Scan(&id)
	if err != nil {
		return "", err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO task_assignments (task_id, member_id, attendance_type, hours)
    SELECT $2, member_id, attendance_type, hours
    FROM task_assignments
    WHERE task_id = $1
  `, templateID, id)
	return id, err
}

func scanTasks(rows pgx.Rows) ([]Task, error) {
	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.MilestoneID, &t.Name, &t.Description,
			&t.Status, &t.Progress, &t.WorkDate, &t.Recurrence, &t.RecurrenceUntil,
			&t.ParentTaskID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullIfZero(value float64) any {
	if value == 0 {
		return nil
	}
	return value
}
