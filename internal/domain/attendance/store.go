package attendance

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Get(ctx context.Context, recordID string) (*Record, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, task_id, member_id, attendance_type,
           COALESCE(hours, 0),
           COALESCE(leave_subtype, ''),
           approved,
           COALESCE(approved_by::text, ''),
           work_date, created_at
    FROM attendance_records
    WHERE id = $1
  `, recordID)

	var record Record
	err := row.Scan(&record.ID, &record.TaskID, &record.MemberID, &record.AttendanceType,
		&record.Hours, &record.LeaveSubtype, &record.Approved, &record.ApprovedBy,
		&record.WorkDate, &record.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) ListForTask(ctx context.Context, taskID string) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, task_id, member_id, attendance_type,
           COALESCE(hours, 0),
           COALESCE(leave_subtype, ''),
           approved,
           COALESCE(approved_by::text, ''),
           work_date, created_at
    FROM attendance_records
    WHERE task_id = $1
    ORDER BY created_at
  `, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) ListForMember(ctx context.Context, memberID string, start, end *time.Time, limit, offset int) ([]Record, error) {
	query := `
    SELECT id, task_id, member_id, attendance_type,
           COALESCE(hours, 0),
           COALESCE(leave_subtype, ''),
           approved,
           COALESCE(approved_by::text, ''),
           work_date, created_at
    FROM attendance_records
    WHERE member_id = $1
  `
	args := []any{memberID}
	if start != nil {
		args = append(args, *start)
		query += " AND work_date >= $" + itoa(len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += " AND work_date <= $" + itoa(len(args))
	}
	args = append(args, limit, offset)
	query += " ORDER BY work_date DESC NULLS LAST, created_at DESC LIMIT $" + itoa(len(args)-1) + " OFFSET $" + itoa(len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) ListPending(ctx context.Context, projectID string, limit, offset int) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT ar.id, ar.task_id, ar.member_id, ar.attendance_type,
           COALESCE(ar.hours, 0),
           COALESCE(ar.leave_subtype, ''),
           ar.approved,
           COALESCE(ar.approved_by::text, ''),
           ar.work_date, ar.created_at
    FROM attendance_records ar
    JOIN tasks t ON ar.task_id = t.id
    WHERE t.project_id = $1 AND ar.approved = false
    ORDER BY ar.created_at
    LIMIT $2 OFFSET $3
  `, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Upsert keeps one record per member per task; re-logging replaces the
// previous classification.
func (s *Store) Upsert(ctx context.Context, record Record) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO attendance_records (task_id, member_id, attendance_type, hours, leave_subtype, work_date)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (task_id, member_id)
    DO UPDATE SET attendance_type = EXCLUDED.attendance_type,
                  hours = EXCLUDED.hours,
                  leave_subtype = EXCLUDED.leave_subtype,
                  work_date = EXCLUDED.work_date,
                  approved = false,
                  approved_by = NULL
    RETURNING id
  `, record.TaskID, record.MemberID, record.AttendanceType, nullIfZero(record.Hours),
		nullIfEmpty(record.LeaveSubtype), record.WorkDate).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Approve(ctx context.Context, recordID, approverUserID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance_records
    SET approved = true, approved_by = $1
    WHERE id = $2
  `, approverUserID, recordID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, recordID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM attendance_records WHERE id = $1", recordID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func scanRecords(rows pgx.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var record Record
		if err := rows.Scan(&record.ID, &record.TaskID, &record.MemberID, &record.AttendanceType,
			&record.Hours, &record.LeaveSubtype, &record.Approved, &record.ApprovedBy,
			&record.WorkDate, &record.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
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

func itoa(value int) string {
	return strconv.Itoa(value)
}
