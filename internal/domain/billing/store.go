package billing

import (
	"context"
	"errors"
	"fmt"
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

func (s *Store) ListRecords(ctx context.Context, projectID string, filter RecordFilter) ([]Record, error) {
	query := `
    SELECT b.id, b.member_id, COALESCE(m.first_name || ' ' || m.last_name, ''),
           b.task_id, b.project_id, b.attendance_type, b.hours, b.rate, b.amount, b.created_at
    FROM billing_records b
    LEFT JOIN members m ON b.member_id = m.id
    WHERE b.project_id = $1
  `
	args := []any{projectID}
	if filter.MemberID != "" {
		args = append(args, filter.MemberID)
		query += fmt.Sprintf(" AND b.member_id = $%d", len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += fmt.Sprintf(" AND b.created_at >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += fmt.Sprintf(" AND b.created_at <= $%d", len(args))
	}
	query += " ORDER BY b.created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		if err := rows.Scan(&record.ID, &record.MemberID, &record.MemberName, &record.TaskID,
			&record.ProjectID, &record.AttendanceType, &record.Hours, &record.Rate,
			&record.Amount, &record.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *Store) GetInvoice(ctx context.Context, invoiceID string) (*Invoice, error) {
	var invoice Invoice
	err := s.DB.QueryRow(ctx, `
    SELECT id, project_id, invoice_number, status, period_start, period_end,
           total, currency, COALESCE(file_url, ''), issued_at, paid_at, created_at
    FROM invoices
    WHERE id = $1
  `, invoiceID).Scan(&invoice.ID, &invoice.ProjectID, &invoice.InvoiceNumber, &invoice.Status,
		&invoice.PeriodStart, &invoice.PeriodEnd, &invoice.Total, &invoice.Currency,
		&invoice.FileURL, &invoice.IssuedAt, &invoice.PaidAt, &invoice.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT id, invoice_id, COALESCE(member_id::text, ''), description, quantity, amount
    FROM invoice_lines
    WHERE invoice_id = $1
    ORDER BY description
  `, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line InvoiceLine
		if err := rows.Scan(&line.ID, &line.InvoiceID, &line.MemberID, &line.Description, &line.Quantity, &line.Amount); err != nil {
			return nil, err
		}
		invoice.Lines = append(invoice.Lines, line)
	}
	return &invoice, nil
}

func (s *Store) ListInvoices(ctx context.Context, projectID, status string) ([]Invoice, error) {
	query := `
    SELECT id, project_id, invoice_number, status, period_start, period_end,
           total, currency, COALESCE(file_url, ''), issued_at, paid_at, created_at
    FROM invoices
    WHERE 1=1
  `
	var args []any
	if projectID != "" {
		args = append(args, projectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var invoice Invoice
		if err := rows.Scan(&invoice.ID, &invoice.ProjectID, &invoice.InvoiceNumber, &invoice.Status,
			&invoice.PeriodStart, &invoice.PeriodEnd, &invoice.Total, &invoice.Currency,
			&invoice.FileURL, &invoice.IssuedAt, &invoice.PaidAt, &invoice.CreatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, nil
}

// CreateInvoice inserts the invoice and its lines in one transaction.
func (s *Store) CreateInvoice(ctx context.Context, invoice Invoice) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO invoices (project_id, invoice_number, status, period_start, period_end, total, currency)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, invoice.ProjectID, invoice.InvoiceNumber, InvoiceStatusDraft,
		invoice.PeriodStart, invoice.PeriodEnd, invoice.Total, invoice.Currency).Scan(&id); err != nil {
		return "", err
	}

	for _, line := range invoice.Lines {
		if _, err := tx.Exec(ctx, `
      INSERT INTO invoice_lines (invoice_id, member_id, description, quantity, amount)
      VALUES ($1,$2,$3,$4,$5)
    `, id, nullIfEmpty(line.MemberID), line.Description, line.Quantity, line.Amount); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateStatus(ctx context.Context, invoiceID, status string, at time.Time) error {
	column := ""
	switch status {
	case InvoiceStatusSent:
		column = "issued_at"
	case InvoiceStatusPaid:
		column = "paid_at"
	default:
		return ErrInvalidTransition
	}
	tag, err := s.DB.Exec(ctx,
		"UPDATE invoices SET status = $1, "+column+" = $2 WHERE id = $3",
		status, at, invoiceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) SetFileURL(ctx context.Context, invoiceID, fileURL string) error {
	tag, err := s.DB.Exec(ctx, `UPDATE invoices SET file_url = $1 WHERE id = $2`, fileURL, invoiceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

// InvoiceExistsForPeriod reports whether the project already has an invoice
// keyed on this period start. Natural-key guard against double generation.
func (s *Store) InvoiceExistsForPeriod(ctx context.Context, projectID string, periodStart time.Time) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM invoices
    WHERE project_id = $1 AND period_start = $2::date
  `, projectID, periodStart).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextInvoiceNumber returns a sequential number scoped to the current year.
func (s *Store) NextInvoiceNumber(ctx context.Context, now time.Time) (string, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(*) FROM invoices
    WHERE created_at >= date_trunc('year', $1::timestamptz)
  `, now).Scan(&count)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%04d", now.Year(), count+1), nil
}

func (s *Store) ProjectHeader(ctx context.Context, projectID string) (name, currency string, err error) {
	err = s.DB.QueryRow(ctx, `
    SELECT name, COALESCE(currency, 'USD')
    FROM projects
    WHERE id = $1
  `, projectID).Scan(&name, &currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", fmt.Errorf("project %s not found", projectID)
	}
	return name, currency, err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
