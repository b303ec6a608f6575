package billing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"sitecrew/internal/domain/budget"
)

// ReportSource computes a project budget report. Satisfied by budget.Service.
type ReportSource interface {
	ProjectReport(ctx context.Context, projectID string, filter budget.ReportFilter) (*budget.ProjectReport, error)
}

type Service struct {
	store   StoreAPI
	reports ReportSource

	// OutputDir is where rendered invoice PDFs land.
	OutputDir string
}

func NewService(store StoreAPI, reports ReportSource) *Service {
	return &Service{store: store, reports: reports, OutputDir: "storage/invoices"}
}

// BuildLines turns per-member budget summaries into invoice lines. Quantity
// counts the member's attended day-equivalents; amount is the final budget.
func BuildLines(report *budget.ProjectReport) ([]InvoiceLine, float64) {
	var lines []InvoiceLine
	total := 0.0
	for _, summary := range report.MemberSummaries {
		name := summary.MemberName
		if name == "" {
			name = summary.MemberID
		}
		lines = append(lines, InvoiceLine{
			MemberID:    summary.MemberID,
			Description: fmt.Sprintf("Labor: %s", name),
			Quantity:    float64(summary.TotalFullDays) + 0.5*float64(summary.TotalHalfDays),
			Amount:      summary.FinalBudget,
		})
		total += summary.FinalBudget
	}
	return lines, total
}

// GenerateInvoice prices a project period and stores a draft invoice with one
// line per member.
func (s *Service) GenerateInvoice(ctx context.Context, projectID string, periodStart, periodEnd *time.Time) (*Invoice, error) {
	if periodStart != nil {
		exists, err := s.store.InvoiceExistsForPeriod(ctx, projectID, *periodStart)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateInvoice
		}
	}

	report, err := s.reports.ProjectReport(ctx, projectID, budget.ReportFilter{
		StartDate: periodStart,
		EndDate:   periodEnd,
	})
	if err != nil {
		return nil, err
	}

	lines, total := BuildLines(report)
	if len(lines) == 0 {
		return nil, ErrEmptyInvoice
	}

	_, currency, err := s.store.ProjectHeader(ctx, projectID)
	if err != nil {
		return nil, err
	}

	number, err := s.store.NextInvoiceNumber(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	invoice := Invoice{
		ProjectID:     projectID,
		InvoiceNumber: number,
		Status:        InvoiceStatusDraft,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		Total:         total,
		Currency:      currency,
		Lines:         lines,
	}
	id, err := s.store.CreateInvoice(ctx, invoice)
	if err != nil {
		return nil, err
	}
	return s.store.GetInvoice(ctx, id)
}

// Transition moves an invoice draft->sent->paid, stamping issued_at/paid_at.
func (s *Service) Transition(ctx context.Context, invoiceID, to string) (*Invoice, error) {
	invoice, err := s.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(invoice.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, invoice.Status, to)
	}
	if err := s.store.UpdateStatus(ctx, invoiceID, to, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.store.GetInvoice(ctx, invoiceID)
}

// RenderPDF writes the invoice as a PDF file and records its path.
func (s *Service) RenderPDF(ctx context.Context, invoiceID string) (string, error) {
	invoice, err := s.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	projectName, _, err := s.store.ProjectHeader(ctx, invoice.ProjectID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.OutputDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.OutputDir, invoice.InvoiceNumber+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Invoice "+invoice.InvoiceNumber)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Project: %s", projectName))
	pdf.Ln(7)
	if invoice.PeriodStart != nil && invoice.PeriodEnd != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s",
			invoice.PeriodStart.Format("2006-01-02"), invoice.PeriodEnd.Format("2006-01-02")))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", invoice.Status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(100, 8, "Description")
	pdf.Cell(30, 8, "Days")
	pdf.Cell(40, 8, "Amount")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range invoice.Lines {
		pdf.Cell(100, 8, line.Description)
		pdf.Cell(30, 8, fmt.Sprintf("%.1f", line.Quantity))
		pdf.Cell(40, 8, fmt.Sprintf("%.2f %s", line.Amount, invoice.Currency))
		pdf.Ln(7)
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(130, 8, "Total")
	pdf.Cell(40, 8, fmt.Sprintf("%.2f %s", invoice.Total, invoice.Currency))

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}

	if err := s.store.SetFileURL(ctx, invoiceID, filePath); err != nil {
		slog.Warn("invoice file url update failed", "invoiceId", invoiceID, "err", err)
	}
	return filePath, nil
}
