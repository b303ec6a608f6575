package billing

import (
	"context"
	"time"
)

// StoreAPI is the invoicing data dependency, injected so generation and
// transitions can run against a fake store in tests.
type StoreAPI interface {
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	CreateInvoice(ctx context.Context, invoice Invoice) (string, error)
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
	SetFileURL(ctx context.Context, id, fileURL string) error
	NextInvoiceNumber(ctx context.Context, at time.Time) (string, error)
	ProjectHeader(ctx context.Context, projectID string) (string, string, error)
	InvoiceExistsForPeriod(ctx context.Context, projectID string, periodStart time.Time) (bool, error)
}
