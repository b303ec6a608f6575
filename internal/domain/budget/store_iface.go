package budget

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StoreAPI is the calculator's data dependency, injected so reports and
// previews can run against a fake store in tests.
type StoreAPI interface {
	WageConfig(ctx context.Context, memberID, projectID string) (WageBasis, error)
	TasksInRange(ctx context.Context, projectID string, start, end *time.Time) ([]WorkUnit, error)
	TaskLines(ctx context.Context, taskID string) ([]LineInput, error)
	TaskProject(ctx context.Context, taskID string) (string, error)
	ProjectAllocation(ctx context.Context, projectID string) (decimal.Decimal, error)
	MemberName(ctx context.Context, memberID string) (string, error)
	InsertBillingRecord(ctx context.Context, record BillingRecord) error
}
