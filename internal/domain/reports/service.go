package reports

import (
	"context"
	"strconv"
	"time"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) MemberIDByUserID(ctx context.Context, userID string) (string, error) {
	return s.Store.MemberIDByUserID(ctx, userID)
}

func (s *Service) WorkerActivity(ctx context.Context, memberID string, since time.Time) (float64, int, int, error) {
	return s.Store.WorkerActivity(ctx, memberID, since)
}

func (s *Service) MemberBilledTotal(ctx context.Context, memberID string, since time.Time) (float64, error) {
	return s.Store.MemberBilledTotal(ctx, memberID, since)
}

func (s *Service) PendingApprovals(ctx context.Context) (int, error) {
	return s.Store.PendingApprovals(ctx)
}

func (s *Service) SupervisedProjects(ctx context.Context, memberID string) (int, error) {
	return s.Store.SupervisedProjects(ctx, memberID)
}

func (s *Service) SupervisedSpend(ctx context.Context, memberID string) (float64, error) {
	return s.Store.SupervisedSpend(ctx, memberID)
}

func (s *Service) ActiveProjects(ctx context.Context) (int, error) {
	return s.Store.ActiveProjects(ctx)
}

func (s *Service) TotalMembers(ctx context.Context) (int, error) {
	return s.Store.TotalMembers(ctx)
}

func (s *Service) PortfolioAllocated(ctx context.Context) (float64, error) {
	return s.Store.PortfolioAllocated(ctx)
}

func (s *Service) PortfolioBilled(ctx context.Context) (float64, error) {
	return s.Store.PortfolioBilled(ctx)
}

func (s *Service) DraftInvoices(ctx context.Context) (int, error) {
	return s.Store.DraftInvoices(ctx)
}

func (s *Service) JobRuns(ctx context.Context, jobType string, limit, offset int) ([]map[string]any, error) {
	return s.Store.ListJobRuns(ctx, jobType, limit, offset)
}

func itoa(value int) string {
	return strconv.Itoa(value)
}
