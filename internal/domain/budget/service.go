package budget

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"sitecrew/internal/domain/attendance"
)

type Service struct {
	store StoreAPI

	// FullDayEquivalentHours buckets hour-based records in reports: at or
	// above the threshold a record counts as a full day, below it as a half
	// day.
	FullDayEquivalentHours float64
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, FullDayEquivalentHours: DefaultFullDayEquivalentHours}
}

// MemberBudget prices one member's attendance on one work-unit. Lookup
// failures degrade to an unavailable zero amount; budget previews are
// dashboard numbers, not a ledger, so they must never hard-fail.
func (s *Service) MemberBudget(ctx context.Context, memberID, projectID, attendanceType string, hours float64) Amount {
	basis, err := s.store.WageConfig(ctx, memberID, projectID)
	if err != nil {
		if !errors.Is(err, ErrNoWageConfig) {
			slog.Warn("wage config lookup failed", "memberId", memberID, "projectId", projectID, "err", err)
		}
		return Amount{Value: decimal.Zero, Available: false}
	}
	return Amount{Value: CalcAmount(basis, attendanceType, hours), Available: true}
}

// ProjectForTask resolves the project a task belongs to.
func (s *Service) ProjectForTask(ctx context.Context, taskID string) (string, error) {
	return s.store.TaskProject(ctx, taskID)
}

// TaskBudget totals the computed budget across a task's assignments, taking
// logged attendance over assignment defaults.
func (s *Service) TaskBudget(ctx context.Context, taskID string) (float64, error) {
	projectID, err := s.store.TaskProject(ctx, taskID)
	if err != nil {
		return 0, err
	}
	lines, err := s.store.TaskLines(ctx, taskID)
	if err != nil {
		return 0, err
	}
	return s.TotalForLines(ctx, projectID, lines), nil
}

// TotalForLines prices an ad-hoc set of assignment lines against a project's
// wage configs. Used for the task-dialog budget preview before anything is
// saved.
func (s *Service) TotalForLines(ctx context.Context, projectID string, lines []LineInput) float64 {
	basis := map[string]WageBasis{}
	for _, line := range lines {
		if _, seen := basis[line.MemberID]; seen {
			continue
		}
		amount := s.memberBasis(ctx, line.MemberID, projectID)
		if amount != nil {
			basis[line.MemberID] = *amount
		}
	}
	return Round2(SumLines(basis, lines))
}

// ProjectReport builds the budget report for a project: one budget line per
// member per work-unit in scope, grouped into per-member summaries.
func (s *Service) ProjectReport(ctx context.Context, projectID string, filter ReportFilter) (*ProjectReport, error) {
	report := &ProjectReport{ProjectID: projectID}

	allocated, err := s.store.ProjectAllocation(ctx, projectID)
	if err != nil {
		return nil, err
	}
	report.TotalBudgetAllocated = Round2(allocated)

	units, err := s.store.TasksInRange(ctx, projectID, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, err
	}

	accs := map[string]*memberAccumulator{}
	var order []string

	for _, unit := range units {
		lines, err := s.store.TaskLines(ctx, unit.TaskID)
		if err != nil {
			// Partial-result policy: a broken work-unit drops out of the
			// report instead of aborting it.
			slog.Warn("task lines fetch failed", "taskId", unit.TaskID, "err", err)
			continue
		}
		for _, line := range lines {
			if filter.MemberID != "" && line.MemberID != filter.MemberID {
				continue
			}
			acc, ok := accs[line.MemberID]
			if !ok {
				acc = s.newAccumulator(ctx, line.MemberID, projectID)
				accs[line.MemberID] = acc
				order = append(order, line.MemberID)
			}
			if filter.WageType != "" && acc.summary.WageType != filter.WageType {
				continue
			}
			s.accumulate(acc, unit.TaskID, line, report)
		}
	}

	sort.Strings(order)
	totalSpent := decimal.Zero
	for _, memberID := range order {
		acc := accs[memberID]
		if filter.WageType != "" && acc.summary.WageType != filter.WageType {
			continue
		}
		summary := s.finishSummary(acc)
		totalSpent = totalSpent.Add(acc.finalBudget)
		report.MemberSummaries = append(report.MemberSummaries, summary)
	}
	report.TotalBudgetSpent = Round2(totalSpent)
	return report, nil
}

// WriteBilling mirrors a computed budget line into the billing audit table.
// Best effort: failures are logged and never surfaced, and the write is not
// atomic with the attendance record that triggered it.
func (s *Service) WriteBilling(ctx context.Context, memberID, taskID, projectID, attendanceType string, hours float64) {
	basis, err := s.store.WageConfig(ctx, memberID, projectID)
	if err != nil {
		if !errors.Is(err, ErrNoWageConfig) {
			slog.Warn("billing wage lookup failed", "memberId", memberID, "err", err)
		}
		return
	}
	amount := CalcAmount(basis, attendanceType, hours)
	record := BillingRecord{
		MemberID:       memberID,
		TaskID:         taskID,
		ProjectID:      projectID,
		AttendanceType: attendanceType,
		Hours:          hours,
		Rate:           Round2(basis.EffectiveDailyRate()),
		Amount:         Round2(amount),
	}
	if err := s.store.InsertBillingRecord(ctx, record); err != nil {
		slog.Warn("billing record insert failed", "memberId", memberID, "taskId", taskID, "err", err)
	}
}

type memberAccumulator struct {
	summary     MemberSummary
	basis       *WageBasis
	taskBudget  decimal.Decimal
	finalBudget decimal.Decimal
}

func (s *Service) newAccumulator(ctx context.Context, memberID, projectID string) *memberAccumulator {
	acc := &memberAccumulator{
		summary:    MemberSummary{MemberID: memberID},
		taskBudget: decimal.Zero,
	}
	acc.basis = s.memberBasis(ctx, memberID, projectID)
	if acc.basis != nil {
		acc.summary.WageType = acc.basis.WageType
	}
	if name, err := s.store.MemberName(ctx, memberID); err == nil {
		acc.summary.MemberName = name
	}
	return acc
}

func (s *Service) accumulate(acc *memberAccumulator, taskID string, line LineInput, report *ProjectReport) {
	amount := decimal.Zero
	if acc.basis != nil {
		amount = CalcAmount(*acc.basis, line.AttendanceType, line.Hours)
	}
	acc.taskBudget = acc.taskBudget.Add(amount)

	switch line.AttendanceType {
	case attendance.TypeFullDay:
		acc.summary.TotalFullDays++
	case attendance.TypeHalfDay:
		acc.summary.TotalHalfDays++
	case attendance.TypeLeave:
		acc.summary.TotalAbsentDays++
	case attendance.TypeHourBased:
		hours := line.Hours
		if hours <= 0 {
			hours = DefaultHourFallback
		}
		if hours >= s.FullDayEquivalentHours {
			acc.summary.TotalFullDays++
		} else {
			acc.summary.TotalHalfDays++
		}
	}

	if line.HasRecord {
		acc.summary.HasAttendanceData = true
		if !line.Approved {
			acc.summary.PendingRecords++
		}
	}

	report.TaskBudgets = append(report.TaskBudgets, BudgetLine{
		MemberID:       line.MemberID,
		TaskID:         taskID,
		AttendanceType: line.AttendanceType,
		Amount:         Round2(amount),
		Pending:        line.HasRecord && !line.Approved,
	})
}

func (s *Service) finishSummary(acc *memberAccumulator) MemberSummary {
	acc.summary.TotalTaskBudget = Round2(acc.taskBudget)
	if acc.basis != nil {
		acc.summary.MonthlyBudget = Round2(acc.basis.MonthlyProjection())
	}
	if acc.summary.HasAttendanceData || acc.basis == nil {
		acc.finalBudget = acc.taskBudget
	} else {
		// No logged attendance: report the flat period projection rather
		// than silently showing the member as unpaid.
		acc.finalBudget = acc.basis.MonthlyProjection()
	}
	acc.summary.FinalBudget = Round2(acc.finalBudget)
	return acc.summary
}

func (s *Service) memberBasis(ctx context.Context, memberID, projectID string) *WageBasis {
	basis, err := s.store.WageConfig(ctx, memberID, projectID)
	if err != nil {
		if !errors.Is(err, ErrNoWageConfig) {
			slog.Warn("wage config lookup failed", "memberId", memberID, "projectId", projectID, "err", err)
		}
		return nil
	}
	return &basis
}
