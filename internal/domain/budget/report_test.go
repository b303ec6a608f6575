package budget

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sitecrew/internal/domain/attendance"
)

type fakeStore struct {
	wages      map[string]WageBasis // key memberID
	wageErr    map[string]error
	units      []WorkUnit
	lines      map[string][]LineInput // key taskID
	lineErr    map[string]error
	allocation decimal.Decimal
	names      map[string]string
	billed     []BillingRecord
	billErr    error
}

func (f *fakeStore) WageConfig(_ context.Context, memberID, _ string) (WageBasis, error) {
	if err, ok := f.wageErr[memberID]; ok {
		return WageBasis{}, err
	}
	basis, ok := f.wages[memberID]
	if !ok {
		return WageBasis{}, ErrNoWageConfig
	}
	return basis, nil
}

func (f *fakeStore) TasksInRange(_ context.Context, _ string, start, end *time.Time) ([]WorkUnit, error) {
	var out []WorkUnit
	for _, unit := range f.units {
		if start != nil && unit.WorkDate != nil && unit.WorkDate.Before(*start) {
			continue
		}
		if end != nil && unit.WorkDate != nil && unit.WorkDate.After(*end) {
			continue
		}
		out = append(out, unit)
	}
	return out, nil
}

func (f *fakeStore) TaskLines(_ context.Context, taskID string) ([]LineInput, error) {
	if err, ok := f.lineErr[taskID]; ok {
		return nil, err
	}
	return f.lines[taskID], nil
}

func (f *fakeStore) TaskProject(_ context.Context, _ string) (string, error) {
	return "project-1", nil
}

func (f *fakeStore) ProjectAllocation(_ context.Context, _ string) (decimal.Decimal, error) {
	return f.allocation, nil
}

func (f *fakeStore) MemberName(_ context.Context, memberID string) (string, error) {
	if name, ok := f.names[memberID]; ok {
		return name, nil
	}
	return "", errors.New("member not found")
}

func (f *fakeStore) InsertBillingRecord(_ context.Context, record BillingRecord) error {
	if f.billErr != nil {
		return f.billErr
	}
	f.billed = append(f.billed, record)
	return nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		wages:      map[string]WageBasis{},
		wageErr:    map[string]error{},
		lines:      map[string][]LineInput{},
		lineErr:    map[string]error{},
		names:      map[string]string{},
		allocation: decimal.Zero,
	}
}

func TestMemberBudgetMissingConfigIsUnavailableZero(t *testing.T) {
	svc := NewService(newFakeStore())
	amount := svc.MemberBudget(context.Background(), "ghost", "project-1", attendance.TypeFullDay, 0)
	if amount.Available {
		t.Fatal("expected amount to be unavailable")
	}
	if !amount.Value.IsZero() {
		t.Fatalf("expected zero, got %s", amount.Value)
	}
}

func TestMemberBudgetWrappedMissingConfigIsQuiet(t *testing.T) {
	store := newFakeStore()
	store.wageErr["member-a"] = fmt.Errorf("wage config for member member-a: %w", ErrNoWageConfig)
	svc := NewService(store)

	var logs bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	defer slog.SetDefault(previous)

	amount := svc.MemberBudget(context.Background(), "member-a", "project-1", attendance.TypeFullDay, 0)
	if amount.Available || !amount.Value.IsZero() {
		t.Fatalf("expected unavailable zero, got %+v", amount)
	}
	// A missing config is an expected condition, not a lookup failure.
	if strings.Contains(logs.String(), "wage config lookup failed") {
		t.Fatalf("wrapped missing-config error should not warn, logged: %s", logs.String())
	}
}

func TestMemberBudgetLookupErrorDegradesToZero(t *testing.T) {
	store := newFakeStore()
	store.wageErr["member-a"] = errors.New("connection refused")
	svc := NewService(store)

	amount := svc.MemberBudget(context.Background(), "member-a", "project-1", attendance.TypeFullDay, 0)
	if amount.Available || !amount.Value.IsZero() {
		t.Fatalf("expected unavailable zero on lookup error, got %+v", amount)
	}
}

func TestTaskBudgetSumsAssignments(t *testing.T) {
	store := newFakeStore()
	store.wages["member-a"] = dailyBasis(100)
	store.wages["member-b"] = monthlyBasis(2600, 26)
	store.lines["task-1"] = []LineInput{
		{MemberID: "member-a", AttendanceType: attendance.TypeFullDay},
		{MemberID: "member-b", AttendanceType: attendance.TypeHourBased, Hours: 4},
	}
	svc := NewService(store)

	total, err := svc.TaskBudget(context.Background(), "task-1")
	if err != nil {
		t.Fatalf("task budget: %v", err)
	}
	if total != 150 {
		t.Fatalf("expected 150.00, got %.2f", total)
	}
}

func withDate(unit WorkUnit, date time.Time) WorkUnit {
	unit.WorkDate = &date
	return unit
}

func TestProjectReport(t *testing.T) {
	store := newFakeStore()
	store.allocation = decimal.NewFromInt(10000)
	store.wages["member-a"] = WageBasis{MemberID: "member-a", ProjectID: "project-1", WageType: WageTypeDaily, DailyRate: decimal.NewFromInt(100)}
	store.wages["member-b"] = WageBasis{MemberID: "member-b", ProjectID: "project-1", WageType: WageTypeMonthly, MonthlySalary: decimal.NewFromInt(2600), WorkingDaysPerMonth: 26}
	store.names["member-a"] = "Ana Mason"
	store.names["member-b"] = "Bo Carver"
	store.units = []WorkUnit{{TaskID: "task-1", Name: "Foundations"}, {TaskID: "task-2", Name: "Framing"}}
	store.lines["task-1"] = []LineInput{
		{MemberID: "member-a", AttendanceType: attendance.TypeFullDay, HasRecord: true, Approved: true},
		{MemberID: "member-b", AttendanceType: attendance.TypeHourBased, Hours: 7, HasRecord: true, Approved: false},
	}
	store.lines["task-2"] = []LineInput{
		{MemberID: "member-a", AttendanceType: attendance.TypeHalfDay, HasRecord: true, Approved: true},
		{MemberID: "member-b", AttendanceType: attendance.TypeLeave, HasRecord: true, Approved: true},
	}
	svc := NewService(store)

	report, err := svc.ProjectReport(context.Background(), "project-1", ReportFilter{})
	if err != nil {
		t.Fatalf("project report: %v", err)
	}

	if report.TotalBudgetAllocated != 10000 {
		t.Fatalf("expected allocation 10000, got %.2f", report.TotalBudgetAllocated)
	}
	if len(report.MemberSummaries) != 2 {
		t.Fatalf("expected 2 member summaries, got %d", len(report.MemberSummaries))
	}
	if len(report.TaskBudgets) != 4 {
		t.Fatalf("expected 4 budget lines, got %d", len(report.TaskBudgets))
	}

	byMember := map[string]MemberSummary{}
	for _, summary := range report.MemberSummaries {
		byMember[summary.MemberID] = summary
	}

	ana := byMember["member-a"]
	if ana.TotalFullDays != 1 || ana.TotalHalfDays != 1 || ana.TotalAbsentDays != 0 {
		t.Fatalf("unexpected day counters for member-a: %+v", ana)
	}
	if ana.TotalTaskBudget != 150 || ana.FinalBudget != 150 {
		t.Fatalf("expected member-a budget 150, got task=%.2f final=%.2f", ana.TotalTaskBudget, ana.FinalBudget)
	}
	if !ana.HasAttendanceData {
		t.Fatal("expected member-a to have attendance data")
	}

	bo := byMember["member-b"]
	// 7 hour-based hours is >= the 6-hour threshold, so it buckets as a full day.
	if bo.TotalFullDays != 1 || bo.TotalAbsentDays != 1 {
		t.Fatalf("unexpected day counters for member-b: %+v", bo)
	}
	if bo.PendingRecords != 1 {
		t.Fatalf("expected 1 pending record for member-b, got %d", bo.PendingRecords)
	}
	// hour_based: 2600/26/8*7 = 87.50; leave contributes 0.
	if bo.TotalTaskBudget != 87.5 {
		t.Fatalf("expected member-b task budget 87.50, got %.2f", bo.TotalTaskBudget)
	}

	wantSpent := ana.FinalBudget + bo.FinalBudget
	if diff := report.TotalBudgetSpent - wantSpent; diff > 0.01 || diff < -0.01 {
		t.Fatalf("expected spent %.2f within tolerance, got %.2f", wantSpent, report.TotalBudgetSpent)
	}
}

func TestProjectReportHourBucketThreshold(t *testing.T) {
	store := newFakeStore()
	store.wages["member-a"] = dailyBasis(80)
	store.units = []WorkUnit{{TaskID: "task-1"}, {TaskID: "task-2"}}
	store.lines["task-1"] = []LineInput{{MemberID: "member-a", AttendanceType: attendance.TypeHourBased, Hours: 6, HasRecord: true, Approved: true}}
	store.lines["task-2"] = []LineInput{{MemberID: "member-a", AttendanceType: attendance.TypeHourBased, Hours: 5.5, HasRecord: true, Approved: true}}
	svc := NewService(store)

	report, err := svc.ProjectReport(context.Background(), "project-1", ReportFilter{})
	if err != nil {
		t.Fatalf("project report: %v", err)
	}
	summary := report.MemberSummaries[0]
	if summary.TotalFullDays != 1 || summary.TotalHalfDays != 1 {
		t.Fatalf("expected 6h to bucket full and 5.5h half, got %+v", summary)
	}
}

func TestProjectReportDayCounterInvariant(t *testing.T) {
	store := newFakeStore()
	store.wages["member-a"] = dailyBasis(100)
	store.units = []WorkUnit{{TaskID: "task-1"}, {TaskID: "task-2"}, {TaskID: "task-3"}}
	store.lines["task-1"] = []LineInput{{MemberID: "member-a", AttendanceType: attendance.TypeFullDay, HasRecord: true}}
	store.lines["task-2"] = []LineInput{{MemberID: "member-a", AttendanceType: attendance.TypeLeave, HasRecord: true}}
	store.lines["task-3"] = []LineInput{{MemberID: "member-a", AttendanceType: attendance.TypeHalfDay, HasRecord: true}}
	svc := NewService(store)

	report, err := svc.ProjectReport(context.Background(), "project-1", ReportFilter{})
	if err != nil {
		t.Fatalf("project report: %v", err)
	}
	summary := report.MemberSummaries[0]
	counted := summary.TotalFullDays + summary.TotalHalfDays + summary.TotalAbsentDays
	if counted > 3 {
		t.Fatalf("day counters %d exceed work-units in scope", counted)
	}
}

func TestProjectReportMonthlyFallbackWithoutAttendance(t *testing.T) {
	store := newFakeStore()
	store.wages["member-a"] = monthlyBasis(2600, 26)
	store.units = []WorkUnit{{TaskID: "task-1"}}
	// Assignment exists but no attendance record was ever logged.
	store.lines["task-1"] = []LineInput{{MemberID: "member-a", AttendanceType: attendance.TypeFullDay, HasRecord: false}}
	svc := NewService(store)

	report, err := svc.ProjectReport(context.Background(), "project-1", ReportFilter{})
	if err != nil {
		t.Fatalf("project report: %v", err)
	}
	summary := report.MemberSummaries[0]
	if summary.HasAttendanceData {
		t.Fatal("expected hasAttendanceData=false")
	}
	if summary.FinalBudget != 2600 {
		t.Fatalf("expected flat monthly fallback 2600, got %.2f", summary.FinalBudget)
	}
	if report.TotalBudgetSpent != 2600 {
		t.Fatalf("expected spent to use fallback, got %.2f", report.TotalBudgetSpent)
	}
}

func TestProjectReportPartialResultsOnMemberError(t *testing.T) {
	store := newFakeStore()
	store.wages["member-a"] = dailyBasis(100)
	store.wageErr["member-b"] = errors.New("timeout")
	store.units = []WorkUnit{{TaskID: "task-1"}}
	store.lines["task-1"] = []LineInput{
		{MemberID: "member-a", AttendanceType: attendance.TypeFullDay, HasRecord: true},
		{MemberID: "member-b", AttendanceType: attendance.TypeFullDay, HasRecord: true},
	}
	svc := NewService(store)

	report, err := svc.ProjectReport(context.Background(), "project-1", ReportFilter{})
	if err != nil {
		t.Fatalf("expected partial report, got error: %v", err)
	}
	if len(report.MemberSummaries) != 2 {
		t.Fatalf("expected both members present, got %d", len(report.MemberSummaries))
	}
	if report.TotalBudgetSpent != 100 {
		t.Fatalf("expected failing member to contribute 0, got %.2f", report.TotalBudgetSpent)
	}
}

func TestProjectReportSkipsBrokenWorkUnit(t *testing.T) {
	store := newFakeStore()
	store.wages["member-a"] = dailyBasis(100)
	store.units = []WorkUnit{{TaskID: "task-1"}, {TaskID: "task-2"}}
	store.lines["task-1"] = []LineInput{{MemberID: "member-a", AttendanceType: attendance.TypeFullDay, HasRecord: true}}
	store.lineErr["task-2"] = errors.New("relation gone")
	svc := NewService(store)

	report, err := svc.ProjectReport(context.Background(), "project-1", ReportFilter{})
	if err != nil {
		t.Fatalf("expected partial report, got error: %v", err)
	}
	if report.TotalBudgetSpent != 100 {
		t.Fatalf("expected only healthy work-unit counted, got %.2f", report.TotalBudgetSpent)
	}
}

func TestProjectReportFilters(t *testing.T) {
	store := newFakeStore()
	store.wages["member-a"] = dailyBasis(100)
	store.wages["member-b"] = monthlyBasis(2600, 26)
	store.units = []WorkUnit{{TaskID: "task-1"}}
	store.lines["task-1"] = []LineInput{
		{MemberID: "member-a", AttendanceType: attendance.TypeFullDay, HasRecord: true},
		{MemberID: "member-b", AttendanceType: attendance.TypeFullDay, HasRecord: true},
	}
	svc := NewService(store)

	byMember, err := svc.ProjectReport(context.Background(), "project-1", ReportFilter{MemberID: "member-a"})
	if err != nil {
		t.Fatalf("project report: %v", err)
	}
	if len(byMember.MemberSummaries) != 1 || byMember.MemberSummaries[0].MemberID != "member-a" {
		t.Fatalf("expected only member-a, got %+v", byMember.MemberSummaries)
	}

	byWage, err := svc.ProjectReport(context.Background(), "project-1", ReportFilter{WageType: WageTypeMonthly})
	if err != nil {
		t.Fatalf("project report: %v", err)
	}
	if len(byWage.MemberSummaries) != 1 || byWage.MemberSummaries[0].MemberID != "member-b" {
		t.Fatalf("expected only monthly member, got %+v", byWage.MemberSummaries)
	}
}

func TestProjectReportDateRange(t *testing.T) {
	store := newFakeStore()
	store.wages["member-a"] = dailyBasis(100)
	march1 := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	march9 := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	store.units = []WorkUnit{
		withDate(WorkUnit{TaskID: "task-1"}, march1),
		withDate(WorkUnit{TaskID: "task-2"}, march9),
	}
	store.lines["task-1"] = []LineInput{{MemberID: "member-a", AttendanceType: attendance.TypeFullDay, HasRecord: true}}
	store.lines["task-2"] = []LineInput{{MemberID: "member-a", AttendanceType: attendance.TypeFullDay, HasRecord: true}}
	svc := NewService(store)

	end := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	report, err := svc.ProjectReport(context.Background(), "project-1", ReportFilter{EndDate: &end})
	if err != nil {
		t.Fatalf("project report: %v", err)
	}
	if report.TotalBudgetSpent != 100 {
		t.Fatalf("expected only in-range task counted, got %.2f", report.TotalBudgetSpent)
	}
}

func TestWriteBillingRecordsAmount(t *testing.T) {
	store := newFakeStore()
	store.wages["member-a"] = dailyBasis(80)
	svc := NewService(store)

	svc.WriteBilling(context.Background(), "member-a", "task-1", "project-1", attendance.TypeHourBased, 4)

	if len(store.billed) != 1 {
		t.Fatalf("expected 1 billing record, got %d", len(store.billed))
	}
	record := store.billed[0]
	if record.Amount != 40 || record.Rate != 80 {
		t.Fatalf("unexpected billing record: %+v", record)
	}
}

func TestWriteBillingSwallowsFailures(t *testing.T) {
	store := newFakeStore()
	store.wages["member-a"] = dailyBasis(80)
	store.billErr = errors.New("disk full")
	svc := NewService(store)

	// Must not panic or surface the error.
	svc.WriteBilling(context.Background(), "member-a", "task-1", "project-1", attendance.TypeFullDay, 0)
	if len(store.billed) != 0 {
		t.Fatal("expected no billing record on failure")
	}
}

func TestWriteBillingSkipsWithoutWageConfig(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	svc.WriteBilling(context.Background(), "ghost", "task-1", "project-1", attendance.TypeFullDay, 0)
	if len(store.billed) != 0 {
		t.Fatal("expected no billing record without wage config")
	}
}

func TestTotalForLinesPreview(t *testing.T) {
	store := newFakeStore()
	store.wages["member-a"] = dailyBasis(100)
	svc := NewService(store)

	total := svc.TotalForLines(context.Background(), "project-1", []LineInput{
		{MemberID: "member-a", AttendanceType: attendance.TypeHalfDay},
		{MemberID: "ghost", AttendanceType: attendance.TypeFullDay},
	})
	if total != 50 {
		t.Fatalf("expected preview 50.00, got %.2f", total)
	}
}
