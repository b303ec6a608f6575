package reports

import (
	"bytes"
	"strings"
	"testing"

	"sitecrew/internal/domain/budget"
)

func TestWriteBudgetCSV(t *testing.T) {
	report := &budget.ProjectReport{
		ProjectID:            "project-1",
		TotalBudgetAllocated: 10000,
		TotalBudgetSpent:     650.5,
		MemberSummaries: []budget.MemberSummary{
			{MemberID: "member-a", MemberName: "Ana Mason", WageType: budget.WageTypeDaily,
				TotalFullDays: 4, TotalHalfDays: 1, TotalTaskBudget: 450, FinalBudget: 450, HasAttendanceData: true},
			{MemberID: "member-b", WageType: budget.WageTypeMonthly,
				TotalTaskBudget: 0, FinalBudget: 200.5},
		},
	}

	var buf bytes.Buffer
	if err := WriteBudgetCSV(&buf, report); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 2 members + totals, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "member_id,member_name,wage_type") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "Ana Mason") || !strings.Contains(lines[1], "450.00") {
		t.Errorf("unexpected member row: %s", lines[1])
	}
	if !strings.Contains(lines[2], "200.50") || !strings.Contains(lines[2], "false") {
		t.Errorf("unexpected fallback row: %s", lines[2])
	}
	if !strings.HasPrefix(lines[3], "total,") || !strings.Contains(lines[3], "650.50") {
		t.Errorf("unexpected totals row: %s", lines[3])
	}
}

func TestDashboardPayloads(t *testing.T) {
	worker := WorkerDashboard(32.5, 6, 2, 480)
	if worker["hoursThisMonth"] != 32.5 || worker["pendingRecords"] != 2 {
		t.Errorf("unexpected worker payload: %v", worker)
	}

	supervisor := SupervisorDashboard(3, 2, 1500)
	if supervisor["pendingApprovals"] != 3 || supervisor["supervisedSpend"] != 1500.0 {
		t.Errorf("unexpected supervisor payload: %v", supervisor)
	}

	admin := AdminDashboard(5, 40, 100000, 42000, 2)
	if admin["activeProjects"] != 5 || admin["budgetBilled"] != 42000.0 {
		t.Errorf("unexpected admin payload: %v", admin)
	}
}
