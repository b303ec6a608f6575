package reports

import (
	"encoding/csv"
	"fmt"
	"io"

	"sitecrew/internal/domain/budget"
)

// WriteBudgetCSV renders a project budget report as CSV: one row per member
// summary, then a totals row.
func WriteBudgetCSV(w io.Writer, report *budget.ProjectReport) error {
	writer := csv.NewWriter(w)

	header := []string{"member_id", "member_name", "wage_type", "full_days", "half_days",
		"absent_days", "pending_records", "task_budget", "final_budget", "has_attendance_data"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, summary := range report.MemberSummaries {
		row := []string{
			summary.MemberID,
			summary.MemberName,
			summary.WageType,
			itoa(summary.TotalFullDays),
			itoa(summary.TotalHalfDays),
			itoa(summary.TotalAbsentDays),
			itoa(summary.PendingRecords),
			fmt.Sprintf("%.2f", summary.TotalTaskBudget),
			fmt.Sprintf("%.2f", summary.FinalBudget),
			fmt.Sprintf("%t", summary.HasAttendanceData),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	totals := []string{"total", "", "", "", "", "", "",
		fmt.Sprintf("%.2f", report.TotalBudgetAllocated),
		fmt.Sprintf("%.2f", report.TotalBudgetSpent),
		""}
	if err := writer.Write(totals); err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}
