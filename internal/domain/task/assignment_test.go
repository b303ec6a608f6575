package task

import (
	"testing"

	"sitecrew/internal/domain/attendance"
)

func TestDefaultedAssignment(t *testing.T) {
	got := defaultedAssignment(Assignment{TaskID: "task-1", MemberID: "member-a"})
	if got.AttendanceType != attendance.TypeFullDay {
		t.Fatalf("expected %q, got %q", attendance.TypeFullDay, got.AttendanceType)
	}

	// An explicit classification is never overwritten.
	got = defaultedAssignment(Assignment{TaskID: "task-1", MemberID: "member-a", AttendanceType: attendance.TypeHourBased, Hours: 3})
	if got.AttendanceType != attendance.TypeHourBased {
		t.Fatalf("expected %q, got %q", attendance.TypeHourBased, got.AttendanceType)
	}
}
