package task

import "time"

type Task struct {
	ID              string     `json:"id"`
	ProjectID       string     `json:"projectId"`
	MilestoneID     string     `json:"milestoneId,omitempty"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Status          string     `json:"status"`
	Progress        int        `json:"progress"`
	WorkDate        *time.Time `json:"workDate,omitempty"`
	Recurrence      string     `json:"recurrence"`
	RecurrenceUntil *time.Time `json:"recurrenceUntil,omitempty"`
	ParentTaskID    string     `json:"parentTaskId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type Assignment struct {
	ID             string    `json:"id"`
	TaskID         string    `json:"taskId"`
	MemberID       string    `json:"memberId"`
	AttendanceType string    `json:"attendanceType"`
	Hours          float64   `json:"hours,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusCancelled  = "cancelled"

	RecurrenceNone    = "none"
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

var Statuses = []string{StatusTodo, StatusInProgress, StatusDone, StatusCancelled}

var Recurrences = []string{RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly}
