package attendance

import "time"

type Record struct {
	ID             string     `json:"id"`
	TaskID         string     `json:"taskId"`
	MemberID       string     `json:"memberId"`
	AttendanceType string     `json:"attendanceType"`
	Hours          float64    `json:"hours,omitempty"`
	LeaveSubtype   string     `json:"leaveSubtype,omitempty"`
	Approved       bool       `json:"approved"`
	ApprovedBy     string     `json:"approvedBy,omitempty"`
	WorkDate       *time.Time `json:"workDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}
