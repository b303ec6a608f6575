package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

type WageBasis struct {
	MemberID            string          `json:"memberId"`
	ProjectID           string          `json:"projectId"`
	WageType            string          `json:"wageType"`
	DailyRate           decimal.Decimal `json:"dailyRate"`
	MonthlySalary       decimal.Decimal `json:"monthlySalary"`
	WorkingDaysPerMonth int             `json:"workingDaysPerMonth"`
}

// EffectiveDailyRate is the daily rate for daily wages, or the monthly
// salary divided by working days per month (default 26) otherwise.
func (b WageBasis) EffectiveDailyRate() decimal.Decimal {
	if b.WageType == WageTypeDaily {
		return b.DailyRate
	}
	days := b.WorkingDaysPerMonth
	if days <= 0 {
		days = DefaultWorkingDaysPerMonth
	}
	return b.MonthlySalary.Div(decimal.NewFromInt(int64(days)))
}

// MonthlyProjection is the flat per-period amount used when a member has no
// attendance data in scope.
func (b WageBasis) MonthlyProjection() decimal.Decimal {
	if b.WageType == WageTypeMonthly {
		return b.MonthlySalary
	}
	days := b.WorkingDaysPerMonth
	if days <= 0 {
		days = DefaultWorkingDaysPerMonth
	}
	return b.DailyRate.Mul(decimal.NewFromInt(int64(days)))
}

// Amount is a computed budget value. Available distinguishes a genuine zero
// from "wage config missing or lookup failed"; callers showing dashboard
// numbers treat both as 0.
type Amount struct {
	Value     decimal.Decimal
	Available bool
}

type BudgetLine struct {
	MemberID       string  `json:"memberId"`
	TaskID         string  `json:"taskId"`
	AttendanceType string  `json:"attendanceType"`
	Amount         float64 `json:"amount"`
	Pending        bool    `json:"pending,omitempty"`
}

type MemberSummary struct {
	MemberID          string  `json:"memberId"`
	MemberName        string  `json:"memberName,omitempty"`
	WageType          string  `json:"wageType,omitempty"`
	TotalFullDays     int     `json:"totalFullDays"`
	TotalHalfDays     int     `json:"totalHalfDays"`
	TotalAbsentDays   int     `json:"totalAbsentDays"`
	PendingRecords    int     `json:"pendingRecords"`
	TotalTaskBudget   float64 `json:"totalTaskBudget"`
	MonthlyBudget     float64 `json:"monthlyBudget,omitempty"`
	FinalBudget       float64 `json:"finalBudget"`
	HasAttendanceData bool    `json:"hasAttendanceData"`
}

type ProjectReport struct {
	ProjectID            string          `json:"projectId"`
	TotalBudgetAllocated float64         `json:"totalBudgetAllocated"`
	TotalBudgetSpent     float64         `json:"totalBudgetSpent"`
	MemberSummaries      []MemberSummary `json:"memberSummaries"`
	TaskBudgets          []BudgetLine    `json:"taskBudgets"`
}

type ReportFilter struct {
	MemberID  string
	WageType  string
	StartDate *time.Time
	EndDate   *time.Time
}

// WorkUnit is a task in report scope.
type WorkUnit struct {
	TaskID   string
	Name     string
	WorkDate *time.Time
}

// LineInput is one member's classification on one work-unit: the assignment
// joined with its attendance record when one was logged.
type LineInput struct {
	MemberID       string
	AttendanceType string
	Hours          float64
	HasRecord      bool
	Approved       bool
}

type BillingRecord struct {
	ID             string    `json:"id"`
	MemberID       string    `json:"memberId"`
	TaskID         string    `json:"taskId"`
	ProjectID      string    `json:"projectId"`
	AttendanceType string    `json:"attendanceType"`
	Hours          float64   `json:"hours"`
	Rate           float64   `json:"rate"`
	Amount         float64   `json:"amount"`
	CreatedAt      time.Time `json:"createdAt"`
}
