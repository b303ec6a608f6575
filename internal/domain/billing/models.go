package billing

import "time"

// Record is one priced attendance entry, written by the budget calculator as
// a side effect of computation.
type Record struct {
	ID             string    `json:"id"`
	MemberID       string    `json:"memberId"`
	MemberName     string    `json:"memberName,omitempty"`
	TaskID         string    `json:"taskId"`
	ProjectID      string    `json:"projectId"`
	AttendanceType string    `json:"attendanceType"`
	Hours          float64   `json:"hours"`
	Rate           float64   `json:"rate"`
	Amount         float64   `json:"amount"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Invoice struct {
	ID            string        `json:"id"`
	ProjectID     string        `json:"projectId"`
	InvoiceNumber string        `json:"invoiceNumber"`
	Status        string        `json:"status"`
	PeriodStart   *time.Time    `json:"periodStart,omitempty"`
	PeriodEnd     *time.Time    `json:"periodEnd,omitempty"`
	Total         float64       `json:"total"`
	Currency      string        `json:"currency"`
	FileURL       string        `json:"fileUrl,omitempty"`
	IssuedAt      *time.Time    `json:"issuedAt,omitempty"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	Lines         []InvoiceLine `json:"lines,omitempty"`
}

type InvoiceLine struct {
	ID          string  `json:"id"`
	InvoiceID   string  `json:"invoiceId"`
	MemberID    string  `json:"memberId,omitempty"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Amount      float64 `json:"amount"`
}

type RecordFilter struct {
	MemberID  string
	StartDate *time.Time
	EndDate   *time.Time
}
