package notifications

const (
	TypeTaskAssigned       = "task_assigned"
	TypeAttendanceApproved = "attendance_approved"
	TypeAttendanceLogged   = "attendance_logged"
	TypeInvoiceIssued      = "invoice_issued"
	TypePasswordReset      = "password_reset"
)
