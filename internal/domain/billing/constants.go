package billing

const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusSent  = "sent"
	InvoiceStatusPaid  = "paid"
)

// CanTransition reports whether an invoice may move between statuses.
// Draft invoices are the only mutable ones; paid is terminal.
func CanTransition(from, to string) bool {
	switch from {
	case InvoiceStatusDraft:
		return to == InvoiceStatusSent
	case InvoiceStatusSent:
		return to == InvoiceStatusPaid
	default:
		return false
	}
}
