package billing

import "errors"

var (
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrInvalidTransition = errors.New("invalid invoice status transition")
	ErrEmptyInvoice      = errors.New("invoice has no lines")
	ErrDuplicateInvoice  = errors.New("invoice already exists for this period")
)
