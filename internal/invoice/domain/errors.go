package domain

import "errors"

var (
	ErrInvalidFilter = errors.New("invalid_invoice_filter")
	// ErrInvoiceAmbiguous is returned when an unscoped number matches several companies.
	ErrInvoiceAmbiguous = errors.New("invoice_number_ambiguous")
	ErrInvoiceNotFound  = errors.New("invoice_not_found")
)
