package domain

import "errors"

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrEventIgnored     = errors.New("event_ignored")
	ErrMalformedPayload = errors.New("malformed_payload")
	ErrInvoiceNotFound  = errors.New("invoice_not_found")
	ErrDuplicateEvent   = errors.New("duplicate_event")
	ErrInvalidEvent     = errors.New("invalid_event")
	ErrPayloadTooLarge  = errors.New("payload_too_large")
)
