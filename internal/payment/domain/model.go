package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const ProviderXendit = "xendit"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment records money received against an invoice. The pair
// (InvoiceID, PaymentProcessorReference) is unique among live rows.
type Payment struct {
	ID                        snowflake.ID      `json:"id" gorm:"primaryKey"`
	CompanyID                 snowflake.ID      `json:"company_id" gorm:"not null;index"`
	InvoiceID                 snowflake.ID      `json:"invoice_id" gorm:"not null;index"`
	TransactionID             *snowflake.ID     `json:"transaction_id"`
	Amount                    decimal.Decimal   `json:"amount" gorm:"type:numeric(20,2);not null"`
	Currency                  string            `json:"currency" gorm:"type:text;not null"`
	PaymentDate               time.Time         `json:"payment_date" gorm:"not null"`
	PaymentMethod             string            `json:"payment_method" gorm:"type:text;not null"`
	PaymentProcessorReference string            `json:"payment_processor_reference" gorm:"type:text;not null"`
	Status                    PaymentStatus     `json:"status" gorm:"type:text;not null"`
	Metadata                  datatypes.JSONMap `json:"metadata" gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt                 time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt                 time.Time         `json:"updated_at" gorm:"not null"`
	DeletedAt                 *time.Time        `json:"deleted_at,omitempty"`
}

func (Payment) TableName() string { return "payments" }

// Shape names a supported callback payload layout.
type Shape string

const (
	ShapeDescription Shape = "xendit.description"
	ShapeExternalID  Shape = "xendit.external_id"
)

// InvoiceRef identifies the invoice a callback pays. Exactly one of ID or
// Number is set. RecoveredNumber is cosmetic and never used for lookup.
type InvoiceRef struct {
	ID              snowflake.ID
	Number          string
	RecoveredNumber string
}

// Label returns the most human-friendly identifier available.
func (r InvoiceRef) Label() string {
	switch {
	case r.Number != "":
		return r.Number
	case r.RecoveredNumber != "":
		return r.RecoveredNumber
	case r.ID != 0:
		return r.ID.String()
	}
	return ""
}

// PaymentEvent is the canonical completed-payment event produced by a payload adapter.
type PaymentEvent struct {
	Provider           string
	Shape              Shape
	Invoice            InvoiceRef
	ProcessorReference string
	Amount             decimal.Decimal
	// Currency is empty when the callback omits it; the invoice currency applies.
	Currency       string
	PaidAt         time.Time
	Status         string
	PaymentMethod  string
	PaymentChannel string
	RawPayload     []byte
}

// Envelope holds the top-level callback fields adapters match on.
type Envelope struct {
	ID          string `json:"id"`
	ExternalID  string `json:"external_id"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Event       string `json:"event"`

	Raw []byte `json:"-"`
}

type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

// ReconcileResult reports what a delivery did.
type ReconcileResult struct {
	Outcome       Outcome
	Shape         Shape
	InvoiceID     snowflake.ID
	InvoiceNumber string
	PaymentID     snowflake.ID
	TransactionID *snowflake.ID
	Message       string
}
