// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice is a bill issued by a company to a client. PaidAt is set exactly
// when Status is paid.
type Invoice struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	CompanyID     snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_invoices_company_number,priority:1"`
	ClientID      *snowflake.ID   `gorm:"index"`
	InvoiceNumber string          `gorm:"type:text;not null;uniqueIndex:ux_invoices_company_number,priority:2"`
	Status        InvoiceStatus   `gorm:"type:text;not null;default:'draft'"`
	Total         decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	Currency      string          `gorm:"type:text;not null"`
	PaidAt        *time.Time
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
	DeletedAt     *time.Time
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// IsPaid reports whether the invoice is settled.
func (i Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid && i.PaidAt != nil
}

// InvoiceFilter selects a single invoice by internal ID or by number,
// optionally scoped to a company.
type InvoiceFilter struct {
	ID        snowflake.ID
	Number    string
	CompanyID snowflake.ID
}
