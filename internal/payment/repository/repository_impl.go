package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bukukas/internal/payment/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindPaymentByReference(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID, reference string) (*domain.Payment, error) {
	reference = strings.TrimSpace(reference)
	if invoiceID == 0 || reference == "" {
		return nil, nil
	}

	var items []domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, invoice_id, transaction_id, amount, currency,
			payment_date, payment_method, payment_processor_reference, status,
			metadata, created_at, updated_at, deleted_at
		 FROM payments
		 WHERE invoice_id = ? AND payment_processor_reference = ? AND deleted_at IS NULL
		 LIMIT 1`,
		invoiceID,
		reference,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// InsertPayment writes a new row. A second live row for the same invoice and
// processor reference fails on ux_payments_invoice_reference.
func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	metadata := payment.Metadata
	if metadata == nil {
		metadata = datatypes.JSONMap{}
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (
			id, company_id, invoice_id, transaction_id, amount, currency,
			payment_date, payment_method, payment_processor_reference, status,
			metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.CompanyID,
		payment.InvoiceID,
		payment.TransactionID,
		payment.Amount.StringFixed(2),
		payment.Currency,
		payment.PaymentDate,
		payment.PaymentMethod,
		payment.PaymentProcessorReference,
		payment.Status,
		metadata,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Error
}

func (r *repo) LinkTransaction(ctx context.Context, db *gorm.DB, paymentID, transactionID snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payments
		 SET transaction_id = ?, updated_at = ?
		 WHERE id = ?`,
		transactionID,
		now,
		paymentID,
	).Error
}
