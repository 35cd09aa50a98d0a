package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindPaymentByReference(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID, reference string) (*Payment, error)
	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	LinkTransaction(ctx context.Context, db *gorm.DB, paymentID, transactionID snowflake.ID, now time.Time) error
}
