package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindInvoice(ctx context.Context, db *gorm.DB, filter InvoiceFilter) (*Invoice, error)
	LockInvoice(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, paidAt, now time.Time) error
}
