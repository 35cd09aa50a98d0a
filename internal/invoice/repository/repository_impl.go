package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bukukas/internal/invoice/domain"
	"github.com/smallbiznis/bukukas/pkg/db"
	"gorm.io/gorm"
)

const invoiceColumns = `id, company_id, client_id, invoice_number, status, total, currency,
	paid_at, created_at, updated_at, deleted_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// FindInvoice returns nil, nil when nothing matches.
func (r *repo) FindInvoice(ctx context.Context, conn *gorm.DB, filter domain.InvoiceFilter) (*domain.Invoice, error) {
	number := strings.TrimSpace(filter.Number)
	if filter.ID == 0 && number == "" {
		return nil, domain.ErrInvalidFilter
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE deleted_at IS NULL`
	args := []any{}
	if filter.ID != 0 {
		query += ` AND id = ?`
		args = append(args, filter.ID)
	} else {
		query += ` AND invoice_number = ?`
		args = append(args, number)
	}
	if filter.CompanyID != 0 {
		query += ` AND company_id = ?`
		args = append(args, filter.CompanyID)
	}
	query += ` ORDER BY id ASC LIMIT 2`

	var items []domain.Invoice
	if err := conn.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, err
	}
	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		return &items[0], nil
	default:
		return nil, domain.ErrInvoiceAmbiguous
	}
}

func (r *repo) LockInvoice(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var item domain.Invoice
	err := conn.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+`
		 FROM invoices
		 WHERE id = ? AND deleted_at IS NULL`+db.ForUpdate(conn),
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, domain.ErrInvoiceNotFound
	}
	return &item, nil
}

func (r *repo) MarkPaid(ctx context.Context, conn *gorm.DB, id snowflake.ID, paidAt, now time.Time) error {
	res := conn.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET status = ?, paid_at = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		string(domain.InvoiceStatusPaid),
		paidAt.UTC(),
		now.UTC(),
		id,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}
