package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bukukas/internal/clock"
	"github.com/smallbiznis/bukukas/internal/config"
	ledgerdomain "github.com/smallbiznis/bukukas/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultCompanyName     = "Main"
	defaultCompanyCurrency = "IDR"
	defaultAccountName     = "Kas & Bank"
)

var Module = fx.Module("seed",
	fx.Invoke(func(db *gorm.DB, cfg config.Config, node *snowflake.Node, clk clock.Clock, log *zap.Logger) error {
		if !cfg.SeedMainCompany {
			return nil
		}
		company, err := EnsureMainCompany(context.Background(), db, node, clk)
		if err != nil {
			return err
		}
		log.Info("main company ready", zap.String("company_id", company.ID.String()))
		return nil
	}),
)

type Company struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func (Company) TableName() string { return "companies" }

// EnsureMainCompany seeds the default company and its receivable account so
// callbacks can be reconciled on a fresh install.
func EnsureMainCompany(ctx context.Context, db *gorm.DB, node *snowflake.Node, clk clock.Clock) (Company, error) {
	var company Company
	if db == nil {
		return company, errors.New("seed database handle is required")
	}
	if node == nil {
		return company, errors.New("seed id generator is required")
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		company, err = ensureMainCompanyTx(ctx, tx, node, clk.Now())
		if err != nil {
			return err
		}
		return ensureReceivableAccountTx(ctx, tx, node, company.ID, clk.Now())
	})
	return company, err
}

func ensureMainCompanyTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time) (Company, error) {
	var company Company
	err := tx.WithContext(ctx).Where("name = ? AND deleted_at IS NULL", defaultCompanyName).First(&company).Error
	if err == nil {
		return company, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return company, err
	}
	company = Company{
		ID:        node.Generate(),
		Name:      defaultCompanyName,
		Currency:  defaultCompanyCurrency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&company).Error; err != nil {
		return company, err
	}
	return company, nil
}

func ensureReceivableAccountTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, companyID snowflake.ID, now time.Time) error {
	var count int64
	if err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM accounts WHERE company_id = ? AND deleted_at IS NULL`,
		companyID,
	).Scan(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return tx.WithContext(ctx).Exec(
		`INSERT INTO accounts (id, company_id, name, type, current_balance, is_default_receivable, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		node.Generate(),
		companyID,
		defaultAccountName,
		string(ledgerdomain.AccountTypeBank),
		"0.00",
		true,
		now,
		now,
	).Error
}
