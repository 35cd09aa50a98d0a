package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bukukas/internal/clock"
	ledgerdomain "github.com/smallbiznis/bukukas/internal/ledger/domain"
	"github.com/smallbiznis/bukukas/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

// ResolveReceivableAccount picks the account that payments for the company
// are credited to: the flagged default, else the only account on file.
func (s *Service) ResolveReceivableAccount(ctx context.Context, tx *gorm.DB, companyID snowflake.ID) (*ledgerdomain.Account, error) {
	if companyID == 0 {
		return nil, ledgerdomain.ErrInvalidCompany
	}

	var accounts []ledgerdomain.Account
	if err := tx.WithContext(ctx).Raw(
		`SELECT id, company_id, name, type, current_balance, is_default_receivable,
		        created_at, updated_at, deleted_at
		 FROM accounts
		 WHERE company_id = ? AND deleted_at IS NULL
		 ORDER BY id ASC`,
		companyID,
	).Scan(&accounts).Error; err != nil {
		return nil, err
	}

	var flagged []ledgerdomain.Account
	for _, account := range accounts {
		if account.IsDefaultReceivable {
			flagged = append(flagged, account)
		}
	}

	switch {
	case len(flagged) == 1:
		return &flagged[0], nil
	case len(flagged) > 1:
		return nil, ledgerdomain.ErrAccountAmbiguous
	case len(accounts) == 1:
		return &accounts[0], nil
	case len(accounts) == 0:
		return nil, ledgerdomain.ErrAccountNotConfigured
	default:
		return nil, ledgerdomain.ErrAccountAmbiguous
	}
}

// PostCredit records a credit transaction and increments the account balance.
func (s *Service) PostCredit(ctx context.Context, tx *gorm.DB, req ledgerdomain.PostingRequest) (*ledgerdomain.Transaction, error) {
	if req.CompanyID == 0 {
		return nil, ledgerdomain.ErrInvalidCompany
	}
	if req.AccountID == 0 {
		return nil, ledgerdomain.ErrInvalidAccount
	}
	if !req.Amount.IsPositive() {
		return nil, ledgerdomain.ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		return nil, ledgerdomain.ErrInvalidCurrency
	}

	amount := req.Amount.Round(2)

	var locked struct {
		CurrentBalance string
	}
	result := tx.WithContext(ctx).Raw(
		`SELECT current_balance
		 FROM accounts
		 WHERE id = ? AND company_id = ? AND deleted_at IS NULL`+db.ForUpdate(tx),
		req.AccountID,
		req.CompanyID,
	).Scan(&locked)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ledgerdomain.ErrAccountNotFound
	}

	current, err := ledgerdomain.Account{CurrentBalance: locked.CurrentBalance}.Balance()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledgerdomain.ErrInvalidBalance, err)
	}
	next := current.Add(amount)

	now := s.clock.Now()
	transactionDate := req.TransactionDate
	if transactionDate.IsZero() {
		transactionDate = now
	}
	invoiceID := req.RelatedInvoiceID
	txn := &ledgerdomain.Transaction{
		ID:               s.genID.Generate(),
		CompanyID:        req.CompanyID,
		AccountID:        req.AccountID,
		Type:             ledgerdomain.TransactionTypeCredit,
		Amount:           amount,
		Currency:         currency,
		RelatedInvoiceID: &invoiceID,
		Description:      strings.TrimSpace(req.Description),
		Reconciled:       false,
		TransactionDate:  transactionDate.UTC(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.RelatedInvoiceID == 0 {
		txn.RelatedInvoiceID = nil
	}

	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO transactions (
			id, company_id, account_id, type, amount, currency, related_invoice_id,
			description, reconciled, transaction_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.CompanyID,
		txn.AccountID,
		string(txn.Type),
		amount.StringFixed(2),
		txn.Currency,
		txn.RelatedInvoiceID,
		txn.Description,
		txn.Reconciled,
		txn.TransactionDate,
		now,
		now,
	).Error; err != nil {
		return nil, err
	}

	update := tx.WithContext(ctx).Exec(
		`UPDATE accounts
		 SET current_balance = ?, updated_at = ?
		 WHERE id = ? AND current_balance = ?`,
		next.StringFixed(2),
		now,
		req.AccountID,
		locked.CurrentBalance,
	)
	if update.Error != nil {
		return nil, update.Error
	}
	if update.RowsAffected == 0 {
		return nil, ledgerdomain.ErrBalanceConflict
	}

	s.log.Debug("ledger credit posted",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("account_id", req.AccountID.String()),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("balance", next.StringFixed(2)),
		zap.String("source_type", string(req.SourceType)),
	)
	return txn, nil
}
