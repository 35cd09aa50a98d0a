package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a ledger movement.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// AccountType classifies a company bank or cash account.
type AccountType string

const (
	AccountTypeBank       AccountType = "bank"
	AccountTypeCash       AccountType = "cash"
	AccountTypeReceivable AccountType = "receivable"
)

type LedgerSourceType string

const (
	SourceTypePayment    LedgerSourceType = "payment"
	SourceTypeAdjustment LedgerSourceType = "adjustment"
)

// Account is a company money account whose running balance is kept in
// current_balance as a fixed two-decimal string.
type Account struct {
	ID                  snowflake.ID `gorm:"primaryKey"`
	CompanyID           snowflake.ID `gorm:"not null;index"`
	Name                string       `gorm:"type:text;not null"`
	Type                AccountType  `gorm:"type:text;not null"`
	CurrentBalance      string       `gorm:"type:numeric(20,2);not null;default:0"`
	IsDefaultReceivable bool         `gorm:"not null;default:false"`
	CreatedAt           time.Time    `gorm:"not null"`
	UpdatedAt           time.Time    `gorm:"not null"`
	DeletedAt           *time.Time
}

func (Account) TableName() string { return "accounts" }

// Balance parses the stored balance. An empty balance is zero.
func (a Account) Balance() (decimal.Decimal, error) {
	raw := strings.TrimSpace(a.CurrentBalance)
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

// Transaction is one posted movement against an Account.
type Transaction struct {
	ID               snowflake.ID    `gorm:"primaryKey"`
	CompanyID        snowflake.ID    `gorm:"not null;index"`
	AccountID        snowflake.ID    `gorm:"not null;index"`
	Type             TransactionType `gorm:"type:text;not null"`
	Amount           decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Currency         string          `gorm:"type:text;not null"`
	RelatedInvoiceID *snowflake.ID   `gorm:"index"`
	Description      string          `gorm:"type:text"`
	Reconciled       bool            `gorm:"not null;default:false"`
	TransactionDate  time.Time       `gorm:"not null"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
	DeletedAt        *time.Time
}

func (Transaction) TableName() string { return "transactions" }

// PostingRequest describes a credit to post inside an open unit of work.
type PostingRequest struct {
	CompanyID        snowflake.ID
	AccountID        snowflake.ID
	Amount           decimal.Decimal
	Currency         string
	RelatedInvoiceID snowflake.ID
	Description      string
	TransactionDate  time.Time
	SourceType       LedgerSourceType
}
