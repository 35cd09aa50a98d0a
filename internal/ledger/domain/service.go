package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Service posts ledger movements. Both operations run on the caller's
// transaction so they commit or roll back with it.
type Service interface {
	ResolveReceivableAccount(ctx context.Context, tx *gorm.DB, companyID snowflake.ID) (*Account, error)
	PostCredit(ctx context.Context, tx *gorm.DB, req PostingRequest) (*Transaction, error)
}
