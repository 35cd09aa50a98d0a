package domain

import "errors"

var (
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrInvalidAccount  = errors.New("invalid_account")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidCurrency = errors.New("invalid_currency")

	ErrAccountNotFound      = errors.New("account_not_found")
	ErrAccountNotConfigured = errors.New("receivable_account_not_configured")
	ErrAccountAmbiguous     = errors.New("receivable_account_ambiguous")

	// ErrBalanceConflict means the balance changed between the locked read and the write.
	ErrBalanceConflict = errors.New("balance_conflict")
	ErrInvalidBalance  = errors.New("invalid_balance")
)
