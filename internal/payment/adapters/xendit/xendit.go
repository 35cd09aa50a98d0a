// Package xendit interprets Xendit invoice callbacks.
package xendit

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bukukas/internal/payment/domain"
)

const (
	paymentForInvoiceMarker = "Payment for Invoice #"
	statusPaid              = "PAID"
	eventInvoicePaid        = "invoice.paid"
)

var externalIDPattern = regexp.MustCompile(`^inv-(\d+)-`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// callback is the subset of an invoice callback body both shapes share.
type callback struct {
	ID             string              `json:"id"`
	PaymentID      string              `json:"payment_id"`
	ExternalID     string              `json:"external_id"`
	Description    string              `json:"description"`
	Status         string              `json:"status"`
	Amount         decimal.NullDecimal `json:"amount"`
	PaidAmount     decimal.NullDecimal `json:"paid_amount"`
	Currency       string              `json:"currency"`
	PaidAt         string              `json:"paid_at"`
	PaymentMethod  string              `json:"payment_method"`
	PaymentChannel string              `json:"payment_channel"`
}

func (c callback) amount() decimal.Decimal {
	if c.PaidAmount.Valid && c.PaidAmount.Decimal.IsPositive() {
		return c.PaidAmount.Decimal
	}
	if c.Amount.Valid {
		return c.Amount.Decimal
	}
	return decimal.Zero
}

// settlement is the validated money movement extracted from a callback.
type settlement struct {
	Reference string          `validate:"required,max=255"`
	Amount    decimal.Decimal `validate:"gt=0"`
	PaidAt    string          `validate:"required"`
	Currency  string          `validate:"omitempty,len=3,alpha"`
}

func (s settlement) check() (time.Time, error) {
	if err := validate.Struct(s); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(errs))
			for _, fe := range errs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			return time.Time{}, fmt.Errorf("%w: invalid %s", domain.ErrMalformedPayload, strings.Join(fields, ","))
		}
		return time.Time{}, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	paidAt, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s.PaidAt))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid paid_at", domain.ErrMalformedPayload)
	}
	return paidAt.UTC(), nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func isPaidStatus(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), statusPaid)
}

func ignored(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrEventIgnored, reason)
}
