package xendit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bukukas/internal/invoice/format"
	"github.com/smallbiznis/bukukas/internal/payment/domain"
)

// ExternalIDAdapter reads the internal invoice id from an external_id of the
// form "inv-<id>-<rest>".
type ExternalIDAdapter struct{}

func NewExternalIDAdapter() *ExternalIDAdapter {
	return &ExternalIDAdapter{}
}

func (a *ExternalIDAdapter) Name() domain.Shape {
	return domain.ShapeExternalID
}

func (a *ExternalIDAdapter) Match(env *domain.Envelope) bool {
	if env == nil {
		return false
	}
	return externalIDPattern.MatchString(strings.TrimSpace(env.ExternalID))
}

type eventCallback struct {
	callback
	Data *callback `json:"data"`
}

func (a *ExternalIDAdapter) Interpret(env *domain.Envelope) (*domain.PaymentEvent, error) {
	externalID := strings.TrimSpace(env.ExternalID)
	match := externalIDPattern.FindStringSubmatch(externalID)
	if len(match) != 2 {
		return nil, fmt.Errorf("%w: external_id has no invoice id", domain.ErrMalformedPayload)
	}

	// Event-style callbacks name the event; invoice-style ones only carry a status.
	event := strings.ToLower(strings.TrimSpace(env.Event))
	if event != "" {
		if event != eventInvoicePaid {
			return nil, ignored(fmt.Sprintf("event %q is not a completed payment", event))
		}
	} else if !isPaidStatus(env.Status) {
		return nil, ignored(fmt.Sprintf("status %q is not a completed payment", strings.TrimSpace(env.Status)))
	}

	rawID, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || rawID <= 0 {
		return nil, fmt.Errorf("%w: invalid invoice id in external_id", domain.ErrMalformedPayload)
	}

	var body eventCallback
	if err := json.Unmarshal(env.Raw, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	top := body.callback
	data := top
	if body.Data != nil {
		data = *body.Data
	}

	amount := data.amount()
	if !amount.IsPositive() {
		amount = top.amount()
	}
	s := settlement{
		Reference: firstNonEmpty(data.ID, top.ID, data.PaymentID, top.PaymentID),
		Amount:    amount,
		PaidAt:    firstNonEmpty(data.PaidAt, top.PaidAt),
		Currency:  strings.ToUpper(firstNonEmpty(data.Currency, top.Currency)),
	}
	paidAt, err := s.check()
	if err != nil {
		return nil, err
	}

	return &domain.PaymentEvent{
		Provider: domain.ProviderXendit,
		Invoice: domain.InvoiceRef{
			ID:              snowflake.ID(rawID),
			RecoveredNumber: format.RecoverInvoiceNumber(externalID[len(match[0]):]),
		},
		ProcessorReference: s.Reference,
		Amount:             s.Amount,
		Currency:           s.Currency,
		PaidAt:             paidAt,
		Status:             strings.ToUpper(firstNonEmpty(data.Status, top.Status, event)),
		PaymentMethod:      firstNonEmpty(data.PaymentMethod, top.PaymentMethod),
		PaymentChannel:     firstNonEmpty(data.PaymentChannel, top.PaymentChannel),
	}, nil
}
