package xendit

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smallbiznis/bukukas/internal/payment/domain"
)

// DescriptionAdapter reads the invoice number from a description of the
// form "Payment for Invoice #<number>".
type DescriptionAdapter struct{}

func NewDescriptionAdapter() *DescriptionAdapter {
	return &DescriptionAdapter{}
}

func (a *DescriptionAdapter) Name() domain.Shape {
	return domain.ShapeDescription
}

func (a *DescriptionAdapter) Match(env *domain.Envelope) bool {
	if env == nil {
		return false
	}
	return invoiceNumberFromDescription(env.Description) != ""
}

func (a *DescriptionAdapter) Interpret(env *domain.Envelope) (*domain.PaymentEvent, error) {
	number := invoiceNumberFromDescription(env.Description)
	if number == "" {
		return nil, fmt.Errorf("%w: description has no invoice number", domain.ErrMalformedPayload)
	}
	if !isPaidStatus(env.Status) {
		return nil, ignored(fmt.Sprintf("status %q is not a completed payment", strings.TrimSpace(env.Status)))
	}

	var body callback
	if err := json.Unmarshal(env.Raw, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	// Callbacks of this shape may carry no processor id; the invoice number
	// and paid time still identify the settlement across redeliveries.
	reference := firstNonEmpty(body.ID, body.PaymentID)
	if reference == "" && strings.TrimSpace(body.PaidAt) != "" {
		reference = "invoice:" + number + "@" + strings.TrimSpace(body.PaidAt)
	}

	s := settlement{
		Reference: reference,
		Amount:    body.amount(),
		PaidAt:    body.PaidAt,
		Currency:  strings.ToUpper(strings.TrimSpace(body.Currency)),
	}
	paidAt, err := s.check()
	if err != nil {
		return nil, err
	}

	return &domain.PaymentEvent{
		Provider:           domain.ProviderXendit,
		Invoice:            domain.InvoiceRef{Number: number},
		ProcessorReference: s.Reference,
		Amount:             s.Amount,
		Currency:           s.Currency,
		PaidAt:             paidAt,
		Status:             strings.ToUpper(strings.TrimSpace(body.Status)),
		PaymentMethod:      strings.TrimSpace(body.PaymentMethod),
		PaymentChannel:     strings.TrimSpace(body.PaymentChannel),
	}, nil
}

func invoiceNumberFromDescription(description string) string {
	idx := strings.Index(description, paymentForInvoiceMarker)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(description[idx+len(paymentForInvoiceMarker):])
}
