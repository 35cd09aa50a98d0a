package xendit_test

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bukukas/internal/payment/adapters"
	"github.com/smallbiznis/bukukas/internal/payment/adapters/xendit"
	"github.com/smallbiznis/bukukas/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry() *adapters.Registry {
	return adapters.NewRegistry(xendit.NewDescriptionAdapter(), xendit.NewExternalIDAdapter())
}

func TestDescriptionShape(t *testing.T) {
	payload := []byte(`{"status":"PAID","description":"Payment for Invoice #INV-0001","amount":500000,"paid_at":"2025-05-06T10:00:00Z","payment_method":"BANK_TRANSFER"}`)

	event, err := newRegistry().Interpret(payload)
	require.NoError(t, err)

	assert.Equal(t, domain.ShapeDescription, event.Shape)
	assert.Equal(t, "INV-0001", event.Invoice.Number)
	assert.Equal(t, snowflake.ID(0), event.Invoice.ID)
	assert.Equal(t, "500000.00", event.Amount.StringFixed(2))
	assert.Equal(t, "", event.Currency)
	assert.Equal(t, time.Date(2025, 5, 6, 10, 0, 0, 0, time.UTC), event.PaidAt)
	assert.Equal(t, "invoice:INV-0001@2025-05-06T10:00:00Z", event.ProcessorReference)
	assert.Equal(t, "BANK_TRANSFER", event.PaymentMethod)
	assert.Equal(t, payload, event.RawPayload)
}

func TestDescriptionShapePrefersProcessorID(t *testing.T) {
	payload := []byte(`{"id":"inv_xnd_1","status":"PAID","description":"Payment for Invoice #INV-0001 ","amount":"100.5","paid_amount":"100.50","currency":"idr","paid_at":"2025-05-06T10:00:00.123Z"}`)

	event, err := newRegistry().Interpret(payload)
	require.NoError(t, err)

	assert.Equal(t, "inv_xnd_1", event.ProcessorReference)
	assert.Equal(t, "INV-0001", event.Invoice.Number)
	assert.Equal(t, "100.50", event.Amount.StringFixed(2))
	assert.Equal(t, "IDR", event.Currency)
}

func TestExternalIDShape(t *testing.T) {
	payload := []byte(`{"event":"invoice.paid","external_id":"inv-123-INV20250506523","data":{"id":"xnd_evt_9","amount":250.5,"currency":"IDR","paid_at":"2025-05-06T11:30:00Z","payment_channel":"BCA"}}`)

	event, err := newRegistry().Interpret(payload)
	require.NoError(t, err)

	assert.Equal(t, domain.ShapeExternalID, event.Shape)
	assert.Equal(t, snowflake.ID(123), event.Invoice.ID)
	assert.Equal(t, "", event.Invoice.Number)
	assert.Equal(t, "INV-20250506-523", event.Invoice.RecoveredNumber)
	assert.Equal(t, "xnd_evt_9", event.ProcessorReference)
	assert.Equal(t, "250.50", event.Amount.StringFixed(2))
	assert.Equal(t, "IDR", event.Currency)
	assert.Equal(t, "BCA", event.PaymentChannel)
}

func TestExternalIDShapeWithoutEventUsesStatus(t *testing.T) {
	payload := []byte(`{"id":"xnd_inv_1","external_id":"inv-77-INV20250101001","status":"PAID","paid_amount":1000,"paid_at":"2025-01-01T00:00:00Z"}`)

	event, err := newRegistry().Interpret(payload)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(77), event.Invoice.ID)
	assert.Equal(t, "xnd_inv_1", event.ProcessorReference)
	assert.Equal(t, "1000.00", event.Amount.StringFixed(2))
}

func TestReferenceCallbacks(t *testing.T) {
	paidAt := time.Date(2025, 5, 6, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name      string
		payload   string
		shape     domain.Shape
		invoiceID snowflake.ID
		number    string
		recovered string
		reference string
		currency  string
	}{
		{
			name:      "description without processor id",
			payload:   `{"description":"Payment for Invoice #INV-20250506-523","status":"PAID","amount":500000,"paid_at":"2025-05-06T10:00:00Z"}`,
			shape:     domain.ShapeDescription,
			number:    "INV-20250506-523",
			reference: "invoice:INV-20250506-523@2025-05-06T10:00:00Z",
		},
		{
			name:      "external id with nested data",
			payload:   `{"external_id":"inv-32-INV20250506523","event":"invoice.paid","data":{"id":"proc-evt-1","amount":500000,"paid_at":"2025-05-06T10:00:00Z","currency":"IDR"}}`,
			shape:     domain.ShapeExternalID,
			invoiceID: 32,
			recovered: "INV-20250506-523",
			reference: "proc-evt-1",
			currency:  "IDR",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := newRegistry().Interpret([]byte(tc.payload))
			require.NoError(t, err)

			assert.Equal(t, tc.shape, event.Shape)
			assert.Equal(t, tc.invoiceID, event.Invoice.ID)
			assert.Equal(t, tc.number, event.Invoice.Number)
			assert.Equal(t, tc.recovered, event.Invoice.RecoveredNumber)
			assert.Equal(t, tc.reference, event.ProcessorReference)
			assert.Equal(t, "500000.00", event.Amount.StringFixed(2))
			assert.Equal(t, tc.currency, event.Currency)
			assert.Equal(t, paidAt, event.PaidAt)
		})
	}
}

func TestIgnoredEvents(t *testing.T) {
	cases := map[string]string{
		"pending description":   `{"status":"PENDING","description":"Payment for Invoice #INV-0001","amount":10,"paid_at":"2025-05-06T10:00:00Z"}`,
		"expired description":   `{"status":"EXPIRED","description":"Payment for Invoice #INV-0001"}`,
		"expired external id":   `{"event":"invoice.expired","external_id":"inv-1-INV20250506001","data":{"id":"x"}}`,
		"pending external id":   `{"status":"PENDING","external_id":"inv-1-INV20250506001"}`,
		"unknown status casing": `{"status":"settling","description":"Payment for Invoice #INV-9"}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newRegistry().Interpret([]byte(payload))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrEventIgnored), "got %v", err)
		})
	}
}

func TestMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"invalid json":            `{"status":`,
		"array body":              `[1,2,3]`,
		"no invoice reference":    `{"status":"PAID","description":"Top up","amount":10}`,
		"empty invoice number":    `{"status":"PAID","description":"Payment for Invoice #   ","amount":10}`,
		"bad external id":         `{"status":"PAID","external_id":"order-1-INV1"}`,
		"missing amount":          `{"status":"PAID","description":"Payment for Invoice #INV-1","paid_at":"2025-05-06T10:00:00Z"}`,
		"zero amount":             `{"id":"a","status":"PAID","description":"Payment for Invoice #INV-1","amount":0,"paid_at":"2025-05-06T10:00:00Z"}`,
		"missing paid_at":         `{"id":"a","status":"PAID","description":"Payment for Invoice #INV-1","amount":5}`,
		"bad paid_at":             `{"id":"a","status":"PAID","description":"Payment for Invoice #INV-1","amount":5,"paid_at":"yesterday"}`,
		"missing reference":       `{"event":"invoice.paid","external_id":"inv-5-INV20250506001","data":{"amount":5,"paid_at":"2025-05-06T10:00:00Z"}}`,
		"bad currency":            `{"id":"a","status":"PAID","description":"Payment for Invoice #INV-1","amount":5,"currency":"RUPIAH","paid_at":"2025-05-06T10:00:00Z"}`,
		"non string status":       `{"status":1,"description":"Payment for Invoice #INV-1"}`,
		"invoice id out of range": `{"status":"PAID","external_id":"inv-99999999999999999999-X","id":"a","amount":1,"paid_at":"2025-05-06T10:00:00Z"}`,
		"amount is not a number":  `{"id":"a","status":"PAID","description":"Payment for Invoice #INV-1","amount":"ten","paid_at":"2025-05-06T10:00:00Z"}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newRegistry().Interpret([]byte(payload))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrMalformedPayload), "got %v", err)
		})
	}
}

func TestRegistryOrder(t *testing.T) {
	registry := adapters.NewRegistry(
		xendit.NewDescriptionAdapter(),
		nil,
		xendit.NewExternalIDAdapter(),
		xendit.NewDescriptionAdapter(),
	)
	assert.Equal(t, []domain.Shape{domain.ShapeDescription, domain.ShapeExternalID}, registry.Names())

	// Both shapes present: the description wins.
	payload := []byte(`{"id":"r1","status":"PAID","description":"Payment for Invoice #INV-0002","external_id":"inv-5-INV20250506001","amount":10,"paid_at":"2025-05-06T10:00:00Z"}`)
	event, err := registry.Interpret(payload)
	require.NoError(t, err)
	assert.Equal(t, domain.ShapeDescription, event.Shape)
	assert.Equal(t, "INV-0002", event.Invoice.Number)
}
