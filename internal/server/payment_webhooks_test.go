package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/bukukas/internal/observability"
	paymentdomain "github.com/smallbiznis/bukukas/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockWebhookService struct {
	mock.Mock
}

func (m *mockWebhookService) IngestXendit(ctx context.Context, req paymentdomain.WebhookRequest) (*paymentdomain.ReconcileResult, error) {
	body, _ := io.ReadAll(req.Body)
	args := m.Called(req.Token, req.CompanyID, string(body))
	result, _ := args.Get(0).(*paymentdomain.ReconcileResult)
	return result, args.Error(1)
}

func newTestServer(t *testing.T, svc paymentdomain.WebhookService) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewServer(ServerParams{
		Gin:        NewEngine(observability.Config{}),
		Log:        zap.NewNop(),
		WebhookSvc: svc,
	})
}

func postWebhook(s *Server, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(HeaderCallbackToken, token)
	}
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestXenditWebhookProcessed(t *testing.T) {
	svc := &mockWebhookService{}
	txID := snowflake.ID(99)
	svc.On("IngestXendit", "tok", snowflake.ID(0), `{"status":"PAID"}`).Return(&paymentdomain.ReconcileResult{
		Outcome:       paymentdomain.OutcomeProcessed,
		InvoiceID:     32,
		InvoiceNumber: "INV-0001",
		PaymentID:     77,
		TransactionID: &txID,
		Message:       "invoice INV-0001 marked as paid",
	}, nil)

	rec := postWebhook(newTestServer(t, svc), "/api/webhooks/xendit", "tok", `{"status":"PAID"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "processed", body["status"])
	assert.Equal(t, "32", body["invoice_id"])
	assert.Equal(t, "INV-0001", body["invoice_number"])
	assert.Equal(t, "77", body["payment_id"])
	assert.Equal(t, "99", body["transaction_id"])
	svc.AssertExpectations(t)
}

func TestXenditWebhookCompanyScope(t *testing.T) {
	svc := &mockWebhookService{}
	svc.On("IngestXendit", "tok", snowflake.ID(1234), "{}").Return(&paymentdomain.ReconcileResult{
		Outcome: paymentdomain.OutcomeIgnored,
		Message: "event is not a completed payment",
	}, nil)
	s := newTestServer(t, svc)

	rec := postWebhook(s, "/api/webhooks/xendit/companies/1234", "tok", "{}")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ignored", decodeBody(t, rec)["status"])

	rec = postWebhook(s, "/api/webhooks/xendit/companies/not-a-number", "tok", "{}")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertNumberOfCalls(t, "IngestXendit", 1)
}

func TestXenditWebhookDuplicateIsOK(t *testing.T) {
	svc := &mockWebhookService{}
	svc.On("IngestXendit", "tok", snowflake.ID(0), "{}").Return(&paymentdomain.ReconcileResult{
		Outcome:       paymentdomain.OutcomeDuplicate,
		InvoiceID:     32,
		InvoiceNumber: "INV-0001",
		Message:       "payment already recorded",
	}, nil)

	rec := postWebhook(newTestServer(t, svc), "/api/webhooks/xendit", "tok", "{}")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "duplicate", body["status"])
	_, hasPayment := body["payment_id"]
	assert.False(t, hasPayment)
}

func TestXenditWebhookErrorMapping(t *testing.T) {
	cases := []struct {
		err       error
		status    int
		errorType string
	}{
		{paymentdomain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{fmt.Errorf("%w: invalid json", paymentdomain.ErrMalformedPayload), http.StatusBadRequest, "invalid_payload"},
		{paymentdomain.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "payload_too_large"},
		{fmt.Errorf("%w: INV-404", paymentdomain.ErrInvoiceNotFound), http.StatusNotFound, "not_found"},
		{errors.New("connection reset by peer"), http.StatusInternalServerError, "internal_error"},
		{context.DeadlineExceeded, http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.errorType, func(t *testing.T) {
			svc := &mockWebhookService{}
			svc.On("IngestXendit", "tok", snowflake.ID(0), "{}").Return(nil, tc.err)

			rec := postWebhook(newTestServer(t, svc), "/api/webhooks/xendit", "tok", "{}")
			assert.Equal(t, tc.status, rec.Code)

			body := decodeBody(t, rec)
			errBody, ok := body["error"].(map[string]any)
			require.True(t, ok, "body %s", rec.Body.String())
			assert.Equal(t, tc.errorType, errBody["type"])
			assert.NotContains(t, rec.Body.String(), "connection reset")
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, &mockWebhookService{})

	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClassifyErrorForLog(t *testing.T) {
	errType, code := classifyErrorForLog(paymentdomain.ErrUnauthorized)
	assert.Equal(t, "unauthorized", errType)
	assert.Equal(t, "", code)

	errType, code = classifyErrorForLog(context.DeadlineExceeded)
	assert.Equal(t, "internal_error", errType)
	assert.Equal(t, "deadline_exceeded", code)
}
