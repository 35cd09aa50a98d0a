package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obsmetrics "github.com/smallbiznis/bukukas/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/bukukas/internal/payment/domain"
)

const (
	HeaderCallbackToken = "X-Callback-Token"

	contextWebhookOutcomeKey = "webhook_outcome"
)

func (s *Server) HandleXenditWebhook(c *gin.Context) {
	var companyID snowflake.ID
	if raw := strings.TrimSpace(c.Param("company_id")); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil || parsed <= 0 {
			c.Set(contextWebhookOutcomeKey, obsmetrics.ReconcileOutcomeRejected)
			AbortWithError(c, ErrNotFound)
			return
		}
		companyID = parsed
	}

	result, err := s.webhookSvc.IngestXendit(c.Request.Context(), paymentdomain.WebhookRequest{
		Token:     c.GetHeader(HeaderCallbackToken),
		CompanyID: companyID,
		Body:      c.Request.Body,
	})
	if err != nil {
		status, _ := mapError(err)
		outcome := obsmetrics.ReconcileOutcomeRejected
		if status >= http.StatusInternalServerError {
			outcome = obsmetrics.ReconcileOutcomeFailed
		}
		c.Set(contextWebhookOutcomeKey, outcome)
		AbortWithError(c, err)
		return
	}
	if result == nil {
		AbortWithError(c, ErrInternal)
		return
	}

	c.Set(contextWebhookOutcomeKey, string(result.Outcome))
	c.JSON(http.StatusOK, webhookResponse(result))
}

func webhookResponse(result *paymentdomain.ReconcileResult) gin.H {
	body := gin.H{
		"status":  string(result.Outcome),
		"message": result.Message,
	}
	if result.InvoiceID != 0 {
		body["invoice_id"] = result.InvoiceID.String()
		body["invoice_number"] = result.InvoiceNumber
	}
	if result.PaymentID != 0 {
		body["payment_id"] = result.PaymentID.String()
	}
	if result.TransactionID != nil {
		body["transaction_id"] = result.TransactionID.String()
	}
	return body
}
