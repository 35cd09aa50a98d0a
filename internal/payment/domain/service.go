package domain

import (
	"context"
	"io"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/bukukas/internal/invoice/domain"
)

// Reconciler applies a completed payment to an invoice in one unit of work.
type Reconciler interface {
	Reconcile(ctx context.Context, invoice *invoicedomain.Invoice, event *PaymentEvent) (*ReconcileResult, error)
}

// WebhookRequest is one inbound processor callback. Body is not read until
// the token has been authenticated.
type WebhookRequest struct {
	Token     string
	CompanyID snowflake.ID
	Body      io.Reader
}

type WebhookService interface {
	IngestXendit(ctx context.Context, req WebhookRequest) (*ReconcileResult, error)
}
