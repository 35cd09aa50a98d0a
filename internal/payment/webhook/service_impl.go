package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bukukas/internal/cache"
	"github.com/smallbiznis/bukukas/internal/config"
	invoicedomain "github.com/smallbiznis/bukukas/internal/invoice/domain"
	"github.com/smallbiznis/bukukas/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/bukukas/internal/observability/metrics"
	"github.com/smallbiznis/bukukas/internal/observability/tracing"
	"github.com/smallbiznis/bukukas/internal/payment/adapters"
	paymentdomain "github.com/smallbiznis/bukukas/internal/payment/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxPayloadBytes bounds the callback body read into memory.
const MaxPayloadBytes = 1 << 20

type Params struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	Cfg              config.Config
	Adapters         *adapters.Registry
	Invoices         invoicedomain.Repository
	Repo             paymentdomain.Repository
	Reconciler       paymentdomain.Reconciler
	Processed        cache.ProcessedCache         `optional:"true"`
	ObsMetrics       *obsmetrics.Metrics          `optional:"true"`
	ReconcileMetrics *obsmetrics.ReconcileMetrics `optional:"true"`
}

type Service struct {
	db               *gorm.DB
	log              *zap.Logger
	auth             *Authenticator
	adapters         *adapters.Registry
	invoices         invoicedomain.Repository
	repo             paymentdomain.Repository
	reconciler       paymentdomain.Reconciler
	processed        cache.ProcessedCache
	obsMetrics       *obsmetrics.Metrics
	reconcileMetrics *obsmetrics.ReconcileMetrics
}

func NewService(p Params) paymentdomain.WebhookService {
	processed := p.Processed
	if processed == nil {
		processed = cache.NoopProcessedCache{}
	}
	log := p.Log.Named("payment.webhook")
	if p.Cfg.Xendit.CallbackToken == "" {
		log.Warn("xendit callback token is not configured, every callback will be rejected")
	}
	return &Service{
		db:               p.DB,
		log:              log,
		auth:             NewAuthenticator(p.Cfg.Xendit.CallbackToken),
		adapters:         p.Adapters,
		invoices:         p.Invoices,
		repo:             p.Repo,
		reconciler:       p.Reconciler,
		processed:        processed,
		obsMetrics:       p.ObsMetrics,
		reconcileMetrics: p.ReconcileMetrics,
	}
}

// IngestXendit authenticates, interprets and reconciles one Xendit callback.
// Ignored and duplicate deliveries return a result and no error.
func (s *Service) IngestXendit(ctx context.Context, req paymentdomain.WebhookRequest) (*paymentdomain.ReconcileResult, error) {
	start := time.Now()
	ctx, span := otel.Tracer("bukukas/payment").Start(ctx, "payment.webhook.xendit")
	defer span.End()

	log := logger.WithContext(ctx, s.log)

	result, err := s.ingest(ctx, log, req)
	outcome := outcomeOf(result, err)
	s.obsMetrics.RecordPaymentWebhook(ctx, paymentdomain.ProviderXendit, outcome, time.Since(start))
	s.reconcileMetrics.IncOutcome(outcome)

	span.SetAttributes(tracing.SafeAttributes(attribute.String("webhook.outcome", outcome))...)
	if result != nil {
		span.SetAttributes(tracing.SafeAttributes(
			attribute.String("webhook.shape", string(result.Shape)),
			attribute.String("invoice.id", result.InvoiceID.String()),
		)...)
	}
	if err != nil && outcome == obsmetrics.ReconcileOutcomeFailed {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "reconcile failed")
	}
	return result, err
}

func (s *Service) ingest(ctx context.Context, log *zap.Logger, req paymentdomain.WebhookRequest) (*paymentdomain.ReconcileResult, error) {
	if err := s.auth.Authenticate(req.Token); err != nil {
		log.Warn("xendit callback rejected, invalid token")
		return nil, err
	}

	if req.Body == nil {
		return nil, fmt.Errorf("%w: empty body", paymentdomain.ErrMalformedPayload)
	}
	payload, err := io.ReadAll(io.LimitReader(req.Body, MaxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", paymentdomain.ErrMalformedPayload, err)
	}
	if len(payload) > MaxPayloadBytes {
		return nil, paymentdomain.ErrPayloadTooLarge
	}

	event, err := s.adapters.Interpret(payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			log.Info("xendit callback ignored", zap.String("reason", err.Error()))
			return &paymentdomain.ReconcileResult{
				Outcome: paymentdomain.OutcomeIgnored,
				Message: "event is not a completed payment",
			}, nil
		}
		log.Warn("xendit callback malformed", zap.Error(err))
		return nil, err
	}

	log = log.With(
		zap.String("shape", string(event.Shape)),
		zap.String("invoice", event.Invoice.Label()),
		zap.String("processor_reference", event.ProcessorReference),
	)

	invoice, err := s.findInvoice(ctx, event.Invoice, req.CompanyID)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrInvoiceNotFound) {
			log.Warn("xendit callback for unknown invoice")
		}
		return nil, err
	}

	seen := s.processed.Seen(ctx, event.Provider, invoice.ID, event.ProcessorReference)

	existing, err := s.repo.FindPaymentByReference(ctx, s.db, invoice.ID, event.ProcessorReference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !seen {
			s.processed.MarkProcessed(ctx, event.Provider, invoice.ID, event.ProcessorReference)
		}
		log.Info("xendit callback already recorded",
			zap.String("payment_id", existing.ID.String()),
			zap.Bool("cache_hit", seen),
		)
		return duplicateResult(event, invoice, existing), nil
	}
	if seen {
		log.Info("processed marker has no live payment, reconciling again")
	}

	result, err := s.reconciler.Reconcile(ctx, invoice, event)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrDuplicateEvent) {
			log.Info("xendit callback lost the insert race to a concurrent delivery")
			return duplicateResult(event, invoice, nil), nil
		}
		return nil, err
	}

	s.processed.MarkProcessed(ctx, event.Provider, invoice.ID, event.ProcessorReference)
	return result, nil
}

func (s *Service) findInvoice(ctx context.Context, ref paymentdomain.InvoiceRef, companyID snowflake.ID) (*invoicedomain.Invoice, error) {
	filter := invoicedomain.InvoiceFilter{CompanyID: companyID}
	if ref.ID != 0 {
		filter.ID = ref.ID
	} else {
		filter.Number = ref.Number
	}

	invoice, err := s.invoices.FindInvoice(ctx, s.db, filter)
	if err != nil {
		if errors.Is(err, invoicedomain.ErrInvoiceAmbiguous) || errors.Is(err, invoicedomain.ErrInvalidFilter) {
			return nil, fmt.Errorf("%w: %s", paymentdomain.ErrInvoiceNotFound, ref.Label())
		}
		return nil, err
	}
	if invoice == nil {
		return nil, fmt.Errorf("%w: %s", paymentdomain.ErrInvoiceNotFound, ref.Label())
	}
	return invoice, nil
}

func duplicateResult(event *paymentdomain.PaymentEvent, invoice *invoicedomain.Invoice, existing *paymentdomain.Payment) *paymentdomain.ReconcileResult {
	result := &paymentdomain.ReconcileResult{
		Outcome:       paymentdomain.OutcomeDuplicate,
		Shape:         event.Shape,
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		Message:       "payment already recorded",
	}
	if existing != nil {
		result.PaymentID = existing.ID
		result.TransactionID = existing.TransactionID
	}
	return result
}

func outcomeOf(result *paymentdomain.ReconcileResult, err error) string {
	if err == nil {
		if result == nil {
			return obsmetrics.ReconcileOutcomeFailed
		}
		return string(result.Outcome)
	}
	switch {
	case errors.Is(err, paymentdomain.ErrUnauthorized),
		errors.Is(err, paymentdomain.ErrMalformedPayload),
		errors.Is(err, paymentdomain.ErrPayloadTooLarge),
		errors.Is(err, paymentdomain.ErrInvoiceNotFound):
		return obsmetrics.ReconcileOutcomeRejected
	}
	return obsmetrics.ReconcileOutcomeFailed
}
