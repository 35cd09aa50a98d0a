package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bukukas/internal/clock"
	"github.com/smallbiznis/bukukas/internal/config"
	invoicedomain "github.com/smallbiznis/bukukas/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/bukukas/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/bukukas/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/bukukas/internal/payment/domain"
	"github.com/smallbiznis/bukukas/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	GenID            *snowflake.Node
	Clock            clock.Clock
	Cfg              config.Config
	Invoices         invoicedomain.Repository
	Repo             paymentdomain.Repository
	LedgerSvc        ledgerdomain.Service
	Methods          *config.PaymentMethodsHolder `optional:"true"`
	ObsMetrics       *obsmetrics.Metrics          `optional:"true"`
	ReconcileMetrics *obsmetrics.ReconcileMetrics `optional:"true"`
}

type Service struct {
	db               *gorm.DB
	log              *zap.Logger
	genID            *snowflake.Node
	clock            clock.Clock
	timeout          time.Duration
	requireAccount   bool
	invoices         invoicedomain.Repository
	repo             paymentdomain.Repository
	ledgerSvc        ledgerdomain.Service
	methods          *config.PaymentMethodsHolder
	obsMetrics       *obsmetrics.Metrics
	reconcileMetrics *obsmetrics.ReconcileMetrics
}

func NewService(p Params) *Service {
	return &Service{
		db:               p.DB,
		log:              p.Log.Named("payment.service"),
		genID:            p.GenID,
		clock:            p.Clock,
		timeout:          p.Cfg.Reconcile.Timeout,
		requireAccount:   p.Cfg.Reconcile.RequireAccount,
		invoices:         p.Invoices,
		repo:             p.Repo,
		ledgerSvc:        p.LedgerSvc,
		methods:          p.Methods,
		obsMetrics:       p.ObsMetrics,
		reconcileMetrics: p.ReconcileMetrics,
	}
}

// Reconcile records the payment, marks the invoice paid and credits the
// receivable account. Either every row is written or none is.
func (s *Service) Reconcile(ctx context.Context, invoice *invoicedomain.Invoice, event *paymentdomain.PaymentEvent) (*paymentdomain.ReconcileResult, error) {
	if invoice == nil || invoice.ID == 0 || event == nil {
		return nil, paymentdomain.ErrInvalidEvent
	}
	event.ProcessorReference = strings.TrimSpace(event.ProcessorReference)
	if event.ProcessorReference == "" || !event.Amount.IsPositive() || event.PaidAt.IsZero() {
		return nil, paymentdomain.ErrInvalidEvent
	}

	start := time.Now()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	currency := strings.ToUpper(strings.TrimSpace(event.Currency))
	if currency == "" {
		currency = strings.ToUpper(strings.TrimSpace(invoice.Currency))
	}
	if invoiceCurrency := strings.ToUpper(strings.TrimSpace(invoice.Currency)); invoiceCurrency != "" && currency != invoiceCurrency {
		s.log.Warn("payment currency differs from invoice currency",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("payment_currency", currency),
			zap.String("invoice_currency", invoiceCurrency),
		)
	}

	now := s.clock.Now()
	method := s.methods.Resolve(event.PaymentMethod, event.PaymentChannel)
	payment := &paymentdomain.Payment{
		ID:                        s.genID.Generate(),
		CompanyID:                 invoice.CompanyID,
		InvoiceID:                 invoice.ID,
		Amount:                    event.Amount.Round(2),
		Currency:                  currency,
		PaymentDate:               event.PaidAt.UTC(),
		PaymentMethod:             method,
		PaymentProcessorReference: event.ProcessorReference,
		Status:                    paymentdomain.PaymentStatusCompleted,
		Metadata:                  eventMetadata(event),
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	var (
		posted   *ledgerdomain.Transaction
		unposted bool
		number   = invoice.InvoiceNumber
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.invoices.LockInvoice(ctx, tx, invoice.ID)
		if err != nil {
			if errors.Is(err, invoicedomain.ErrInvoiceNotFound) {
				return paymentdomain.ErrInvoiceNotFound
			}
			return err
		}
		number = locked.InvoiceNumber

		if err := s.repo.InsertPayment(ctx, tx, payment); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return paymentdomain.ErrDuplicateEvent
			}
			return err
		}

		if err := s.invoices.MarkPaid(ctx, tx, locked.ID, payment.PaymentDate, now); err != nil {
			return err
		}

		account, err := s.ledgerSvc.ResolveReceivableAccount(ctx, tx, locked.CompanyID)
		if err != nil {
			if !s.requireAccount && (errors.Is(err, ledgerdomain.ErrAccountNotConfigured) || errors.Is(err, ledgerdomain.ErrAccountAmbiguous)) {
				unposted = true
				return nil
			}
			return err
		}

		posted, err = s.ledgerSvc.PostCredit(ctx, tx, ledgerdomain.PostingRequest{
			CompanyID:        locked.CompanyID,
			AccountID:        account.ID,
			Amount:           payment.Amount,
			Currency:         currency,
			RelatedInvoiceID: locked.ID,
			Description:      fmt.Sprintf("Payment for invoice %s via %s", locked.InvoiceNumber, method),
			TransactionDate:  payment.PaymentDate,
			SourceType:       ledgerdomain.SourceTypePayment,
		})
		if err != nil {
			return err
		}

		if err := s.repo.LinkTransaction(ctx, tx, payment.ID, posted.ID, now); err != nil {
			return err
		}
		payment.TransactionID = &posted.ID
		return nil
	})
	s.reconcileMetrics.ObserveDuration(string(event.Shape), time.Since(start))
	if err != nil {
		if errors.Is(err, paymentdomain.ErrDuplicateEvent) || errors.Is(err, paymentdomain.ErrInvoiceNotFound) {
			return nil, err
		}
		s.reconcileMetrics.IncError(err)
		s.log.Error("payment reconciliation rolled back",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("processor_reference", event.ProcessorReference),
			zap.Bool("retryable", obsmetrics.IsReconcileRetryable(err)),
			zap.Error(err),
		)
		return nil, err
	}

	if unposted {
		s.reconcileMetrics.IncUnposted()
		s.log.Warn("payment recorded without ledger transaction",
			zap.String("company_id", invoice.CompanyID.String()),
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("payment_id", payment.ID.String()),
		)
	}
	if posted != nil {
		s.obsMetrics.RecordLedgerPosting(ctx, string(ledgerdomain.SourceTypePayment))
	}

	s.log.Info("payment reconciled",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", number),
		zap.String("payment_id", payment.ID.String()),
		zap.String("shape", string(event.Shape)),
	)

	return &paymentdomain.ReconcileResult{
		Outcome:       paymentdomain.OutcomeProcessed,
		Shape:         event.Shape,
		InvoiceID:     invoice.ID,
		InvoiceNumber: number,
		PaymentID:     payment.ID,
		TransactionID: payment.TransactionID,
		Message:       fmt.Sprintf("invoice %s marked as paid", number),
	}, nil
}

func eventMetadata(event *paymentdomain.PaymentEvent) datatypes.JSONMap {
	metadata := datatypes.JSONMap{
		"provider": event.Provider,
		"shape":    string(event.Shape),
	}
	if event.Status != "" {
		metadata["processor_status"] = event.Status
	}
	if event.PaymentMethod != "" {
		metadata["processor_method"] = event.PaymentMethod
	}
	if event.PaymentChannel != "" {
		metadata["processor_channel"] = event.PaymentChannel
	}
	if event.Invoice.RecoveredNumber != "" {
		metadata["recovered_invoice_number"] = event.Invoice.RecoveredNumber
	}
	return metadata
}
