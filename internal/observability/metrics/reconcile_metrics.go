package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	ledgerdomain "github.com/smallbiznis/bukukas/internal/ledger/domain"
	"github.com/smallbiznis/bukukas/pkg/db"
)

const (
	ReconcileOutcomeProcessed = "processed"
	ReconcileOutcomeDuplicate = "duplicate"
	ReconcileOutcomeIgnored   = "ignored"
	ReconcileOutcomeRejected  = "rejected"
	ReconcileOutcomeFailed    = "failed"
)

const (
	ReconcileReasonDeadlineExceeded     = "deadline_exceeded"
	ReconcileReasonDBLockTimeout        = "db_lock_timeout"
	ReconcileReasonSerializationFailure = "serialization_failure"
	ReconcileReasonUniqueViolation      = "unique_violation"
	ReconcileReasonBalanceConflict      = "balance_conflict"
	ReconcileReasonUnknown              = "unknown"
)

// ReconcileMetrics captures payment reconciliation health signals.
type ReconcileMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	errors   *prometheus.CounterVec
	unposted prometheus.Counter
}

var (
	reconcileMetricsOnce sync.Once
	reconcileMetrics     *ReconcileMetrics
)

// ReconcileWithConfig returns the process-wide reconciliation metrics using config labels.
func ReconcileWithConfig(cfg Config) *ReconcileMetrics {
	reconcileMetricsOnce.Do(func() {
		reconcileMetrics = NewReconcileMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return reconcileMetrics
}

// NewReconcileMetrics registers reconciliation metrics on the given registerer.
func NewReconcileMetrics(registerer prometheus.Registerer, cfg Config) *ReconcileMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "bukukas"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "bukukas_reconcile_duration_seconds",
		Help:        "Payment reconciliation unit of work latency by payload shape.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	}, []string{"shape"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "bukukas_reconcile_outcomes_total",
		Help:        "Payment webhook outcomes.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	errorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "bukukas_reconcile_errors_total",
		Help:        "Payment reconciliation failures by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"reason"})
	unposted := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "bukukas_unposted_payments_total",
		Help:        "Payments recorded without a ledger transaction because no receivable account resolved.",
		ConstLabels: constLabels,
	})

	registerer.MustRegister(duration, outcomes, errorsTotal, unposted)

	return &ReconcileMetrics{
		duration: duration,
		outcomes: outcomes,
		errors:   errorsTotal,
		unposted: unposted,
	}
}

// ObserveDuration records reconciliation latency for a payload shape.
func (m *ReconcileMetrics) ObserveDuration(shape string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	shape = strings.TrimSpace(shape)
	if shape == "" {
		shape = "unknown"
	}
	m.duration.WithLabelValues(shape).Observe(d.Seconds())
}

// IncOutcome increments the outcome counter.
func (m *ReconcileMetrics) IncOutcome(outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

// IncError increments the error counter with classification.
func (m *ReconcileMetrics) IncError(err error) {
	if m == nil || err == nil || m.errors == nil {
		return
	}
	m.errors.WithLabelValues(ClassifyReconcileReason(err)).Inc()
}

// IncUnposted counts a payment committed without a ledger posting.
func (m *ReconcileMetrics) IncUnposted() {
	if m == nil || m.unposted == nil {
		return
	}
	m.unposted.Inc()
}

// ClassifyReconcileReason maps reconciliation errors to low-cardinality reasons.
func ClassifyReconcileReason(err error) string {
	if err == nil {
		return ReconcileReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ReconcileReasonDeadlineExceeded
	}
	if errors.Is(err, ledgerdomain.ErrBalanceConflict) {
		return ReconcileReasonBalanceConflict
	}
	if db.PGErrorCode(err) == db.PGLockNotAvailable {
		return ReconcileReasonDBLockTimeout
	}
	if db.PGErrorCode(err) == db.PGSerializationFailure {
		return ReconcileReasonSerializationFailure
	}
	if db.IsDuplicateKeyErr(err) {
		return ReconcileReasonUniqueViolation
	}
	return ReconcileReasonUnknown
}

// IsReconcileRetryable reports whether the processor should be told to redeliver.
func IsReconcileRetryable(err error) bool {
	switch ClassifyReconcileReason(err) {
	case ReconcileReasonDeadlineExceeded, ReconcileReasonDBLockTimeout,
		ReconcileReasonSerializationFailure, ReconcileReasonBalanceConflict:
		return true
	}
	return false
}
