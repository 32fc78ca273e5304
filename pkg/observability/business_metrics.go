package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Payment attempt outcomes
	paymentAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payway_payment_attempts_total",
		Help: "Total createPayment attempts by outcome",
	}, []string{
		"merchant_id",
		"outcome",          // authorized, captured, declined, failed, expired
		"decline_category", // insufficient_funds, expired_card, ... empty when approved
	})

	paymentAmountCents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payway_payment_amount_cents_total",
		Help: "Total approved principal amount in cents (for revenue tracking)",
	}, []string{
		"merchant_id",
		"currency",
	})

	paymentProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "payway_payment_processing_duration_seconds",
		Help: "Time to process a payment attempt end-to-end",
		// Buckets: 100ms to 30s (typical payment processing times)
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{
		"merchant_id",
		"outcome",
	})

	// Payment method lifecycle
	paymentMethodsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payway_payment_methods_created_total",
		Help: "Total payment methods created",
	}, []string{
		"merchant_id",
		"reusable",
		"status", // success, failed
	})

	paymentMethodsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payway_payment_methods_deleted_total",
		Help: "Total payment methods deleted, by remote cleanup result",
	}, []string{
		"merchant_id",
		"remote", // ok, failed, skipped
	})

	// Local cleanup after a failed attempt
	cleanupFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payway_cleanup_failures_total",
		Help: "Storage failures swallowed while cleaning up after a failed payment",
	}, []string{
		"entity", // payment, order, payment_method
	})
)

// RecordPaymentAttempt records the outcome of one createPayment call
func RecordPaymentAttempt(merchantID, outcome, declineCategory string, amountCents int64, currency string, duration float64) {
	paymentAttemptsTotal.WithLabelValues(merchantID, outcome, declineCategory).Inc()
	paymentProcessingDuration.WithLabelValues(merchantID, outcome).Observe(duration)

	// Only approved attempts count toward revenue
	if outcome == OutcomeAuthorized || outcome == OutcomeCaptured {
		paymentAmountCents.WithLabelValues(merchantID, currency).Add(float64(amountCents))
	}
}

// RecordPaymentMethodCreated records a createPaymentMethod call
func RecordPaymentMethodCreated(merchantID string, reusable bool, status string) {
	paymentMethodsCreated.WithLabelValues(merchantID, boolLabel(reusable), status).Inc()
}

// RecordPaymentMethodDeleted records a deletePaymentMethod call
func RecordPaymentMethodDeleted(merchantID, remote string) {
	paymentMethodsDeleted.WithLabelValues(merchantID, remote).Inc()
}

// RecordCleanupFailure records a swallowed storage error during cleanup
func RecordCleanupFailure(entity string) {
	cleanupFailuresTotal.WithLabelValues(entity).Inc()
}

// Payment attempt outcomes
const (
	OutcomeAuthorized = "authorized"
	OutcomeCaptured   = "captured"
	OutcomeDeclined   = "declined"
	OutcomeFailed     = "failed"
	OutcomeExpired    = "expired"
)

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
