package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PayWay REST API request metrics
	paywayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payway_api_requests_total",
			Help: "Total number of requests sent to the PayWay REST API",
		},
		[]string{"method", "endpoint", "status"},
	)

	paywayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payway_api_request_duration_seconds",
			Help:    "Duration of PayWay REST API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	paywayRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "payway_api_requests_in_flight",
			Help: "Number of PayWay REST API requests currently in flight",
		},
	)

	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "payway_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// StatusTransportError labels requests that never produced an HTTP response
const StatusTransportError = "transport_error"

// TrackRequest marks a PayWay request as in flight and returns a func that records it.
// status is the HTTP status code, or 0 for a transport failure.
func TrackRequest(method, endpoint string) func(status int) {
	start := time.Now()
	paywayRequestsInFlight.Inc()

	return func(status int) {
		paywayRequestsInFlight.Dec()
		paywayRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())

		label := StatusTransportError
		if status > 0 {
			label = strconv.Itoa(status)
		}
		paywayRequestsTotal.WithLabelValues(method, endpoint, label).Inc()
	}
}

// SetCircuitBreakerState publishes the breaker state
func SetCircuitBreakerState(name string, state int) {
	circuitBreakerState.WithLabelValues(name).Set(float64(state))
}
