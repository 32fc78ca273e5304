package payway

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kevin07696/payway-gateway/internal/config"
	"github.com/kevin07696/payway-gateway/internal/domain"
	"github.com/kevin07696/payway-gateway/internal/domain/ports"
	"github.com/kevin07696/payway-gateway/pkg/observability"
)

// API paths used by the gateway
const (
	PathTransactions = "/transactions"
	PathCustomers    = "/customers"
)

// CustomerPath returns /customers/{customerNumber}
func CustomerPath(customerNumber string) string {
	return PathCustomers + "/" + url.PathEscape(customerNumber)
}

// PaymentSetupPath returns /customers/{customerNumber}/payment-setup
func PaymentSetupPath(customerNumber string) string {
	return CustomerPath(customerNumber) + "/payment-setup"
}

// Response is the raw outcome of one PayWay call
type Response = ports.GatewayResponse

// BreakerConfig configures the circuit breaker in front of PayWay
type BreakerConfig struct {
	// MaxFailures is the number of consecutive transport failures before opening
	MaxFailures uint32
	// Timeout is how long the breaker stays open before a trial request
	Timeout time.Duration
	// MaxRequestsHalfOpen is the number of trial requests allowed while half-open
	MaxRequestsHalfOpen uint32
}

// DefaultBreakerConfig returns sensible defaults
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:         5,
		Timeout:             30 * time.Second,
		MaxRequestsHalfOpen: 1,
	}
}

// ClientOption customises a RestAPIClient
type ClientOption func(*RestAPIClient)

// WithBreakerConfig replaces the default circuit breaker settings
func WithBreakerConfig(cfg BreakerConfig) ClientOption {
	return func(c *RestAPIClient) {
		c.breakerConfig = cfg
	}
}

// RestAPIClient sends authenticated, idempotent requests to the PayWay REST API
type RestAPIClient struct {
	cfg        config.GatewayConfig
	httpClient ports.HTTPClient
	ids        ports.IDGenerator
	logger     ports.Logger

	breakerConfig BreakerConfig
	breaker       *gobreaker.CircuitBreaker[*http.Response]

	mu       sync.RWMutex
	lastBody string
}

// NewRestAPIClient creates a new PayWay client with dependency injection
func NewRestAPIClient(cfg config.GatewayConfig, httpClient ports.HTTPClient, ids ports.IDGenerator, logger ports.Logger, opts ...ClientOption) *RestAPIClient {
	c := &RestAPIClient{
		cfg:           cfg,
		httpClient:    httpClient,
		ids:           ids,
		logger:        logger,
		breakerConfig: DefaultBreakerConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}

	bc := c.breakerConfig
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "payway",
		MaxRequests: bc.MaxRequestsHalfOpen,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.SetCircuitBreakerState(name, int(to))
			c.logger.Warn("PayWay circuit breaker state changed",
				ports.String("from", from.String()),
				ports.String("to", to.String()),
			)
		},
	})

	return c
}

// SecretKey returns the secret API key for the configured mode
func (c *RestAPIClient) SecretKey() (string, error) {
	return c.cfg.SecretKey()
}

// MerchantID returns the configured merchant id
func (c *RestAPIClient) MerchantID() string {
	return c.cfg.MerchantID
}

// Response returns the body of the last response received, or "" if none
func (c *RestAPIClient) Response() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastBody
}

// Healthy returns an error while the circuit breaker is open
func (c *RestAPIClient) Healthy() error {
	if c.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("PayWay circuit breaker is open")
	}
	return nil
}

// SubmitRequest sends params to path with a fresh idempotency key.
// merchantId from configuration always overrides a caller-supplied value.
func (c *RestAPIClient) SubmitRequest(ctx context.Context, method, path string, params map[string]string) (*Response, error) {
	secretKey, err := c.SecretKey()
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("merchantId", c.cfg.MerchantID)
	payload := form.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, method, c.cfg.APIBaseURL+path, strings.NewReader(payload))
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeInternal, "failed to create PayWay request", err)
	}

	idempotencyKey := c.ids.NewID()
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(secretKey)))
	httpReq.Header.Set("Idempotency-Key", idempotencyKey)

	c.logger.Debug("making request to PayWay",
		ports.String("method", method),
		ports.String("endpoint", path),
		ports.String("idempotency_key", idempotencyKey),
	)

	done := observability.TrackRequest(method, endpointLabel(path))

	httpResp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.httpClient.Do(httpReq)
	})
	if err != nil {
		done(0)
		msg := "failed to connect to PayWay"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			msg = "PayWay circuit breaker is open"
		}
		c.logger.Warn(msg,
			ports.String("method", method),
			ports.String("endpoint", path),
			ports.Err(err),
		)
		return nil, domain.NewTransportError(msg, err).
			WithDetail("method", method).
			WithDetail("endpoint", path)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		done(0)
		return nil, domain.NewTransportError("failed to read PayWay response", err).
			WithDetail("method", method).
			WithDetail("endpoint", path)
	}
	done(httpResp.StatusCode)

	c.mu.Lock()
	c.lastBody = string(body)
	c.mu.Unlock()

	c.logger.Debug("PayWay response received",
		ports.String("method", method),
		ports.String("endpoint", path),
		ports.Int("status", httpResp.StatusCode),
	)

	return &Response{
		StatusCode:     httpResp.StatusCode,
		Body:           string(body),
		IdempotencyKey: idempotencyKey,
	}, nil
}

// endpointLabel replaces identifiers in path with {id} to bound metric cardinality
func endpointLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := 1; i < len(segments); i++ {
		prev := segments[i-1]
		if prev == "customers" || prev == "transactions" {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}
