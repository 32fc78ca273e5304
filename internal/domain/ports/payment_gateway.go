package ports

import "context"

// GatewayResponse is the raw outcome of one processor call.
// Non-2xx statuses are responses, not errors.
type GatewayResponse struct {
	StatusCode     int
	Body           string
	IdempotencyKey string
}

// IsSuccess reports a 2xx status
func (r *GatewayResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// PaymentGatewayClient sends authenticated requests to the payment processor.
// SubmitRequest returns a configuration error before any network I/O when the
// key cannot be selected, and a transport error when no response was received.
type PaymentGatewayClient interface {
	SubmitRequest(ctx context.Context, method, path string, params map[string]string) (*GatewayResponse, error)
	Response() string
}
