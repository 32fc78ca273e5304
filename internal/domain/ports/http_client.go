package ports

import (
	"net/http"
	"time"
)

// HTTPClient defines the interface for making HTTP requests
// This allows us to mock HTTP calls in tests and swap implementations
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Clock supplies the request time recorded on payments
type Clock interface {
	Now() time.Time
}

// IDGenerator produces idempotency keys, one per outbound request
type IDGenerator interface {
	NewID() string
}
