package gateway

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/kevin07696/payway-gateway/internal/domain"
	"github.com/kevin07696/payway-gateway/internal/domain/ports"
)

// mockPaymentRepository claims like the database does: a payment can be
// claimed once until it is released. claimErr overrides the outcome.
type mockPaymentRepository struct {
	mock.Mock

	mu       sync.Mutex
	claimed  map[string]bool
	claimErr error
	releases []string
}

var _ ports.PaymentRepository = (*mockPaymentRepository)(nil)

func (m *mockPaymentRepository) Get(ctx context.Context, id string) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Payment)
	return p, args.Error(1)
}

func (m *mockPaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *mockPaymentRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPaymentRepository) Claim(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimErr != nil {
		return m.claimErr
	}
	if m.claimed[id] {
		return domain.ErrPaymentInProgress
	}
	if m.claimed == nil {
		m.claimed = make(map[string]bool)
	}
	m.claimed[id] = true
	return nil
}

func (m *mockPaymentRepository) Release(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claimed, id)
	m.releases = append(m.releases, id)
	return nil
}

func (m *mockPaymentRepository) Released() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.releases...)
}

type mockPaymentMethodRepository struct {
	mock.Mock
}

var _ ports.PaymentMethodRepository = (*mockPaymentMethodRepository)(nil)

func (m *mockPaymentMethodRepository) Get(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	args := m.Called(ctx, id)
	pm, _ := args.Get(0).(*domain.PaymentMethod)
	return pm, args.Error(1)
}

func (m *mockPaymentMethodRepository) Create(ctx context.Context, method *domain.PaymentMethod) error {
	return m.Called(ctx, method).Error(0)
}

func (m *mockPaymentMethodRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockOrderRepository struct {
	mock.Mock
}

var _ ports.OrderRepository = (*mockOrderRepository)(nil)

func (m *mockOrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*domain.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

// clientCall is one captured SubmitRequest
type clientCall struct {
	Method string
	Path   string
	Params map[string]string
}

type clientResult struct {
	resp *ports.GatewayResponse
	err  error
}

// fakeClient replays results in order; the last result repeats
type fakeClient struct {
	mu       sync.Mutex
	results  []clientResult
	calls    []clientCall
	lastBody string
}

var _ ports.PaymentGatewayClient = (*fakeClient)(nil)

func newFakeClient(results ...clientResult) *fakeClient {
	return &fakeClient{results: results}
}

func respond(status int, body string) clientResult {
	return clientResult{resp: &ports.GatewayResponse{StatusCode: status, Body: body, IdempotencyKey: "idem"}}
}

func fail(err error) clientResult {
	return clientResult{err: err}
}

func (f *fakeClient) SubmitRequest(_ context.Context, method, path string, params map[string]string) (*ports.GatewayResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	f.calls = append(f.calls, clientCall{Method: method, Path: path, Params: copied})

	if len(f.results) == 0 {
		return nil, nil
	}
	idx := len(f.calls) - 1
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	r := f.results[idx]
	if r.resp != nil {
		f.lastBody = r.resp.Body
	}
	return r.resp, r.err
}

func (f *fakeClient) Response() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBody
}

func (f *fakeClient) Calls() []clientCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]clientCall(nil), f.calls...)
}
