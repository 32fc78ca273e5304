package ports

import (
	"context"

	"github.com/kevin07696/payway-gateway/internal/domain"
)

// CreatePaymentRequest contains parameters for submitting a payment to PayWay
type CreatePaymentRequest struct {
	Payment    *domain.Payment
	Capture    bool   // true captures immediately, false only authorizes
	CustomerIP string // optional, sent as customerIpAddress
}

// CardDetails is the display metadata the tokenization widget reports
type CardDetails struct {
	Type     string
	Number   string // masked
	ExpMonth int
	ExpYear  int
}

// PaymentDetails is the checkout form submission for a new payment method
type PaymentDetails struct {
	// CreditCardToken is the PayWay single-use token (payment_credit_card_token)
	CreditCardToken string
	// Customer requests a reusable PayWay customer record
	Customer bool
	Card     CardDetails
}

// GatewayService defines the business logic for PayWay payments
type GatewayService interface {
	// CreatePayment submits a new payment and records the approval.
	// Any failure after validation deletes the payment and detaches it from its order.
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*domain.Payment, error)

	// DeletePayment deletes the payment and clears the order's payment references.
	// Storage failures are logged, never returned.
	DeletePayment(ctx context.Context, payment *domain.Payment, order *domain.Order)

	// CreatePaymentMethod stores a single-use token or a reusable PayWay customer
	CreatePaymentMethod(ctx context.Context, method *domain.PaymentMethod, details PaymentDetails) (*domain.PaymentMethod, error)

	// DeletePaymentMethod stops and removes the PayWay customer, then deletes the local record.
	// Remote failures are logged; the local delete always runs.
	DeletePaymentMethod(ctx context.Context, method *domain.PaymentMethod) error

	// PublishableKey returns the key the tokenization widget is initialised with
	PublishableKey() (string, error)

	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	GetPaymentMethod(ctx context.Context, id string) (*domain.PaymentMethod, error)
}
