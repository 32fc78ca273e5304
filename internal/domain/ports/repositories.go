package ports

import (
	"context"

	"github.com/kevin07696/payway-gateway/internal/domain"
)

// PaymentRepository persists payments.
// Get returns domain.ErrPaymentNotFound when the payment does not exist.
type PaymentRepository interface {
	Get(ctx context.Context, id string) (*domain.Payment, error)
	Save(ctx context.Context, payment *domain.Payment) error
	Delete(ctx context.Context, id string) error
	// Claim atomically moves a new payment to processing. It returns
	// domain.ErrPaymentInProgress when the payment is no longer new.
	Claim(ctx context.Context, id string) error
	// Release moves a processing payment back to new
	Release(ctx context.Context, id string) error
}

// PaymentMethodRepository persists payment methods.
// Create returns domain.ErrPaymentMethodExists when the id is taken.
type PaymentMethodRepository interface {
	Get(ctx context.Context, id string) (*domain.PaymentMethod, error)
	Create(ctx context.Context, method *domain.PaymentMethod) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository reads orders and stores the payment detachment
type OrderRepository interface {
	Get(ctx context.Context, id string) (*domain.Order, error)
	Save(ctx context.Context, order *domain.Order) error
}
