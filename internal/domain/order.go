package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the checkout order a payment settles. The gateway only reads it,
// except for detaching a failed payment method.
type Order struct {
	ID              string          `json:"id"`
	CustomerID      int64           `json:"customer_id"`
	Balance         decimal.Decimal `json:"balance"`
	PaymentMethodID string          `json:"payment_method_id"`
	PaymentGateway  string          `json:"payment_gateway"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DetachPayment clears the payment method and gateway references
func (o *Order) DetachPayment() {
	o.PaymentMethodID = ""
	o.PaymentGateway = ""
}
