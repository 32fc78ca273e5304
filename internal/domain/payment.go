package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentState is the local lifecycle state of a payment
type PaymentState string

const (
	PaymentStateNew              PaymentState = "new"               // Created by checkout, not yet sent to PayWay
	PaymentStateProcessing       PaymentState = "processing"        // Claimed by a submission in flight
	PaymentStateAuthorization    PaymentState = "authorization"     // Approved, funds held
	PaymentStateCaptureCompleted PaymentState = "capture_completed" // Approved and captured
)

// Currency is the only currency PayWay accepts from this gateway
const Currency = "AUD"

// Payment is a single payment attempt against an order
type Payment struct {
	ID                  string          `json:"id"`
	OrderID             string          `json:"order_id"`
	PaymentMethodID     string          `json:"payment_method_id"`
	State               PaymentState    `json:"state"`
	Amount              decimal.Decimal `json:"amount"`
	Currency            string          `json:"currency"`
	RemoteTransactionID string          `json:"remote_transaction_id"`

	AuthorizedAt *time.Time `json:"authorized_at"`
	CapturedAt   *time.Time `json:"captured_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsNew reports whether the payment can still be submitted
func (p *Payment) IsNew() bool {
	return p.State == PaymentStateNew
}

// PrincipalAmount returns the amount rounded half-up to cents
func (p *Payment) PrincipalAmount() decimal.Decimal {
	return p.Amount.Round(2)
}

// Approve records a processor approval.
// capture selects between capture_completed and authorization.
func (p *Payment) Approve(remoteTransactionID string, capture bool, at time.Time) {
	p.RemoteTransactionID = remoteTransactionID
	authorizedAt := at
	p.AuthorizedAt = &authorizedAt

	if capture {
		p.State = PaymentStateCaptureCompleted
		capturedAt := at
		p.CapturedAt = &capturedAt
	} else {
		p.State = PaymentStateAuthorization
	}
	p.UpdatedAt = at
}
