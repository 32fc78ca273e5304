package domain

import (
	"strings"
	"time"
)

// AnonymousCustomer is sent as customerNumber when the method has no registered owner
const AnonymousCustomer = "anonymous"

// PaymentMethod represents a PayWay card, either a single-use token or a stored customer
type PaymentMethod struct {
	// Identity
	ID string `json:"id"`

	// Owner user id; 0 is the anonymous user
	OwnerID int64 `json:"owner_id"`

	// Single-use token when not reusable, PayWay customer number when reusable
	RemoteID string `json:"remote_id"`

	Reusable  bool `json:"reusable"`
	IsDefault bool `json:"is_default"`

	// Unix seconds; 0 means no independent lifetime
	ExpiresAt int64 `json:"expires_at"`

	// Display metadata (NEVER store full card numbers)
	CardType     string `json:"card_type"`      // PayWay cardScheme
	CardNumber   string `json:"card_number"`    // masked / last digits
	CardExpMonth int    `json:"card_exp_month"` // 1-12
	CardExpYear  int    `json:"card_exp_year"`  // two digit year as returned by PayWay

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAnonymous reports whether the method belongs to no registered user
func (pm *PaymentMethod) IsAnonymous() bool {
	return pm.OwnerID <= 0
}

// IsExpired returns true when the method has an expiry that has passed
func (pm *PaymentMethod) IsExpired(now time.Time) bool {
	return pm.ExpiresAt > 0 && pm.ExpiresAt <= now.Unix()
}

// CardExpiry returns the first day of the card's expiry month in UTC.
// PayWay reports two digit years, offset from 2000.
func CardExpiry(expiryYear, expiryMonth int) time.Time {
	return time.Date(2000+expiryYear, time.Month(expiryMonth), 1, 0, 0, 0, 0, time.UTC)
}

var cardTypeLabels = map[string]string{
	"amex":       "American Express",
	"dinersclub": "Diners Club",
	"discover":   "Discover Card",
	"jcb":        "JCB",
	"maestro":    "Maestro",
	"mastercard": "Mastercard",
	"visa":       "Visa",
}

// CardTypeLabel returns the human label for a card scheme, or the scheme itself
func CardTypeLabel(cardType string) string {
	if label, ok := cardTypeLabels[normalizeCardType(cardType)]; ok {
		return label
	}
	return cardType
}

// GetDisplayName returns a human-readable display name for the payment method
func (pm *PaymentMethod) GetDisplayName() string {
	if pm.CardType == "" {
		return "ID " + pm.ID
	}
	return CardTypeLabel(pm.CardType) + " with number " + pm.CardNumber
}

func normalizeCardType(cardType string) string {
	t := strings.ToLower(strings.TrimSpace(cardType))
	t = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(t)
	if t == "diners" {
		return "dinersclub"
	}
	return t
}
