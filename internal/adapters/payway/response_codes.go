package payway

// DeclineCategory groups bank response codes for logs and metrics
type DeclineCategory string

const (
	CategoryApproved          DeclineCategory = "approved"
	CategoryDeclined          DeclineCategory = "declined"
	CategoryInsufficientFunds DeclineCategory = "insufficient_funds"
	CategoryExpiredCard       DeclineCategory = "expired_card"
	CategoryInvalidCard       DeclineCategory = "invalid_card"
	CategoryFraud             DeclineCategory = "fraud"
	CategoryIssuerUnavailable DeclineCategory = "issuer_unavailable"
	CategoryInvalidRequest    DeclineCategory = "invalid_request"
	CategoryUnknown           DeclineCategory = "unknown"
)

// ResponseCodeInfo describes an AS2805 response code as passed through by PayWay
type ResponseCodeInfo struct {
	Code        string
	Description string
	IsApproved  bool
	IsRetriable bool
	Category    DeclineCategory
}

var responseCodes = map[string]ResponseCodeInfo{
	// Approvals
	"00": {Code: "00", Description: "Approved or completed successfully", IsApproved: true, Category: CategoryApproved},
	"08": {Code: "08", Description: "Honour with identification", IsApproved: true, Category: CategoryApproved},
	"11": {Code: "11", Description: "Approved, VIP", IsApproved: true, Category: CategoryApproved},
	"16": {Code: "16", Description: "Approved, update track 3", IsApproved: true, Category: CategoryApproved},

	// Generic declines
	"01": {Code: "01", Description: "Refer to card issuer", Category: CategoryDeclined},
	"05": {Code: "05", Description: "Do not honour", Category: CategoryDeclined},
	"57": {Code: "57", Description: "Transaction not permitted to cardholder", Category: CategoryDeclined},
	"61": {Code: "61", Description: "Exceeds withdrawal amount limits", Category: CategoryInsufficientFunds},
	"65": {Code: "65", Description: "Exceeds withdrawal frequency limit", Category: CategoryDeclined},

	"51": {Code: "51", Description: "Insufficient funds", IsRetriable: true, Category: CategoryInsufficientFunds},

	"33": {Code: "33", Description: "Expired card", Category: CategoryExpiredCard},
	"54": {Code: "54", Description: "Expired card", Category: CategoryExpiredCard},

	"14": {Code: "14", Description: "Invalid card number", Category: CategoryInvalidCard},
	"56": {Code: "56", Description: "No card record", Category: CategoryInvalidCard},
	"62": {Code: "62", Description: "Restricted card", Category: CategoryInvalidCard},

	// Fraud
	"04": {Code: "04", Description: "Pick-up card", Category: CategoryFraud},
	"41": {Code: "41", Description: "Lost card", Category: CategoryFraud},
	"43": {Code: "43", Description: "Stolen card", Category: CategoryFraud},
	"59": {Code: "59", Description: "Suspected fraud", Category: CategoryFraud},

	// Issuer or switch problems
	"22": {Code: "22", Description: "Suspected malfunction", IsRetriable: true, Category: CategoryIssuerUnavailable},
	"91": {Code: "91", Description: "Card issuer unavailable", IsRetriable: true, Category: CategoryIssuerUnavailable},
	"96": {Code: "96", Description: "System malfunction", IsRetriable: true, Category: CategoryIssuerUnavailable},

	"12": {Code: "12", Description: "Invalid transaction", Category: CategoryInvalidRequest},
	"13": {Code: "13", Description: "Invalid amount", Category: CategoryInvalidRequest},
}

// LookupResponseCode returns the catalogue entry for code.
// Unknown codes are reported as declines in the unknown category.
func LookupResponseCode(code string) ResponseCodeInfo {
	if info, ok := responseCodes[code]; ok {
		return info
	}
	return ResponseCodeInfo{
		Code:        code,
		Description: "Unknown response code",
		Category:    CategoryUnknown,
	}
}
