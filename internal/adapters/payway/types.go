package payway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Transaction statuses PayWay reports as a successful charge.
// The starred form is a referral that was still approved.
const (
	StatusApproved        = "approved"
	StatusApprovedStarred = "approved*"
)

// Text holds a JSON value PayWay sends either as a string or as a number
type Text string

// UnmarshalJSON accepts strings, numbers, and null
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*t = Text(n.String())
	return nil
}

// String returns the raw text
func (t Text) String() string {
	return string(t)
}

// Int parses the text as a base-10 integer
func (t Text) Int() (int, error) {
	return strconv.Atoi(strings.TrimSpace(string(t)))
}

// TransactionResponse is the body of POST /transactions
type TransactionResponse struct {
	TransactionID Text   `json:"transactionId"`
	Status        string `json:"status"`
	ResponseCode  string `json:"responseCode"`
	ResponseText  string `json:"responseText"`
	ReceiptNumber Text   `json:"receiptNumber"`
}

// IsApproved reports whether PayWay approved the transaction
func (r *TransactionResponse) IsApproved() bool {
	return r.Status == StatusApproved || r.Status == StatusApprovedStarred
}

// CreditCard is the card summary PayWay returns for a stored customer
type CreditCard struct {
	CardScheme      string `json:"cardScheme"`
	CardNumber      string `json:"cardNumber"`
	CardholderName  string `json:"cardholderName"`
	ExpiryDateMonth Text   `json:"expiryDateMonth"`
	ExpiryDateYear  Text   `json:"expiryDateYear"`
}

// PaymentSetup describes how a stored customer pays
type PaymentSetup struct {
	PaymentMethod string     `json:"paymentMethod"`
	Stopped       bool       `json:"stopped"`
	CreditCard    CreditCard `json:"creditCard"`
}

// CustomerResponse is the body of POST /customers
type CustomerResponse struct {
	CustomerNumber Text         `json:"customerNumber"`
	PaymentSetup   PaymentSetup `json:"paymentSetup"`
}

// ParseTransaction decodes a transaction response body.
// A body without a status is rejected.
func ParseTransaction(body string) (*TransactionResponse, error) {
	var resp TransactionResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction response: %w", err)
	}
	if resp.Status == "" {
		return nil, fmt.Errorf("transaction response has no status")
	}
	return &resp, nil
}

// ParseCustomer decodes a customer response body.
// A body without a customer number is rejected.
func ParseCustomer(body string) (*CustomerResponse, error) {
	var resp CustomerResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer response: %w", err)
	}
	if resp.CustomerNumber == "" {
		return nil, fmt.Errorf("customer response has no customerNumber")
	}
	return &resp, nil
}

// ErrorResponse is the body PayWay sends with 4xx statuses
type ErrorResponse struct {
	Data []struct {
		FieldName  string `json:"fieldName"`
		Message    string `json:"message"`
		FieldValue string `json:"fieldValue"`
	} `json:"data"`
}

// Summary joins the field errors into one line for logs
func (e *ErrorResponse) Summary() string {
	parts := make([]string, 0, len(e.Data))
	for _, d := range e.Data {
		if d.FieldName != "" {
			parts = append(parts, d.FieldName+": "+d.Message)
		} else {
			parts = append(parts, d.Message)
		}
	}
	return strings.Join(parts, "; ")
}

// ParseError decodes an error body; an unparseable body yields the raw text
func ParseError(body string) string {
	var resp ErrorResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil || len(resp.Data) == 0 {
		return body
	}
	return resp.Summary()
}
