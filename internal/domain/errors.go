package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// ErrorCodeConfiguration covers an invalid gateway mode or missing keys
	ErrorCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"

	// ErrorCodeInvalidArgument covers precondition violations by the caller
	ErrorCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrorCodeTransport covers network failures talking to PayWay
	ErrorCodeTransport ErrorCode = "TRANSPORT_ERROR"

	// ErrorCodeHardDecline is a terminal failure for a payment attempt
	ErrorCodeHardDecline ErrorCode = "HARD_DECLINE"

	// ErrorCodePaymentGateway is a customer-facing failure while managing payment methods
	ErrorCodePaymentGateway ErrorCode = "PAYMENT_GATEWAY_ERROR"

	// ErrorCodeNotFound is returned by repositories
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrorCodeInternal covers persistence failures after the processor approved
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Customer-facing messages. Processor detail never goes into these.
const (
	MsgPaymentRequestFailed  = "The payment request failed."
	MsgPaymentDeclined       = "The provided payment method has been declined."
	MsgPaymentMethodExpired  = "The provided payment method has expired."
	MsgAddPaymentMethodError = "An error occurred while adding your payment method, sorry."
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// NewConfigurationError reports a gateway configuration problem
func NewConfigurationError(message string) *DomainError {
	return NewDomainError(ErrorCodeConfiguration, message)
}

// NewInvalidArgument reports a violated precondition
func NewInvalidArgument(message string) *DomainError {
	return NewDomainError(ErrorCodeInvalidArgument, message)
}

// NewTransportError wraps a failure to reach PayWay
func NewTransportError(message string, err error) *DomainError {
	return WrapError(ErrorCodeTransport, message, err)
}

// NewHardDecline reports a terminal decline; cause may be nil
func NewHardDecline(message string, cause error) *DomainError {
	return WrapError(ErrorCodeHardDecline, message, cause)
}

// NewPaymentGatewayError reports a sanitized payment method failure; cause may be nil
func NewPaymentGatewayError(message string, cause error) *DomainError {
	return WrapError(ErrorCodePaymentGateway, message, cause)
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// UserMessage returns the sanitized message of the outermost DomainError.
func UserMessage(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "internal error"
}

func IsConfigurationError(err error) bool { return IsDomainError(err, ErrorCodeConfiguration) }

func IsInvalidArgument(err error) bool { return IsDomainError(err, ErrorCodeInvalidArgument) }

func IsTransportError(err error) bool { return IsDomainError(err, ErrorCodeTransport) }

func IsHardDecline(err error) bool { return IsDomainError(err, ErrorCodeHardDecline) }

func IsPaymentGatewayError(err error) bool { return IsDomainError(err, ErrorCodePaymentGateway) }

func IsNotFound(err error) bool { return IsDomainError(err, ErrorCodeNotFound) }

// Repository errors
var (
	ErrPaymentNotFound       = NewDomainError(ErrorCodeNotFound, "payment not found")
	ErrPaymentMethodNotFound = NewDomainError(ErrorCodeNotFound, "payment method not found")
	ErrOrderNotFound         = NewDomainError(ErrorCodeNotFound, "order not found")

	ErrPaymentMethodExists = NewInvalidArgument("payment method already exists")
	ErrPaymentInProgress   = NewInvalidArgument("payment is already being processed")
)
