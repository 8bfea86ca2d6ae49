package pos

import (
	"fmt"
)

// ErrorCode is the machine-readable outcome of a rejected sale
type ErrorCode string

const (
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeRateLimitExceeded   ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeInvalidPayload      ErrorCode = "INVALID_PAYLOAD"
	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	ErrCodeCreditLimitExceeded ErrorCode = "CREDIT_LIMIT_EXCEEDED"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// ValidationIssue is one catalog, stock or reference problem found on a sale
type ValidationIssue struct {
	SKU   string `json:"sku"`
	Field string `json:"field,omitempty"`
	Error string `json:"error"`
}

// CreditLimitDetails explains a credit rejection to the terminal operator
type CreditLimitDetails struct {
	CustomerCode       string  `json:"customer_code"`
	CreditLimit        float64 `json:"credit_limit"`
	OutstandingBalance float64 `json:"outstanding_balance"`
	SaleTotal          float64 `json:"sale_total"`
	AmountPaid         float64 `json:"amount_paid"`
	AvailableCredit    float64 `json:"available_credit"`
}

// SaleError is returned for every rejected sale
type SaleError struct {
	Code    ErrorCode
	Message string
	Details any
	Err     error
}

// Error implements the error interface
func (e *SaleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *SaleError) Unwrap() error {
	return e.Err
}

// NewUnauthorizedError rejects a request with a missing or wrong API key
func NewUnauthorizedError() *SaleError {
	return &SaleError{Code: ErrCodeUnauthorized, Message: "Invalid or missing API key"}
}

// NewRateLimitError rejects a terminal over its request budget
func NewRateLimitError(terminalID string) *SaleError {
	return &SaleError{
		Code:    ErrCodeRateLimitExceeded,
		Message: fmt.Sprintf("Too many requests from terminal %s, try again later", terminalID),
	}
}

// NewInvalidPayloadError rejects a malformed payload
func NewInvalidPayloadError(message string, violations []FieldViolation) *SaleError {
	e := &SaleError{Code: ErrCodeInvalidPayload, Message: message}
	if len(violations) > 0 {
		e.Details = violations
	}
	return e
}

// NewValidationFailedError rejects a sale with catalog or stock problems
func NewValidationFailedError(issues []ValidationIssue) *SaleError {
	return &SaleError{
		Code:    ErrCodeValidationFailed,
		Message: fmt.Sprintf("%d validation error(s)", len(issues)),
		Details: issues,
	}
}

// NewCreditLimitError rejects a sale that would overrun the customer's credit
func NewCreditLimitError(details CreditLimitDetails) *SaleError {
	return &SaleError{
		Code:    ErrCodeCreditLimitExceeded,
		Message: fmt.Sprintf("Sale exceeds available credit for customer %s", details.CustomerCode),
		Details: details,
	}
}

// NewInternalError wraps an unexpected failure
func NewInternalError(err error) *SaleError {
	return &SaleError{Code: ErrCodeInternal, Message: "Failed to process sale", Err: err}
}
