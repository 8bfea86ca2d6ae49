package dto

import (
	"net/http"
	"time"

	"github.com/erp/posgateway/internal/domain/pos"
	"github.com/shopspring/decimal"
)

// internalErrorMessage replaces internal error text in responses
const internalErrorMessage = "Failed to process sale"

// SaleResponse is the body returned for a processed sale
type SaleResponse struct {
	Success          bool      `json:"success"`
	InvoiceNumber    string    `json:"erp_invoice_number"`
	InvoiceID        string    `json:"invoice_id"`
	ReceiptNumber    *string   `json:"receipt_number"`
	ReceiptID        *string   `json:"receipt_id"`
	Subtotal         float64   `json:"subtotal"`
	TaxAmount        float64   `json:"tax_amount"`
	TotalAmount      float64   `json:"total_amount"`
	AmountPaid       float64   `json:"amount_paid"`
	ChangeDue        float64   `json:"change_due"`
	BalanceDue       float64   `json:"balance_due"`
	COGSAmount       float64   `json:"cogs_amount"`
	InvoiceStatus    string    `json:"invoice_status"`
	InventoryUpdated bool      `json:"inventory_updated"`
	GLPosted         bool      `json:"gl_posted"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewSaleResponse converts a sale result. Amounts are rounded to cents.
func NewSaleResponse(r *pos.SaleResult) SaleResponse {
	resp := SaleResponse{
		Success:          true,
		InvoiceNumber:    r.InvoiceNumber,
		InvoiceID:        r.InvoiceID.String(),
		ReceiptNumber:    r.ReceiptNumber,
		Subtotal:         money(r.Subtotal),
		TaxAmount:        money(r.TaxAmount),
		TotalAmount:      money(r.TotalAmount),
		AmountPaid:       money(r.AmountPaid),
		ChangeDue:        money(r.ChangeDue),
		BalanceDue:       money(r.BalanceDue),
		COGSAmount:       money(r.COGSAmount),
		InvoiceStatus:    string(r.InvoiceStatus),
		InventoryUpdated: r.InventoryUpdated,
		GLPosted:         r.GLPosted,
		Timestamp:        r.Timestamp,
	}
	if r.ReceiptID != nil {
		id := r.ReceiptID.String()
		resp.ReceiptID = &id
	}
	return resp
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// ErrorResponse is the body returned for a rejected sale
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResponse converts a sale error. Internal causes never reach the body.
func NewErrorResponse(e *pos.SaleError) ErrorResponse {
	resp := ErrorResponse{
		Error:   string(e.Code),
		Message: e.Message,
		Details: e.Details,
	}
	if e.Code == pos.ErrCodeInternal {
		resp.Message = internalErrorMessage
		resp.Details = nil
	}
	return resp
}

// NewErrorResponseFromCode builds an error body for failures raised before the processor
func NewErrorResponseFromCode(code pos.ErrorCode, message string) ErrorResponse {
	return ErrorResponse{Error: string(code), Message: message}
}

// HTTPStatus maps a sale error code to its HTTP status
func HTTPStatus(code pos.ErrorCode) int {
	switch code {
	case pos.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case pos.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case pos.ErrCodeInvalidPayload, pos.ErrCodeValidationFailed, pos.ErrCodeCreditLimitExceeded:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HealthResponse is the body of the health check
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
