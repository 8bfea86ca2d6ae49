package pos

import (
	"time"

	"github.com/erp/posgateway/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleResult is the reconciliation summary returned to the terminal
type SaleResult struct {
	InvoiceNumber    string                `json:"erp_invoice_number"`
	InvoiceID        uuid.UUID             `json:"invoice_id"`
	ReceiptNumber    *string               `json:"receipt_number"`
	ReceiptID        *uuid.UUID            `json:"receipt_id"`
	Subtotal         decimal.Decimal       `json:"subtotal"`
	TaxAmount        decimal.Decimal       `json:"tax_amount"`
	TotalAmount      decimal.Decimal       `json:"total_amount"`
	AmountPaid       decimal.Decimal       `json:"amount_paid"`
	ChangeDue        decimal.Decimal       `json:"change_due"`
	BalanceDue       decimal.Decimal       `json:"balance_due"`
	COGSAmount       decimal.Decimal       `json:"cogs_amount"`
	InvoiceStatus    finance.InvoiceStatus `json:"invoice_status"`
	InventoryUpdated bool                  `json:"inventory_updated"`
	GLPosted         bool                  `json:"gl_posted"`
	Timestamp        time.Time             `json:"timestamp"`

	// Replayed is set when the result was served from an earlier completed attempt
	Replayed bool `json:"-"`
}
