package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the settlement state of an AR invoice
type InvoiceStatus string

const (
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceStatusFor projects the status from the amount paid against the total.
// It is the only way a status is derived; nothing sets it independently.
func InvoiceStatusFor(paid, total decimal.Decimal) InvoiceStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return InvoiceStatusPaid
	case paid.IsPositive():
		return InvoiceStatusPartial
	default:
		return InvoiceStatusSent
	}
}

// InvoiceSourcePOS marks invoices raised by terminal sales
const InvoiceSourcePOS = "pos"

// InvoiceLine is one product line of an invoice
type InvoiceLine struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	SKU       string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	TaxRate   decimal.Decimal
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	LineTotal decimal.Decimal
}

// Invoice is the accounts-receivable record of a sale
type Invoice struct {
	shared.BaseEntity
	InvoiceNumber string
	CustomerID    uuid.UUID
	IssueDate     time.Time
	DueDate       time.Time
	Currency      string
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	AmountPaid    decimal.Decimal
	Source        string
	SourceRef     string
	Notes         string
	Lines         []InvoiceLine
}

// NewPOSInvoice creates an invoice due on the sale date
func NewPOSInvoice(number string, customerID uuid.UUID, saleDate time.Time, currency, sourceRef string) (*Invoice, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Invoice requires a customer")
	}
	return &Invoice{
		BaseEntity:    shared.NewBaseEntity(),
		InvoiceNumber: number,
		CustomerID:    customerID,
		IssueDate:     saleDate,
		DueDate:       saleDate,
		Currency:      currency,
		Subtotal:      decimal.Zero,
		TaxAmount:     decimal.Zero,
		TotalAmount:   decimal.Zero,
		AmountPaid:    decimal.Zero,
		Source:        InvoiceSourcePOS,
		SourceRef:     sourceRef,
	}, nil
}

// AddLine appends a line and rolls its amounts into the header totals
func (inv *Invoice) AddLine(line InvoiceLine) {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	inv.Lines = append(inv.Lines, line)
	inv.Subtotal = inv.Subtotal.Add(line.Subtotal)
	inv.TaxAmount = inv.TaxAmount.Add(line.TaxAmount)
	inv.TotalAmount = inv.TotalAmount.Add(line.LineTotal)
}

// ApplyPayment records a payment against the invoice, capped at the total.
// Returns the amount actually applied.
func (inv *Invoice) ApplyPayment(amount decimal.Decimal) decimal.Decimal {
	open := inv.BalanceDue()
	applied := decimal.Min(decimal.Max(amount, decimal.Zero), open)
	inv.AmountPaid = inv.AmountPaid.Add(applied)
	inv.UpdatedAt = time.Now()
	return applied
}

// Status returns the projected settlement status
func (inv *Invoice) Status() InvoiceStatus {
	return InvoiceStatusFor(inv.AmountPaid, inv.TotalAmount)
}

// BalanceDue returns the unpaid part of the total
func (inv *Invoice) BalanceDue() decimal.Decimal {
	return decimal.Max(inv.TotalAmount.Sub(inv.AmountPaid), decimal.Zero)
}

// GenerateDocumentNumber builds numbers like INV-POS-20260118-1A2B3C4D.
func GenerateDocumentNumber(prefix string, at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, at.UTC().Format("20060102"), suffix)
}
