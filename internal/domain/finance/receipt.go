package finance

import (
	"strings"
	"time"

	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptAllocation applies part of a receipt to an invoice
type ReceiptAllocation struct {
	ID        uuid.UUID
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
}

// Receipt records money received from a customer
type Receipt struct {
	shared.BaseEntity
	ReceiptNumber string
	CustomerID    uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod string
	BankAccountID *uuid.UUID
	ReceivedAt    time.Time
	Allocations   []ReceiptAllocation
}

// NewReceipt creates a receipt for a positive amount
func NewReceipt(number string, customerID uuid.UUID, amount decimal.Decimal, method string, receivedAt time.Time) (*Receipt, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Receipt number cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Receipt amount must be positive")
	}
	return &Receipt{
		BaseEntity:    shared.NewBaseEntity(),
		ReceiptNumber: number,
		CustomerID:    customerID,
		Amount:        amount,
		PaymentMethod: method,
		ReceivedAt:    receivedAt,
	}, nil
}

// AllocateTo applies the receipt to an invoice. The allocation cannot exceed
// what is left unallocated on the receipt.
func (r *Receipt) AllocateTo(invoiceID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if amount.GreaterThan(r.Unallocated()) {
		return shared.NewDomainError("OVER_ALLOCATION", "Allocation exceeds unallocated receipt amount")
	}
	r.Allocations = append(r.Allocations, ReceiptAllocation{
		ID:        uuid.New(),
		InvoiceID: invoiceID,
		Amount:    amount,
	})
	return nil
}

// Unallocated returns the part of the receipt not applied to any invoice
func (r *Receipt) Unallocated() decimal.Decimal {
	left := r.Amount
	for _, a := range r.Allocations {
		left = left.Sub(a.Amount)
	}
	return left
}
