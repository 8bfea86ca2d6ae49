package partner

import (
	"strings"

	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// WalkInCustomerName is the display name given to an auto-created walk-in customer.
const WalkInCustomerName = "Walk-in Customer"

// Customer represents a buyer at the till
type Customer struct {
	shared.BaseEntity
	Code        string
	Name        string
	CreditLimit decimal.Decimal
	Status      CustomerStatus
}

// NewCustomer creates a new active customer
func NewCustomer(code, name string, creditLimit decimal.Decimal) (*Customer, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Customer code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Customer code cannot exceed 50 characters")
	}
	if creditLimit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	if name == "" {
		name = code
	}
	return &Customer{
		BaseEntity:  shared.NewBaseEntity(),
		Code:        code,
		Name:        name,
		CreditLimit: creditLimit,
		Status:      CustomerStatusActive,
	}, nil
}

// NewWalkInCustomer creates the synthetic customer used for anonymous sales.
func NewWalkInCustomer(code string) (*Customer, error) {
	return NewCustomer(code, WalkInCustomerName, decimal.Zero)
}

// HasCreditLimit returns true if the customer buys against a credit line
func (c *Customer) HasCreditLimit() bool {
	return !c.CreditLimit.IsZero()
}

// AvailableCredit is the part of the limit not consumed by the outstanding balance.
// It can be negative when the customer is already over the limit.
func (c *Customer) AvailableCredit(outstanding decimal.Decimal) decimal.Decimal {
	return c.CreditLimit.Sub(outstanding)
}
