package catalog

import (
	"strings"

	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product is a sellable catalog item keyed by SKU.
type Product struct {
	shared.BaseEntity
	SKU          string
	Name         string
	UnitCost     decimal.Decimal
	Status       ProductStatus
	BatchTracked bool
}

// NewProduct creates an active product
func NewProduct(sku, name string, unitCost decimal.Decimal) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Product SKU cannot be empty")
	}
	if len(sku) > 50 {
		return nil, shared.NewDomainError("INVALID_SKU", "Product SKU cannot exceed 50 characters")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		SKU:        sku,
		Name:       name,
		UnitCost:   unitCost,
		Status:     ProductStatusActive,
	}, nil
}

// IsActive returns true if the product can be sold
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// Deactivate takes the product off sale
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
}

// PriceWithinTolerance reports whether price lies within tolerancePercent of
// the catalog unit cost. The boundary itself is accepted. Products without a
// cost basis accept any price.
func (p *Product) PriceWithinTolerance(price, tolerancePercent decimal.Decimal) bool {
	if !p.UnitCost.IsPositive() {
		return true
	}
	allowed := p.UnitCost.Mul(tolerancePercent).Div(decimal.NewFromInt(100))
	return price.Sub(p.UnitCost).Abs().LessThanOrEqual(allowed)
}
