package models

import (
	"github.com/erp/posgateway/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product entity.
type ProductModel struct {
	BaseModel
	SKU          string          `gorm:"column:sku;type:varchar(50);not null;uniqueIndex"`
	Name         string          `gorm:"type:varchar(200);not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status       string          `gorm:"type:varchar(20);not null;default:'active'"`
	BatchTracked bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:   m.BaseModel.ToDomain(),
		SKU:          m.SKU,
		Name:         m.Name,
		UnitCost:     m.UnitCost,
		Status:       catalog.ProductStatus(m.Status),
		BatchTracked: m.BatchTracked,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		SKU:          p.SKU,
		Name:         p.Name,
		UnitCost:     p.UnitCost,
		Status:       string(p.Status),
		BatchTracked: p.BatchTracked,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
