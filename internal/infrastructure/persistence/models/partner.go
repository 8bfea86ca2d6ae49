package models

import (
	"github.com/erp/posgateway/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer entity.
type CustomerModel struct {
	BaseModel
	Code        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string          `gorm:"type:varchar(200);not null"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status      string          `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseEntity:  m.BaseModel.ToDomain(),
		Code:        m.Code,
		Name:        m.Name,
		CreditLimit: m.CreditLimit,
		Status:      partner.CustomerStatus(m.Status),
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Code:        c.Code,
		Name:        c.Name,
		CreditLimit: c.CreditLimit,
		Status:      string(c.Status),
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
