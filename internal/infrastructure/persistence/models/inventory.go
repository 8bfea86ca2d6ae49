package models

import (
	"time"

	"github.com/erp/posgateway/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockBatchModel is the persistence model for a FIFO cost lot.
type StockBatchModel struct {
	BaseModel
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_inventory_batches_fifo,priority:1"`
	BatchNumber       string          `gorm:"type:varchar(50);not null"`
	QuantityReceived  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityRemaining decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedAt        time.Time       `gorm:"not null;index:idx_inventory_batches_fifo,priority:2"`
	Status            string          `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (StockBatchModel) TableName() string {
	return "inventory_batches"
}

// ToDomain converts the persistence model to a domain StockBatch entity.
func (m *StockBatchModel) ToDomain() *inventory.StockBatch {
	return &inventory.StockBatch{
		BaseEntity:        m.BaseModel.ToDomain(),
		ProductID:         m.ProductID,
		BatchNumber:       m.BatchNumber,
		QuantityReceived:  m.QuantityReceived,
		QuantityRemaining: m.QuantityRemaining,
		UnitCost:          m.UnitCost,
		ReceivedAt:        m.ReceivedAt,
		Status:            inventory.BatchStatus(m.Status),
	}
}

// StockBatchModelFromDomain creates a persistence model from a domain StockBatch entity.
func StockBatchModelFromDomain(b *inventory.StockBatch) *StockBatchModel {
	m := &StockBatchModel{
		ProductID:         b.ProductID,
		BatchNumber:       b.BatchNumber,
		QuantityReceived:  b.QuantityReceived,
		QuantityRemaining: b.QuantityRemaining,
		UnitCost:          b.UnitCost,
		ReceivedAt:        b.ReceivedAt,
		Status:            string(b.Status),
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}

// StockLevelModel is the persistence model for on-hand stock at one location.
type StockLevelModel struct {
	BaseModel
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_levels_product_location,priority:1"`
	LocationCode   string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_stock_levels_product_location,priority:2"`
	QuantityOnHand decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockLevelModel) TableName() string {
	return "stock_levels"
}

// ToDomain converts the persistence model to a domain StockLevel entity.
func (m *StockLevelModel) ToDomain() *inventory.StockLevel {
	return &inventory.StockLevel{
		BaseEntity:     m.BaseModel.ToDomain(),
		ProductID:      m.ProductID,
		LocationCode:   m.LocationCode,
		QuantityOnHand: m.QuantityOnHand,
	}
}

// StockLevelModelFromDomain creates a persistence model from a domain StockLevel entity.
func StockLevelModelFromDomain(l *inventory.StockLevel) *StockLevelModel {
	m := &StockLevelModel{
		ProductID:      l.ProductID,
		LocationCode:   l.LocationCode,
		QuantityOnHand: l.QuantityOnHand,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// InventoryTransactionModel is the persistence model for a stock movement.
type InventoryTransactionModel struct {
	BaseModel
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID       *uuid.UUID      `gorm:"type:uuid;index"`
	Type          string          `gorm:"column:transaction_type;type:varchar(20);not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceType string          `gorm:"type:varchar(30);not null;index:idx_inventory_transactions_reference,priority:1"`
	ReferenceID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_inventory_transactions_reference,priority:2"`
	OccurredAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InventoryTransactionModel) TableName() string {
	return "inventory_transactions"
}

// ToDomain converts the persistence model to a domain Transaction entity.
func (m *InventoryTransactionModel) ToDomain() *inventory.Transaction {
	return &inventory.Transaction{
		BaseEntity:    m.BaseModel.ToDomain(),
		ProductID:     m.ProductID,
		BatchID:       m.BatchID,
		Type:          inventory.TransactionType(m.Type),
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		TotalCost:     m.TotalCost,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		OccurredAt:    m.OccurredAt,
	}
}

// InventoryTransactionModelFromDomain creates a persistence model from a domain Transaction.
func InventoryTransactionModelFromDomain(t *inventory.Transaction) *InventoryTransactionModel {
	m := &InventoryTransactionModel{
		ProductID:     t.ProductID,
		BatchID:       t.BatchID,
		Type:          string(t.Type),
		Quantity:      t.Quantity,
		UnitCost:      t.UnitCost,
		TotalCost:     t.TotalCost,
		ReferenceType: t.ReferenceType,
		ReferenceID:   t.ReferenceID,
		OccurredAt:    t.OccurredAt,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}
