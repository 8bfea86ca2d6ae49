package inventory

import (
	"time"

	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchStatus represents the lifecycle state of a cost lot
type BatchStatus string

const (
	BatchStatusActive   BatchStatus = "active"
	BatchStatusConsumed BatchStatus = "consumed"
)

// StockBatch is a FIFO cost lot received for a product
type StockBatch struct {
	shared.BaseEntity
	ProductID         uuid.UUID
	BatchNumber       string
	QuantityReceived  decimal.Decimal
	QuantityRemaining decimal.Decimal
	UnitCost          decimal.Decimal
	ReceivedAt        time.Time
	Status            BatchStatus
}

// NewStockBatch creates a new active batch
func NewStockBatch(productID uuid.UUID, batchNumber string, quantity, unitCost decimal.Decimal, receivedAt time.Time) (*StockBatch, error) {
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Batch unit cost cannot be negative")
	}
	return &StockBatch{
		BaseEntity:        shared.NewBaseEntity(),
		ProductID:         productID,
		BatchNumber:       batchNumber,
		QuantityReceived:  quantity,
		QuantityRemaining: quantity,
		UnitCost:          unitCost,
		ReceivedAt:        receivedAt,
		Status:            BatchStatusActive,
	}, nil
}

// Deduct reduces the remaining quantity.
// Returns the actual quantity deducted (may be less than requested if batch has insufficient)
func (b *StockBatch) Deduct(quantity decimal.Decimal) decimal.Decimal {
	deducted := decimal.Min(quantity, b.QuantityRemaining)
	b.QuantityRemaining = b.QuantityRemaining.Sub(deducted)
	if b.QuantityRemaining.IsZero() {
		b.Status = BatchStatusConsumed
	}
	b.UpdatedAt = time.Now()
	return deducted
}

// HasStock returns true if the batch has available quantity
func (b *StockBatch) HasStock() bool {
	return b.Status == BatchStatusActive && b.QuantityRemaining.IsPositive()
}
