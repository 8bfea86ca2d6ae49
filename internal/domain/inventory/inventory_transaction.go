package inventory

import (
	"time"

	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of inventory transaction
type TransactionType string

const (
	// TransactionTypeSale is stock leaving through a POS sale
	TransactionTypeSale TransactionType = "SALE"
)

// Transaction is an immutable stock movement record
type Transaction struct {
	shared.BaseEntity
	ProductID     uuid.UUID
	BatchID       *uuid.UUID
	Type          TransactionType
	Quantity      decimal.Decimal // negative for outbound
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	ReferenceType string
	ReferenceID   uuid.UUID
	OccurredAt    time.Time
}

// NewSaleTransaction records quantity leaving stock for a sale document
func NewSaleTransaction(productID uuid.UUID, batchID *uuid.UUID, quantity, unitCost decimal.Decimal, refType string, refID uuid.UUID, at time.Time) *Transaction {
	return &Transaction{
		BaseEntity:    shared.NewBaseEntity(),
		ProductID:     productID,
		BatchID:       batchID,
		Type:          TransactionTypeSale,
		Quantity:      quantity.Neg(),
		UnitCost:      unitCost,
		TotalCost:     quantity.Mul(unitCost),
		ReferenceType: refType,
		ReferenceID:   refID,
		OccurredAt:    at,
	}
}
