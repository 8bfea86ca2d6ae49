package inventory

import (
	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevel is the stock-on-hand of a product at one location
type StockLevel struct {
	shared.BaseEntity
	ProductID      uuid.UUID
	LocationCode   string
	QuantityOnHand decimal.Decimal
}

// NewStockLevel creates a stock-on-hand record
func NewStockLevel(productID uuid.UUID, locationCode string, quantity decimal.Decimal) *StockLevel {
	return &StockLevel{
		BaseEntity:     shared.NewBaseEntity(),
		ProductID:      productID,
		LocationCode:   locationCode,
		QuantityOnHand: quantity,
	}
}

// LevelDraw is the quantity to remove from one location
type LevelDraw struct {
	LevelID      uuid.UUID
	LocationCode string
	Quantity     decimal.Decimal
}

// PlanLevelDraws spreads quantity over locations in the given order without
// taking any location below zero. The uncovered remainder is returned.
func PlanLevelDraws(levels []StockLevel, quantity decimal.Decimal) ([]LevelDraw, decimal.Decimal) {
	remaining := quantity
	var draws []LevelDraw
	for _, level := range levels {
		if !remaining.IsPositive() {
			break
		}
		if !level.QuantityOnHand.IsPositive() {
			continue
		}
		take := decimal.Min(remaining, level.QuantityOnHand)
		draws = append(draws, LevelDraw{LevelID: level.ID, LocationCode: level.LocationCode, Quantity: take})
		remaining = remaining.Sub(take)
	}
	return draws, remaining
}
