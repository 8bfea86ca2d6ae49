package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchRepository persists FIFO cost lots
type BatchRepository interface {
	// FindActiveByProduct returns batches with stock, oldest received first
	FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]StockBatch, error)

	// Decrement atomically removes quantity from a batch, marking it consumed at zero.
	// Returns shared.ErrConcurrencyConflict when the batch no longer holds quantity.
	Decrement(ctx context.Context, batchID uuid.UUID, quantity decimal.Decimal) error

	// Create inserts a new batch
	Create(ctx context.Context, batch *StockBatch) error
}

// StockLevelRepository persists stock-on-hand per location
type StockLevelRepository interface {
	// SumAvailable returns total on-hand quantity per product across locations
	SumAvailable(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	// FindByProduct returns the product's levels ordered by location code
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]StockLevel, error)

	// Decrement atomically removes quantity, failing with
	// shared.ErrConcurrencyConflict instead of going negative
	Decrement(ctx context.Context, levelID uuid.UUID, quantity decimal.Decimal) error

	// Create inserts a new stock level
	Create(ctx context.Context, level *StockLevel) error
}

// TransactionRepository appends stock movements
type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error
}
