package persistence

import (
	"context"

	"github.com/erp/posgateway/internal/domain/inventory"
	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/erp/posgateway/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockBatchRepository implements BatchRepository using GORM
type GormStockBatchRepository struct {
	db *gorm.DB
}

// NewGormStockBatchRepository creates a new GormStockBatchRepository
func NewGormStockBatchRepository(db *gorm.DB) *GormStockBatchRepository {
	return &GormStockBatchRepository{db: db}
}

// FindActiveByProduct returns batches still holding stock in FIFO order
func (r *GormStockBatchRepository) FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockBatch, error) {
	var rows []models.StockBatchModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND status = ? AND quantity_remaining > 0", productID, string(inventory.BatchStatusActive)).
		Order("received_at ASC, created_at ASC"). // FIFO
		Find(&rows).Error; err != nil {
		return nil, err
	}
	batches := make([]inventory.StockBatch, len(rows))
	for i := range rows {
		batches[i] = *rows[i].ToDomain()
	}
	return batches, nil
}

// Decrement removes quantity with a single conditional UPDATE. The batch is
// flipped to consumed in the same statement when it reaches zero.
func (r *GormStockBatchRepository) Decrement(ctx context.Context, batchID uuid.UUID, quantity decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.StockBatchModel{}).
		Where("id = ? AND quantity_remaining >= ?", batchID, quantity).
		Updates(map[string]any{
			"quantity_remaining": gorm.Expr("quantity_remaining - ?", quantity),
			"status": gorm.Expr("CASE WHEN quantity_remaining - ? <= 0 THEN ? ELSE status END",
				quantity, string(inventory.BatchStatusConsumed)),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Create inserts a new batch
func (r *GormStockBatchRepository) Create(ctx context.Context, batch *inventory.StockBatch) error {
	return translateError(r.db.WithContext(ctx).Create(models.StockBatchModelFromDomain(batch)).Error)
}

// Ensure GormStockBatchRepository implements BatchRepository
var _ inventory.BatchRepository = (*GormStockBatchRepository)(nil)
