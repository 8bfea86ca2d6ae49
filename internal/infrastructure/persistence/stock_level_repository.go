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

// GormStockLevelRepository implements StockLevelRepository using GORM
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a new GormStockLevelRepository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// SumAvailable returns on-hand quantity per product summed over locations.
// Products without any stock level row are reported as zero.
func (r *GormStockLevelRepository) SumAvailable(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	totals := make(map[uuid.UUID]decimal.Decimal, len(productIDs))
	for _, id := range productIDs {
		totals[id] = decimal.Zero
	}
	if len(productIDs) == 0 {
		return totals, nil
	}

	var rows []struct {
		ProductID uuid.UUID
		Total     decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.StockLevelModel{}).
		Select("product_id, SUM(quantity_on_hand) AS total").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Total.Valid {
			totals[row.ProductID] = row.Total.Decimal
		}
	}
	return totals, nil
}

// FindByProduct returns the product's stock levels ordered by location code
func (r *GormStockLevelRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockLevel, error) {
	var rows []models.StockLevelModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("location_code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	levels := make([]inventory.StockLevel, len(rows))
	for i := range rows {
		levels[i] = *rows[i].ToDomain()
	}
	return levels, nil
}

// Decrement removes quantity unless it would take the level below zero
func (r *GormStockLevelRepository) Decrement(ctx context.Context, levelID uuid.UUID, quantity decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.StockLevelModel{}).
		Where("id = ? AND quantity_on_hand >= ?", levelID, quantity).
		Update("quantity_on_hand", gorm.Expr("quantity_on_hand - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Create inserts a new stock level
func (r *GormStockLevelRepository) Create(ctx context.Context, level *inventory.StockLevel) error {
	return translateError(r.db.WithContext(ctx).Create(models.StockLevelModelFromDomain(level)).Error)
}

// Ensure GormStockLevelRepository implements StockLevelRepository
var _ inventory.StockLevelRepository = (*GormStockLevelRepository)(nil)
