package persistence

import (
	"context"

	"github.com/erp/posgateway/internal/domain/pos"
	"github.com/erp/posgateway/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleLogRepository implements SaleLogRepository using GORM
type GormSaleLogRepository struct {
	db *gorm.DB
}

// NewGormSaleLogRepository creates a new GormSaleLogRepository
func NewGormSaleLogRepository(db *gorm.DB) *GormSaleLogRepository {
	return &GormSaleLogRepository{db: db}
}

// FindCompleted returns the completed attempt for a transaction id
func (r *GormSaleLogRepository) FindCompleted(ctx context.Context, transactionID string) (*pos.SaleLog, error) {
	var model models.SaleLogModel
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ? AND status = ?", transactionID, string(pos.SaleLogStatusCompleted)).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Create inserts an attempt. The partial unique index turns a second
// completed row for the same transaction id into shared.ErrDuplicate.
func (r *GormSaleLogRepository) Create(ctx context.Context, log *pos.SaleLog) error {
	return translateError(r.db.WithContext(ctx).Create(models.SaleLogModelFromDomain(log)).Error)
}

// Ensure GormSaleLogRepository implements SaleLogRepository
var _ pos.SaleLogRepository = (*GormSaleLogRepository)(nil)
