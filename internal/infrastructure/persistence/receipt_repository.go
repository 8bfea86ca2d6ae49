package persistence

import (
	"context"

	"github.com/erp/posgateway/internal/domain/finance"
	"github.com/erp/posgateway/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReceiptRepository implements ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// Create inserts the receipt and its allocations
func (r *GormReceiptRepository) Create(ctx context.Context, receipt *finance.Receipt) error {
	model := models.ReceiptModelFromDomain(receipt)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return translateError(err)
	}
	if len(model.Allocations) == 0 {
		return nil
	}
	return db.Create(&model.Allocations).Error
}

// Ensure GormReceiptRepository implements ReceiptRepository
var _ finance.ReceiptRepository = (*GormReceiptRepository)(nil)
