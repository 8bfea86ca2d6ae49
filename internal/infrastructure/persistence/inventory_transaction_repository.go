package persistence

import (
	"context"

	"github.com/erp/posgateway/internal/domain/inventory"
	"github.com/erp/posgateway/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInventoryTransactionRepository implements TransactionRepository using GORM
type GormInventoryTransactionRepository struct {
	db *gorm.DB
}

// NewGormInventoryTransactionRepository creates a new GormInventoryTransactionRepository
func NewGormInventoryTransactionRepository(db *gorm.DB) *GormInventoryTransactionRepository {
	return &GormInventoryTransactionRepository{db: db}
}

// Create appends a stock movement
func (r *GormInventoryTransactionRepository) Create(ctx context.Context, tx *inventory.Transaction) error {
	return r.db.WithContext(ctx).Create(models.InventoryTransactionModelFromDomain(tx)).Error
}

// Ensure GormInventoryTransactionRepository implements TransactionRepository
var _ inventory.TransactionRepository = (*GormInventoryTransactionRepository)(nil)
