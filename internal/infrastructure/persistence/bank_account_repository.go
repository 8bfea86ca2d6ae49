package persistence

import (
	"context"

	"github.com/erp/posgateway/internal/domain/finance"
	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/erp/posgateway/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormBankAccountRepository implements BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByID finds a bank account by its ID
func (r *GormBankAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.BankAccount, error) {
	var model models.BankAccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// IncrementBalance adds amount in SQL so concurrent deposits never overwrite each other
func (r *GormBankAccountRepository) IncrementBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.BankAccountModel{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// RecordTransaction appends a bank movement
func (r *GormBankAccountRepository) RecordTransaction(ctx context.Context, tx *finance.BankTransaction) error {
	return r.db.WithContext(ctx).Create(models.BankTransactionModelFromDomain(tx)).Error
}

// Create inserts a new bank account
func (r *GormBankAccountRepository) Create(ctx context.Context, account *finance.BankAccount) error {
	return translateError(r.db.WithContext(ctx).Create(models.BankAccountModelFromDomain(account)).Error)
}

// Ensure GormBankAccountRepository implements BankAccountRepository
var _ finance.BankAccountRepository = (*GormBankAccountRepository)(nil)
