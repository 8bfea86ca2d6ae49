package persistence

import (
	"context"

	"github.com/erp/posgateway/internal/domain/finance"
	"github.com/erp/posgateway/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Create inserts the header, then its lines
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *finance.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return translateError(err)
	}
	if len(model.Lines) == 0 {
		return nil
	}
	return translateError(db.Create(&model.Lines).Error)
}

// OutstandingForCustomer sums the open balance of every unsettled invoice
func (r *GormInvoiceRepository) OutstandingForCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	var outstanding decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("SUM(total_amount - amount_paid)").
		Where("customer_id = ? AND status NOT IN ?", customerID,
			[]string{string(finance.InvoiceStatusPaid), string(finance.InvoiceStatusCancelled)}).
		Row().Scan(&outstanding)
	if err != nil {
		return decimal.Zero, err
	}
	if !outstanding.Valid {
		return decimal.Zero, nil
	}
	return outstanding.Decimal, nil
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ finance.InvoiceRepository = (*GormInvoiceRepository)(nil)
