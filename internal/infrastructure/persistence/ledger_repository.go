package persistence

import (
	"context"

	"github.com/erp/posgateway/internal/domain/finance"
	"github.com/erp/posgateway/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLedgerRepository posts journals to ledger_entries
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Post validates the journal and inserts all of its entries in one statement
func (r *GormLedgerRepository) Post(ctx context.Context, journal *finance.Journal) error {
	if err := journal.Validate(); err != nil {
		return err
	}
	rows := make([]models.LedgerEntryModel, len(journal.Entries))
	for i, e := range journal.Entries {
		rows[i] = models.LedgerEntryModelFromDomain(e)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// Ensure GormLedgerRepository implements LedgerRepository
var _ finance.LedgerRepository = (*GormLedgerRepository)(nil)
