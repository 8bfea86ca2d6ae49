package persistence

import (
	"context"
	"testing"
	"time"

	apppos "github.com/erp/posgateway/internal/application/pos"
	"github.com/erp/posgateway/internal/domain/catalog"
	"github.com/erp/posgateway/internal/domain/finance"
	"github.com/erp/posgateway/internal/domain/inventory"
	"github.com/erp/posgateway/internal/domain/partner"
	"github.com/erp/posgateway/internal/domain/pos"
	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/erp/posgateway/internal/infrastructure/config"
	"github.com/erp/posgateway/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newSQLiteDB opens an in-memory database with every table migrated
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate())
	t.Cleanup(func() { _ = database.Close() })
	return database.DB
}

func samplePayload(txID string) *pos.SalePayload {
	return &pos.SalePayload{
		TerminalID:    "T-9",
		TransactionID: txID,
		PaymentMethod: "cash",
		AmountPaid:    decimal.NewFromInt(5),
		Items: []pos.SaleLineItem{
			{SKU: "A", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)},
		},
	}
}

func TestGormSaleLogRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("one completed row per transaction id", func(t *testing.T) {
		repo := NewGormSaleLogRepository(newSQLiteDB(t))
		p := samplePayload("TX-1")
		result := &pos.SaleResult{InvoiceNumber: "INV-POS-20240201-AAAAAAAA", InvoiceID: uuid.New(), Timestamp: now}

		first, err := pos.NewCompletedSaleLog(p, result, now)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, first))

		second, err := pos.NewCompletedSaleLog(p, result, now)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, second), shared.ErrDuplicate)

		found, err := repo.FindCompleted(ctx, "TX-1")
		require.NoError(t, err)
		replay, err := found.Result()
		require.NoError(t, err)
		assert.Equal(t, "INV-POS-20240201-AAAAAAAA", replay.InvoiceNumber)
	})

	t.Run("failed attempts may repeat", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormSaleLogRepository(db)
		p := samplePayload("TX-2")

		for i := 0; i < 3; i++ {
			failed, err := pos.NewFailedSaleLog(p, pos.NewValidationFailedError([]pos.ValidationIssue{{SKU: "A", Error: "Product not found"}}), nil, now)
			require.NoError(t, err)
			require.NoError(t, repo.Create(ctx, failed))
		}

		var count int64
		require.NoError(t, db.Model(&models.SaleLogModel{}).Where("transaction_id = ?", "TX-2").Count(&count).Error)
		assert.Equal(t, int64(3), count)

		_, err := repo.FindCompleted(ctx, "TX-2")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormStockLevelRepository_SumAvailable(t *testing.T) {
	ctx := context.Background()
	repo := NewGormStockLevelRepository(newSQLiteDB(t))

	stocked, empty := uuid.New(), uuid.New()
	require.NoError(t, repo.Create(ctx, inventory.NewStockLevel(stocked, "MAIN", decimal.RequireFromString("4.5"))))
	require.NoError(t, repo.Create(ctx, inventory.NewStockLevel(stocked, "BACK", decimal.NewFromInt(3))))

	totals, err := repo.SumAvailable(ctx, []uuid.UUID{stocked, empty})
	require.NoError(t, err)
	assert.Equal(t, "7.50", totals[stocked].StringFixed(2))
	assert.True(t, totals[empty].IsZero())

	levels, err := repo.FindByProduct(ctx, stocked)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, "BACK", levels[0].LocationCode)
	assert.Equal(t, "MAIN", levels[1].LocationCode)
}

func TestGormStockBatchRepository_FIFOAndDecrement(t *testing.T) {
	ctx := context.Background()
	repo := NewGormStockBatchRepository(newSQLiteDB(t))
	productID := uuid.New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	late, err := inventory.NewStockBatch(productID, "LATE", decimal.NewFromInt(5), decimal.NewFromInt(2), base.Add(48*time.Hour))
	require.NoError(t, err)
	early, err := inventory.NewStockBatch(productID, "EARLY", decimal.NewFromInt(2), decimal.NewFromInt(1), base)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, late))
	require.NoError(t, repo.Create(ctx, early))

	batches, err := repo.FindActiveByProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "EARLY", batches[0].BatchNumber)

	require.NoError(t, repo.Decrement(ctx, early.ID, decimal.NewFromInt(2)))
	assert.ErrorIs(t, repo.Decrement(ctx, late.ID, decimal.NewFromInt(6)), shared.ErrConcurrencyConflict)

	batches, err = repo.FindActiveByProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, batches, 1, "consumed batches drop out of the FIFO queue")
	assert.Equal(t, "LATE", batches[0].BatchNumber)
}

func TestGormInvoiceRepository_OutstandingForCustomer(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormInvoiceRepository(db)
	customerID := uuid.New()
	now := time.Now().UTC()

	create := func(total, paid string) {
		invoice, err := finance.NewPOSInvoice(finance.GenerateDocumentNumber("INV-POS", now), customerID, now, "USD", uuid.NewString())
		require.NoError(t, err)
		amount := decimal.RequireFromString(total)
		invoice.AddLine(finance.InvoiceLine{
			ProductID: uuid.New(), SKU: "A", Quantity: decimal.NewFromInt(1),
			UnitPrice: amount, Subtotal: amount, LineTotal: amount,
		})
		invoice.ApplyPayment(decimal.RequireFromString(paid))
		require.NoError(t, repo.Create(ctx, invoice))
	}

	outstanding, err := repo.OutstandingForCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, outstanding.IsZero())

	create("100", "0")   // sent
	create("50", "20")   // partial
	create("75.5", "80") // paid, excluded

	outstanding, err = repo.OutstandingForCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, "130.00", outstanding.StringFixed(2))

	var lines int64
	require.NoError(t, db.Model(&models.InvoiceLineModel{}).Count(&lines).Error)
	assert.Equal(t, int64(3), lines)
}

func TestGormCustomerRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCustomerRepository(newSQLiteDB(t))

	walkIn, err := partner.NewWalkInCustomer("WALK-IN")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, walkIn))

	again, err := partner.NewWalkInCustomer("WALK-IN")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, again), shared.ErrDuplicate)

	found, err := repo.FindByCode(ctx, "WALK-IN")
	require.NoError(t, err)
	assert.Equal(t, walkIn.ID, found.ID)

	_, err = repo.FindByCode(ctx, "NOPE")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_FindBySKUs(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newSQLiteDB(t))

	for _, sku := range []string{"A", "B", "C"} {
		product, err := catalog.NewProduct(sku, "Product "+sku, decimal.NewFromInt(1))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, product))
	}

	products, err := repo.FindBySKUs(ctx, []string{"A", "C", "Z"})
	require.NoError(t, err)
	require.Len(t, products, 2)

	empty, err := repo.FindBySKUs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGormLedgerRepository_RejectsUnbalancedJournal(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormLedgerRepository(db)

	journal := finance.NewJournal("invoice", uuid.New(), "test")
	journal.Debit(finance.Account{Code: "1000", Name: "Cash"}, decimal.NewFromInt(10))
	journal.Credit(finance.Account{Code: "4000", Name: "Revenue"}, decimal.NewFromInt(9))
	assert.Error(t, repo.Post(ctx, journal))

	journal.Credit(finance.Account{Code: "2100", Name: "Tax"}, decimal.NewFromInt(1))
	require.NoError(t, repo.Post(ctx, journal))

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntryModel{}).Where("journal_id = ?", journal.ID).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestGormSettingsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSettingsRepository(newSQLiteDB(t))

	require.NoError(t, repo.Set(ctx, pos.SettingValidateStock, "true"))
	require.NoError(t, repo.Set(ctx, pos.SettingValidateStock, "false"))
	require.NoError(t, repo.Set(ctx, "report.currency", "EUR"))

	values, err := repo.FindByPrefix(ctx, pos.SettingsPrefix)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{pos.SettingValidateStock: "false"}, values)
}

func TestGormSaleTransactionScope_RollsBack(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	scope := NewGormSaleTransactionScope(db)

	err := scope.Execute(ctx, func(repos apppos.WriteRepositories) error {
		walkIn, err := partner.NewWalkInCustomer("WALK-IN")
		require.NoError(t, err)
		require.NoError(t, repos.Customers().Create(ctx, walkIn))
		return shared.ErrConcurrencyConflict
	})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	var count int64
	require.NoError(t, db.Model(&models.CustomerModel{}).Count(&count).Error)
	assert.Zero(t, count)
}
