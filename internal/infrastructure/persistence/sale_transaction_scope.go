package persistence

import (
	"context"

	apppos "github.com/erp/posgateway/internal/application/pos"
	"github.com/erp/posgateway/internal/domain/finance"
	"github.com/erp/posgateway/internal/domain/inventory"
	"github.com/erp/posgateway/internal/domain/partner"
	"github.com/erp/posgateway/internal/domain/pos"
	"gorm.io/gorm"
)

// GormSaleTransactionScope implements TransactionScope using GORM transactions.
type GormSaleTransactionScope struct {
	db *gorm.DB
}

// NewGormSaleTransactionScope creates a new GormSaleTransactionScope.
func NewGormSaleTransactionScope(db *gorm.DB) *GormSaleTransactionScope {
	return &GormSaleTransactionScope{db: db}
}

// Execute runs fn within a database transaction. If fn returns an error
// the transaction is rolled back, otherwise it is committed.
func (s *GormSaleTransactionScope) Execute(ctx context.Context, fn func(repos apppos.WriteRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormSaleRepositories{tx: tx})
	})
}

// gormSaleRepositories hands out repositories sharing one transaction.
type gormSaleRepositories struct {
	tx *gorm.DB
}

func (r *gormSaleRepositories) Customers() partner.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

func (r *gormSaleRepositories) Invoices() finance.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

func (r *gormSaleRepositories) Ledger() finance.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

func (r *gormSaleRepositories) Receipts() finance.ReceiptRepository {
	return NewGormReceiptRepository(r.tx)
}

func (r *gormSaleRepositories) BankAccounts() finance.BankAccountRepository {
	return NewGormBankAccountRepository(r.tx)
}

func (r *gormSaleRepositories) Batches() inventory.BatchRepository {
	return NewGormStockBatchRepository(r.tx)
}

func (r *gormSaleRepositories) StockLevels() inventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

func (r *gormSaleRepositories) InventoryTransactions() inventory.TransactionRepository {
	return NewGormInventoryTransactionRepository(r.tx)
}

func (r *gormSaleRepositories) SaleLogs() pos.SaleLogRepository {
	return NewGormSaleLogRepository(r.tx)
}

// NewReadRepositories builds the non-transactional repositories for the processor
func NewReadRepositories(db *gorm.DB) apppos.ReadRepositories {
	return apppos.ReadRepositories{
		Products:     NewGormProductRepository(db),
		StockLevels:  NewGormStockLevelRepository(db),
		Customers:    NewGormCustomerRepository(db),
		Invoices:     NewGormInvoiceRepository(db),
		BankAccounts: NewGormBankAccountRepository(db),
		SaleLogs:     NewGormSaleLogRepository(db),
	}
}

// Ensure GormSaleTransactionScope implements TransactionScope
var _ apppos.TransactionScope = (*GormSaleTransactionScope)(nil)

// Ensure gormSaleRepositories implements WriteRepositories
var _ apppos.WriteRepositories = (*gormSaleRepositories)(nil)
