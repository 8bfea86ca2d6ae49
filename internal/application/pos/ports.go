package pos

import (
	"context"
	"time"

	"github.com/erp/posgateway/internal/domain/catalog"
	"github.com/erp/posgateway/internal/domain/finance"
	"github.com/erp/posgateway/internal/domain/inventory"
	"github.com/erp/posgateway/internal/domain/partner"
	"github.com/erp/posgateway/internal/domain/pos"
)

// RateLimiter throttles requests per key
type RateLimiter interface {
	// Allow records a hit for key and reports whether it fits in the window
	Allow(ctx context.Context, key string) (bool, error)
}

// SaleLocker serializes processing of one transaction id across instances
type SaleLocker interface {
	// Acquire blocks until the lock is held or ctx is done
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// SettingsProvider returns the effective processor settings
type SettingsProvider interface {
	Settings(ctx context.Context) (pos.Settings, error)
}

// PayloadArchiver stores the raw request and its outcome outside the database
type PayloadArchiver interface {
	Archive(ctx context.Context, payload *pos.SalePayload, result *pos.SaleResult) error
}

// SaleMetrics records processing outcomes
type SaleMetrics interface {
	RecordSale(ctx context.Context, outcome string, duration time.Duration)
	RecordReplay(ctx context.Context)
	RecordCOGS(ctx context.Context, zeroCost bool)
}

// TransactionScope runs the write phase of a sale atomically.
// If fn returns an error, every write made through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos WriteRepositories) error) error
}

// WriteRepositories are the repositories bound to the current transaction
type WriteRepositories interface {
	Customers() partner.CustomerRepository
	Invoices() finance.InvoiceRepository
	Ledger() finance.LedgerRepository
	Receipts() finance.ReceiptRepository
	BankAccounts() finance.BankAccountRepository
	Batches() inventory.BatchRepository
	StockLevels() inventory.StockLevelRepository
	InventoryTransactions() inventory.TransactionRepository
	SaleLogs() pos.SaleLogRepository
}

// ReadRepositories are used outside the write transaction
type ReadRepositories struct {
	Products     catalog.ProductRepository
	StockLevels  inventory.StockLevelRepository
	Customers    partner.CustomerRepository
	Invoices     finance.InvoiceRepository
	BankAccounts finance.BankAccountRepository
	SaleLogs     pos.SaleLogRepository
}

// NoOpSaleLocker never blocks. Used when no redis is configured; the
// completed-row unique index still rejects racing duplicates.
type NoOpSaleLocker struct{}

// Acquire returns immediately
func (NoOpSaleLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}
