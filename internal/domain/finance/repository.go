package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// Create inserts the invoice header with its lines
	Create(ctx context.Context, invoice *Invoice) error

	// OutstandingForCustomer sums (total - paid) over the customer's invoices
	// that are neither paid nor cancelled
	OutstandingForCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
}

// LedgerRepository posts journals
type LedgerRepository interface {
	// Post persists every entry of a validated journal
	Post(ctx context.Context, journal *Journal) error
}

// ReceiptRepository defines the interface for receipt persistence
type ReceiptRepository interface {
	// Create inserts the receipt with its allocations
	Create(ctx context.Context, receipt *Receipt) error
}

// BankAccountRepository defines the interface for bank account persistence
type BankAccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BankAccount, error)

	// IncrementBalance atomically adds amount to the running balance
	IncrementBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// RecordTransaction appends a bank movement
	RecordTransaction(ctx context.Context, tx *BankTransaction) error

	Create(ctx context.Context, account *BankAccount) error
}
