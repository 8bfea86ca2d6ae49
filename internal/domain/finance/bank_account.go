package finance

import (
	"time"

	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccount is a cash or bank account with a running balance
type BankAccount struct {
	shared.BaseEntity
	Name          string
	GLAccountCode string
	GLAccountName string
	Balance       decimal.Decimal
}

// NewBankAccount creates a bank account linked to a GL account
func NewBankAccount(name, glCode, glName string, opening decimal.Decimal) *BankAccount {
	return &BankAccount{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		GLAccountCode: glCode,
		GLAccountName: glName,
		Balance:       opening,
	}
}

// GLAccount returns the ledger account the bank account posts to
func (b *BankAccount) GLAccount() Account {
	return Account{Code: b.GLAccountCode, Name: b.GLAccountName}
}

// BankTransactionType classifies bank movements
type BankTransactionType string

const (
	BankTransactionDeposit BankTransactionType = "deposit"
)

// BankTransaction records a movement on a bank account
type BankTransaction struct {
	shared.BaseEntity
	BankAccountID uuid.UUID
	Type          BankTransactionType
	Amount        decimal.Decimal
	ReferenceType string
	ReferenceID   uuid.UUID
	Description   string
	OccurredAt    time.Time
}

// NewDeposit records money placed into a bank account
func NewDeposit(accountID uuid.UUID, amount decimal.Decimal, refType string, refID uuid.UUID, description string, at time.Time) *BankTransaction {
	return &BankTransaction{
		BaseEntity:    shared.NewBaseEntity(),
		BankAccountID: accountID,
		Type:          BankTransactionDeposit,
		Amount:        amount,
		ReferenceType: refType,
		ReferenceID:   refID,
		Description:   description,
		OccurredAt:    at,
	}
}
