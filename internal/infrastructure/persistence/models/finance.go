package models

import (
	"time"

	"github.com/erp/posgateway/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	BaseModel
	InvoiceNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_invoices_customer_status,priority:1"`
	IssueDate     time.Time       `gorm:"not null"`
	DueDate       time.Time       `gorm:"not null"`
	Currency      string          `gorm:"type:varchar(3);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status        string          `gorm:"type:varchar(20);not null;index:idx_invoices_customer_status,priority:2"`
	Source        string          `gorm:"type:varchar(20);not null"`
	SourceRef     string          `gorm:"type:varchar(100);index"`
	Notes         string          `gorm:"type:text"`
	// Associations
	Lines []InvoiceLineModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceLineModel is the persistence model for one invoice line.
type InvoiceLineModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo    int             `gorm:"not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	SKU       string          `gorm:"column:sku;type:varchar(50);not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *finance.Invoice {
	inv := &finance.Invoice{
		BaseEntity:    m.BaseModel.ToDomain(),
		InvoiceNumber: m.InvoiceNumber,
		CustomerID:    m.CustomerID,
		IssueDate:     m.IssueDate,
		DueDate:       m.DueDate,
		Currency:      m.Currency,
		Subtotal:      m.Subtotal,
		TaxAmount:     m.TaxAmount,
		TotalAmount:   m.TotalAmount,
		AmountPaid:    m.AmountPaid,
		Source:        m.Source,
		SourceRef:     m.SourceRef,
		Notes:         m.Notes,
		Lines:         make([]finance.InvoiceLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		inv.Lines[i] = finance.InvoiceLine{
			ID:        l.ID,
			ProductID: l.ProductID,
			SKU:       l.SKU,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			TaxRate:   l.TaxRate,
			Subtotal:  l.Subtotal,
			TaxAmount: l.TaxAmount,
			LineTotal: l.LineTotal,
		}
	}
	return inv
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice.
// The stored status is always the projection of paid against total.
func InvoiceModelFromDomain(inv *finance.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Currency:      inv.Currency,
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		AmountPaid:    inv.AmountPaid,
		Status:        string(inv.Status()),
		Source:        inv.Source,
		SourceRef:     inv.SourceRef,
		Notes:         inv.Notes,
		Lines:         make([]InvoiceLineModel, len(inv.Lines)),
	}
	m.FromDomainBaseEntity(inv.BaseEntity)
	for i, l := range inv.Lines {
		m.Lines[i] = InvoiceLineModel{
			ID:        l.ID,
			InvoiceID: inv.ID,
			LineNo:    i + 1,
			ProductID: l.ProductID,
			SKU:       l.SKU,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			TaxRate:   l.TaxRate,
			Subtotal:  l.Subtotal,
			TaxAmount: l.TaxAmount,
			LineTotal: l.LineTotal,
		}
	}
	return m
}

// LedgerEntryModel is one posted journal leg.
type LedgerEntryModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	JournalID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountCode   string          `gorm:"type:varchar(20);not null;index"`
	AccountName   string          `gorm:"type:varchar(100);not null"`
	Debit         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Credit        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReferenceType string          `gorm:"type:varchar(30);not null;index:idx_ledger_entries_reference,priority:1"`
	ReferenceID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_entries_reference,priority:2"`
	Description   string          `gorm:"type:varchar(255)"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// LedgerEntryModelFromDomain creates a persistence model from a journal leg.
func LedgerEntryModelFromDomain(e finance.LedgerEntry) LedgerEntryModel {
	return LedgerEntryModel{
		ID:            e.ID,
		JournalID:     e.JournalID,
		AccountCode:   e.AccountCode,
		AccountName:   e.AccountName,
		Debit:         e.Debit,
		Credit:        e.Credit,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		Description:   e.Description,
	}
}

// ReceiptModel is the persistence model for a customer receipt.
type ReceiptModel struct {
	BaseModel
	ReceiptNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentMethod string          `gorm:"type:varchar(30);not null"`
	BankAccountID *uuid.UUID      `gorm:"type:uuid"`
	ReceivedAt    time.Time       `gorm:"not null"`
	// Associations
	Allocations []ReceiptAllocationModel `gorm:"foreignKey:ReceiptID;references:ID"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ReceiptAllocationModel links part of a receipt to an invoice.
type ReceiptAllocationModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReceiptID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ReceiptAllocationModel) TableName() string {
	return "receipt_allocations"
}

// ReceiptModelFromDomain creates a persistence model from a domain Receipt.
func ReceiptModelFromDomain(r *finance.Receipt) *ReceiptModel {
	m := &ReceiptModel{
		ReceiptNumber: r.ReceiptNumber,
		CustomerID:    r.CustomerID,
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		BankAccountID: r.BankAccountID,
		ReceivedAt:    r.ReceivedAt,
		Allocations:   make([]ReceiptAllocationModel, len(r.Allocations)),
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	for i, a := range r.Allocations {
		m.Allocations[i] = ReceiptAllocationModel{
			ID:        a.ID,
			ReceiptID: r.ID,
			InvoiceID: a.InvoiceID,
			Amount:    a.Amount,
		}
	}
	return m
}

// BankAccountModel is the persistence model for a bank account.
type BankAccountModel struct {
	BaseModel
	Name          string          `gorm:"type:varchar(100);not null"`
	GLAccountCode string          `gorm:"column:gl_account_code;type:varchar(20);not null"`
	GLAccountName string          `gorm:"column:gl_account_name;type:varchar(100);not null"`
	Balance       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the persistence model to a domain BankAccount.
func (m *BankAccountModel) ToDomain() *finance.BankAccount {
	return &finance.BankAccount{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		GLAccountCode: m.GLAccountCode,
		GLAccountName: m.GLAccountName,
		Balance:       m.Balance,
	}
}

// BankAccountModelFromDomain creates a persistence model from a domain BankAccount.
func BankAccountModelFromDomain(b *finance.BankAccount) *BankAccountModel {
	m := &BankAccountModel{
		Name:          b.Name,
		GLAccountCode: b.GLAccountCode,
		GLAccountName: b.GLAccountName,
		Balance:       b.Balance,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}

// BankTransactionModel is the persistence model for a bank movement.
type BankTransactionModel struct {
	BaseModel
	BankAccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type          string          `gorm:"column:transaction_type;type:varchar(20);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceType string          `gorm:"type:varchar(30);not null"`
	ReferenceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description   string          `gorm:"type:varchar(255)"`
	OccurredAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BankTransactionModel) TableName() string {
	return "bank_transactions"
}

// BankTransactionModelFromDomain creates a persistence model from a domain BankTransaction.
func BankTransactionModelFromDomain(t *finance.BankTransaction) *BankTransactionModel {
	m := &BankTransactionModel{
		BankAccountID: t.BankAccountID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		ReferenceType: t.ReferenceType,
		ReferenceID:   t.ReferenceID,
		Description:   t.Description,
		OccurredAt:    t.OccurredAt,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}
