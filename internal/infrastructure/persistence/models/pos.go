package models

import (
	"time"

	"github.com/erp/posgateway/internal/domain/pos"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLogModel is the audit row of one processing attempt. The partial
// unique index allows any number of failed attempts but a single completed
// row per transaction id.
type SaleLogModel struct {
	BaseModel
	TerminalID     string          `gorm:"type:varchar(50);not null;index"`
	TransactionID  string          `gorm:"type:varchar(100);not null;index;uniqueIndex:idx_pos_sale_logs_completed,where:status = 'completed'"`
	Status         string          `gorm:"type:varchar(20);not null"`
	CustomerCode   string          `gorm:"type:varchar(50)"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	InvoiceID      *uuid.UUID      `gorm:"type:uuid"`
	InvoiceNumber  string          `gorm:"type:varchar(50)"`
	ReceiptID      *uuid.UUID      `gorm:"type:uuid"`
	ErrorCode      string          `gorm:"type:varchar(50)"`
	ErrorDetails   string          `gorm:"type:text"`
	RawPayload     string          `gorm:"type:text;not null"`
	ResultSnapshot string          `gorm:"type:text"`
	ProcessedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleLogModel) TableName() string {
	return "pos_sale_logs"
}

// ToDomain converts the persistence model to a domain SaleLog.
func (m *SaleLogModel) ToDomain() *pos.SaleLog {
	return &pos.SaleLog{
		BaseEntity:     m.BaseModel.ToDomain(),
		TerminalID:     m.TerminalID,
		TransactionID:  m.TransactionID,
		Status:         pos.SaleLogStatus(m.Status),
		CustomerCode:   m.CustomerCode,
		Subtotal:       m.Subtotal,
		TaxAmount:      m.TaxAmount,
		TotalAmount:    m.TotalAmount,
		AmountPaid:     m.AmountPaid,
		InvoiceID:      m.InvoiceID,
		InvoiceNumber:  m.InvoiceNumber,
		ReceiptID:      m.ReceiptID,
		ErrorCode:      m.ErrorCode,
		ErrorDetails:   m.ErrorDetails,
		RawPayload:     m.RawPayload,
		ResultSnapshot: m.ResultSnapshot,
		ProcessedAt:    m.ProcessedAt,
	}
}

// SaleLogModelFromDomain creates a persistence model from a domain SaleLog.
func SaleLogModelFromDomain(l *pos.SaleLog) *SaleLogModel {
	m := &SaleLogModel{
		TerminalID:     l.TerminalID,
		TransactionID:  l.TransactionID,
		Status:         string(l.Status),
		CustomerCode:   l.CustomerCode,
		Subtotal:       l.Subtotal,
		TaxAmount:      l.TaxAmount,
		TotalAmount:    l.TotalAmount,
		AmountPaid:     l.AmountPaid,
		InvoiceID:      l.InvoiceID,
		InvoiceNumber:  l.InvoiceNumber,
		ReceiptID:      l.ReceiptID,
		ErrorCode:      l.ErrorCode,
		ErrorDetails:   l.ErrorDetails,
		RawPayload:     l.RawPayload,
		ResultSnapshot: l.ResultSnapshot,
		ProcessedAt:    l.ProcessedAt,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// SystemSettingModel is one key/value runtime setting.
type SystemSettingModel struct {
	Key       string    `gorm:"column:setting_key;type:varchar(100);primaryKey"`
	Value     string    `gorm:"column:setting_value;type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SystemSettingModel) TableName() string {
	return "system_settings"
}
