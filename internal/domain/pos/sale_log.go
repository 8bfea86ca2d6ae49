package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLogStatus is the outcome of one processing attempt
type SaleLogStatus string

const (
	SaleLogStatusCompleted SaleLogStatus = "completed"
	SaleLogStatusFailed    SaleLogStatus = "failed"
)

// SaleLog is the audit row written for every attempt that reached the datastore
type SaleLog struct {
	shared.BaseEntity
	TerminalID     string
	TransactionID  string
	Status         SaleLogStatus
	CustomerCode   string
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	AmountPaid     decimal.Decimal
	InvoiceID      *uuid.UUID
	InvoiceNumber  string
	ReceiptID      *uuid.UUID
	ErrorCode      string
	ErrorDetails   string
	RawPayload     string
	ResultSnapshot string
	ProcessedAt    time.Time
}

func newSaleLog(p *SalePayload, status SaleLogStatus, now time.Time) (*SaleLog, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &SaleLog{
		BaseEntity:    shared.NewBaseEntity(),
		TerminalID:    p.TerminalID,
		TransactionID: p.TransactionID,
		Status:        status,
		CustomerCode:  p.CustomerCode,
		Subtotal:      decimal.Zero,
		TaxAmount:     decimal.Zero,
		TotalAmount:   decimal.Zero,
		AmountPaid:    p.AmountPaid,
		RawPayload:    string(raw),
		ProcessedAt:   now,
	}, nil
}

// NewFailedSaleLog records a rejected attempt with its error detail
func NewFailedSaleLog(p *SalePayload, saleErr *SaleError, totals *Totals, now time.Time) (*SaleLog, error) {
	log, err := newSaleLog(p, SaleLogStatusFailed, now)
	if err != nil {
		return nil, err
	}
	log.ErrorCode = string(saleErr.Code)
	detail := any(saleErr.Message)
	if saleErr.Details != nil {
		detail = saleErr.Details
	}
	encoded, err := json.Marshal(detail)
	if err != nil {
		return nil, fmt.Errorf("marshal error details: %w", err)
	}
	log.ErrorDetails = string(encoded)
	if totals != nil {
		log.Subtotal, log.TaxAmount, log.TotalAmount = totals.Subtotal, totals.Tax, totals.Total
	}
	return log, nil
}

// NewCompletedSaleLog records a processed sale with a snapshot of its result
func NewCompletedSaleLog(p *SalePayload, result *SaleResult, now time.Time) (*SaleLog, error) {
	log, err := newSaleLog(p, SaleLogStatusCompleted, now)
	if err != nil {
		return nil, err
	}
	snapshot, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	invoiceID := result.InvoiceID
	log.InvoiceID = &invoiceID
	log.InvoiceNumber = result.InvoiceNumber
	log.ReceiptID = result.ReceiptID
	log.Subtotal = result.Subtotal
	log.TaxAmount = result.TaxAmount
	log.TotalAmount = result.TotalAmount
	log.ResultSnapshot = string(snapshot)
	return log, nil
}

// Result restores the result recorded by a completed attempt
func (l *SaleLog) Result() (*SaleResult, error) {
	if l.Status != SaleLogStatusCompleted || l.ResultSnapshot == "" {
		return nil, shared.NewDomainError("INVALID_STATE", "sale log has no completed result")
	}
	var result SaleResult
	if err := json.Unmarshal([]byte(l.ResultSnapshot), &result); err != nil {
		return nil, fmt.Errorf("decode result snapshot: %w", err)
	}
	return &result, nil
}

// SaleLogRepository persists processing attempts
type SaleLogRepository interface {
	// FindCompleted returns the completed attempt for a transaction id,
	// or shared.ErrNotFound
	FindCompleted(ctx context.Context, transactionID string) (*SaleLog, error)

	// Create inserts an attempt. A second completed row for the same
	// transaction id fails with shared.ErrDuplicate.
	Create(ctx context.Context, log *SaleLog) error
}
