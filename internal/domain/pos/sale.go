// Package pos holds the point-of-sale ingestion model: the terminal payload,
// its validation rules, sale arithmetic and the audit log.
package pos

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AnonymousTerminal keys rate limiting for payloads without a terminal id.
const AnonymousTerminal = "anonymous"

// SaleLineItem is one product line sent by a terminal
type SaleLineItem struct {
	SKU       string          `json:"sku" validate:"required,max=50"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount" validate:"gte=0"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
}

// GrossAmount is unit price × quantity before discount
func (i SaleLineItem) GrossAmount() decimal.Decimal {
	return i.UnitPrice.Mul(i.Quantity)
}

// SalePayload is the transaction a terminal submits
type SalePayload struct {
	TerminalID          string          `json:"pos_terminal_id" validate:"required,max=50"`
	TransactionID       string          `json:"transaction_id" validate:"required,max=100"`
	TransactionDatetime *Timestamp      `json:"transaction_datetime,omitempty"`
	CustomerCode        string          `json:"customer_code,omitempty" validate:"max=50"`
	PaymentMethod       string          `json:"payment_method" validate:"required,max=30"`
	AmountPaid          decimal.Decimal `json:"amount_paid" validate:"gte=0"`
	BankAccountID       string          `json:"bank_account_id,omitempty" validate:"omitempty,uuid"`
	Items               []SaleLineItem  `json:"items" validate:"required,min=1,max=100,dive"`
	Notes               string          `json:"notes,omitempty" validate:"max=1000"`
}

// RateLimitKey returns the key the per-terminal limiter counts against
func (p *SalePayload) RateLimitKey() string {
	if p == nil || strings.TrimSpace(p.TerminalID) == "" {
		return AnonymousTerminal
	}
	return p.TerminalID
}

// SaleTime returns the terminal timestamp, or now when none was sent
func (p *SalePayload) SaleTime(now time.Time) time.Time {
	if p.TransactionDatetime == nil || p.TransactionDatetime.IsZero() {
		return now
	}
	return p.TransactionDatetime.Time
}

// SKUs returns the distinct SKUs in line order
func (p *SalePayload) SKUs() []string {
	seen := make(map[string]struct{}, len(p.Items))
	skus := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		if _, ok := seen[item.SKU]; ok {
			continue
		}
		seen[item.SKU] = struct{}{}
		skus = append(skus, item.SKU)
	}
	return skus
}

// QuantityBySKU aggregates requested quantity per SKU
func (p *SalePayload) QuantityBySKU() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(p.Items))
	for _, item := range p.Items {
		out[item.SKU] = out[item.SKU].Add(item.Quantity)
	}
	return out
}

// Timestamp accepts RFC 3339 as well as the zone-less ISO 8601 forms some
// terminals send. Zone-less values are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("transaction_datetime must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("transaction_datetime %q is not an ISO 8601 timestamp", raw)
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
