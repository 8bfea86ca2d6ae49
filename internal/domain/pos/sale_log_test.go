package pos

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/erp/posgateway/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompletedSaleLog_ResultRoundTrip(t *testing.T) {
	receiptNo := "RCP-POS-1"
	receiptID := uuid.New()
	result := &SaleResult{
		InvoiceNumber:    "INV-POS-1",
		InvoiceID:        uuid.New(),
		ReceiptNumber:    &receiptNo,
		ReceiptID:        &receiptID,
		Subtotal:         d("20"),
		TaxAmount:        d("2"),
		TotalAmount:      d("22"),
		AmountPaid:       d("22"),
		ChangeDue:        d("0"),
		BalanceDue:       d("0"),
		COGSAmount:       d("8.5"),
		InvoiceStatus:    finance.InvoiceStatusPaid,
		InventoryUpdated: true,
		GLPosted:         true,
		Timestamp:        time.Date(2026, 1, 18, 9, 0, 0, 0, time.UTC),
	}

	log, err := NewCompletedSaleLog(validPayload(), result, time.Now())
	require.NoError(t, err)
	assert.Equal(t, SaleLogStatusCompleted, log.Status)
	assert.Equal(t, result.InvoiceID, *log.InvoiceID)
	assert.Contains(t, log.RawPayload, `"transaction_id":"TX-1001"`)

	restored, err := log.Result()
	require.NoError(t, err)
	assert.Equal(t, result.InvoiceNumber, restored.InvoiceNumber)
	assert.Equal(t, *result.ReceiptID, *restored.ReceiptID)
	assert.True(t, restored.COGSAmount.Equal(result.COGSAmount))
	assert.True(t, restored.Timestamp.Equal(result.Timestamp))
}

func TestNewFailedSaleLog(t *testing.T) {
	saleErr := NewValidationFailedError([]ValidationIssue{{SKU: "A1", Error: "Product not found"}})
	totals := ComputeTotals(validPayload().Items, d("22"))
	log, err := NewFailedSaleLog(validPayload(), saleErr, &totals, time.Now())
	require.NoError(t, err)
	assert.Equal(t, SaleLogStatusFailed, log.Status)
	assert.Equal(t, string(ErrCodeValidationFailed), log.ErrorCode)
	assert.True(t, log.TotalAmount.Equal(d("22")))

	var issues []ValidationIssue
	require.NoError(t, json.Unmarshal([]byte(log.ErrorDetails), &issues))
	assert.Equal(t, "Product not found", issues[0].Error)

	_, err = log.Result()
	assert.Error(t, err)
}

func TestSettings_Override(t *testing.T) {
	s, errs := DefaultSettings().Override(map[string]string{
		SettingPriceTolerance:  "5.5",
		SettingValidateStock:   "false",
		SettingValidateCredit:  "true",
		SettingDefaultCurrency: "eur",
		SettingWalkInCode:      "CASH",
		SettingAccountCash:     "1010",
		SettingRejectZeroCost:  "maybe",
		"pos.unknown":          "x",
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), SettingRejectZeroCost)
	assert.True(t, s.PriceTolerancePercent.Equal(d("5.5")))
	assert.False(t, s.ValidateStock)
	assert.True(t, s.ValidateCredit)
	assert.False(t, s.RejectZeroCost)
	assert.Equal(t, "EUR", s.DefaultCurrency)
	assert.Equal(t, "CASH", s.WalkInCustomerCode)
	assert.Equal(t, "1010", s.Accounts.Cash.Code)
	assert.Equal(t, "Cash", s.Accounts.Cash.Name)
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.True(t, s.PriceTolerancePercent.Equal(d("10")))
	assert.True(t, s.ValidateStock)
	assert.False(t, s.ValidateCredit)
	assert.Equal(t, "WALK-IN", s.WalkInCustomerCode)
	assert.Equal(t, "USD", s.DefaultCurrency)
}

func TestSaleError(t *testing.T) {
	err := NewInternalError(assert.AnError)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "INTERNAL_ERROR")
	assert.Equal(t, ErrCodeRateLimitExceeded, NewRateLimitError("T-01").Code)
	assert.Nil(t, NewInvalidPayloadError("bad", nil).Details)
}
