package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/posgateway/internal/domain/pos"
	"github.com/erp/posgateway/internal/interfaces/http/dto"
	"github.com/erp/posgateway/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSaleService struct {
	mock.Mock
}

func (m *MockSaleService) ProcessSale(ctx context.Context, p *pos.SalePayload) (*pos.SaleResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.SaleResult), args.Error(1)
}

const saleBody = `{
	"pos_terminal_id": "T1",
	"transaction_id": "TX-100",
	"payment_method": "cash",
	"amount_paid": 11,
	"items": [{"sku": "A", "quantity": 2, "unit_price": 5, "tax_rate": 10}]
}`

func setupSaleRouter(svc SaleService, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	NewPOSSaleHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postSale(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/sales", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleResult() *pos.SaleResult {
	receiptNumber := "RCP-POS-20240514-0000ABCD"
	receiptID := uuid.New()
	return &pos.SaleResult{
		InvoiceNumber: "INV-POS-20240514-0000ABCD",
		InvoiceID:     uuid.New(),
		ReceiptNumber: &receiptNumber,
		ReceiptID:     &receiptID,
		Subtotal:      decimal.NewFromInt(10),
		TaxAmount:     decimal.NewFromInt(1),
		TotalAmount:   decimal.NewFromInt(11),
		AmountPaid:    decimal.NewFromInt(11),
		COGSAmount:    decimal.NewFromInt(6),
		InvoiceStatus: "paid",
		Timestamp:     time.Date(2024, 5, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestPOSSaleHandler_ProcessSale(t *testing.T) {
	t.Run("returns the sale result", func(t *testing.T) {
		svc := new(MockSaleService)
		svc.On("ProcessSale", mock.Anything, mock.MatchedBy(func(p *pos.SalePayload) bool {
			return p.TransactionID == "TX-100" && len(p.Items) == 1 && p.Items[0].Quantity.Equal(decimal.NewFromInt(2))
		})).Return(sampleResult(), nil)

		w := postSale(setupSaleRouter(svc), saleBody)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.SaleResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "INV-POS-20240514-0000ABCD", resp.InvoiceNumber)
		assert.Equal(t, 11.0, resp.TotalAmount)
		assert.Empty(t, w.Header().Get(IdempotentReplayHeader))
		svc.AssertExpectations(t)
	})

	t.Run("marks replays", func(t *testing.T) {
		result := sampleResult()
		result.Replayed = true
		svc := new(MockSaleService)
		svc.On("ProcessSale", mock.Anything, mock.Anything).Return(result, nil)

		w := postSale(setupSaleRouter(svc), saleBody)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "true", w.Header().Get(IdempotentReplayHeader))
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := new(MockSaleService)

		w := postSale(setupSaleRouter(svc), `{"pos_terminal_id": `)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, string(pos.ErrCodeInvalidPayload), resp.Error)
		svc.AssertNotCalled(t, "ProcessSale", mock.Anything, mock.Anything)
	})

	t.Run("body over the limit while decoding", func(t *testing.T) {
		svc := new(MockSaleService)
		r := setupSaleRouter(svc, middleware.BodyLimit(16))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/sales", bytes.NewBufferString(saleBody))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		svc.AssertNotCalled(t, "ProcessSale", mock.Anything, mock.Anything)
	})

	t.Run("maps sale errors to statuses", func(t *testing.T) {
		cases := []struct {
			err    *pos.SaleError
			status int
		}{
			{pos.NewRateLimitError("T1"), http.StatusTooManyRequests},
			{pos.NewValidationFailedError([]pos.ValidationIssue{{SKU: "A", Error: "Product not found"}}), http.StatusBadRequest},
			{pos.NewInvalidPayloadError("Invalid payload", nil), http.StatusBadRequest},
		}
		for _, tc := range cases {
			svc := new(MockSaleService)
			svc.On("ProcessSale", mock.Anything, mock.Anything).Return(nil, tc.err)

			w := postSale(setupSaleRouter(svc), saleBody)

			assert.Equal(t, tc.status, w.Code, string(tc.err.Code))
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, string(tc.err.Code), resp.Error)
		}
	})

	t.Run("unexpected errors hide their cause", func(t *testing.T) {
		svc := new(MockSaleService)
		svc.On("ProcessSale", mock.Anything, mock.Anything).Return(nil, errors.New("pq: connection refused"))

		w := postSale(setupSaleRouter(svc), saleBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
		assert.Contains(t, w.Body.String(), string(pos.ErrCodeInternal))
	})
}
