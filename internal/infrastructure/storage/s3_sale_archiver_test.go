package storage_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/erp/posgateway/internal/domain/pos"
	"github.com/erp/posgateway/internal/infrastructure/config"
	"github.com/erp/posgateway/internal/infrastructure/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type capturedPut struct {
	method      string
	path        string
	contentType string
	body        []byte
}

func newFakeS3(t *testing.T) (*httptest.Server, func() []capturedPut) {
	t.Helper()
	var (
		mu   sync.Mutex
		puts []capturedPut
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		puts = append(puts, capturedPut{
			method:      r.Method,
			path:        r.URL.EscapedPath(),
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		})
		mu.Unlock()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []capturedPut {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedPut(nil), puts...)
	}
}

func testStorageConfig(endpoint string) config.StorageConfig {
	return config.StorageConfig{
		Enabled:      true,
		Endpoint:     endpoint,
		Region:       "us-east-1",
		Bucket:       "pos-archive",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
		Prefix:       "pos-sales/",
	}
}

func TestNewS3SaleArchiver_RequiresBucket(t *testing.T) {
	cfg := testStorageConfig("http://localhost:9000")
	cfg.Bucket = ""
	_, err := storage.NewS3SaleArchiver(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket is required")
}

func TestS3SaleArchiver_ObjectKey(t *testing.T) {
	archiver, err := storage.NewS3SaleArchiver(context.Background(), testStorageConfig("localhost:9000"), zaptest.NewLogger(t))
	require.NoError(t, err)

	payload := &pos.SalePayload{TerminalID: "T1", TransactionID: "TX/001"}
	result := &pos.SaleResult{Timestamp: time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("X", -2*3600))}
	assert.Equal(t, "pos-sales/2024/03/10/T1/TX%2F001.json", archiver.ObjectKey(payload, result))

	anon := &pos.SalePayload{TransactionID: "TX-2"}
	assert.Equal(t, "pos-sales/2024/03/10/anonymous/TX-2.json", archiver.ObjectKey(anon, result))
}

func TestS3SaleArchiver_Archive(t *testing.T) {
	srv, puts := newFakeS3(t)
	archiver, err := storage.NewS3SaleArchiver(context.Background(), testStorageConfig(srv.URL), zaptest.NewLogger(t))
	require.NoError(t, err)

	payload := &pos.SalePayload{
		TerminalID:    "T1",
		TransactionID: "TX-100",
		PaymentMethod: "cash",
		AmountPaid:    decimal.NewFromInt(22),
		Items: []pos.SaleLineItem{
			{SKU: "A", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(10), TaxRate: decimal.NewFromInt(10)},
		},
	}
	result := &pos.SaleResult{
		InvoiceNumber: "INV-POS-20240101-ABC123",
		TotalAmount:   decimal.NewFromInt(22),
		Timestamp:     time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, archiver.Archive(context.Background(), payload, result))

	got := puts()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodPut, got[0].method)
	assert.Equal(t, "/pos-archive/pos-sales/2024/01/01/T1/TX-100.json", got[0].path)
	assert.Equal(t, "application/json", got[0].contentType)

	var doc struct {
		Payload map[string]any `json:"payload"`
		Result  map[string]any `json:"result"`
	}
	require.NoError(t, json.Unmarshal(got[0].body, &doc))
	assert.Equal(t, "TX-100", doc.Payload["transaction_id"])
	assert.Equal(t, "INV-POS-20240101-ABC123", doc.Result["erp_invoice_number"])
}

func TestS3SaleArchiver_ArchiveRejectsNil(t *testing.T) {
	archiver, err := storage.NewS3SaleArchiver(context.Background(), testStorageConfig("localhost:9000"), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Error(t, archiver.Archive(context.Background(), nil, &pos.SaleResult{}))
}
