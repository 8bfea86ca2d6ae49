//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erp/posgateway/internal/domain/inventory"
	"github.com/erp/posgateway/internal/domain/pos"
	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/erp/posgateway/internal/infrastructure/migration"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	_ "github.com/lib/pq"
)

// newPostgresDB starts a disposable postgres and applies the SQL migrations
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	migrator, err := migration.New(sqlDB, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, migrator.Up())

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	return db
}

func TestPostgres_CompletedSaleLogIsUnique(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	repo := NewGormSaleLogRepository(db)
	now := time.Now().UTC()

	p := &pos.SalePayload{TerminalID: "T1", TransactionID: "TX-PG", PaymentMethod: "cash"}
	result := &pos.SaleResult{InvoiceNumber: "INV-POS-PG", InvoiceID: uuid.New(), Timestamp: now}

	first, err := pos.NewCompletedSaleLog(p, result, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, err := pos.NewCompletedSaleLog(p, result, now)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, second), shared.ErrDuplicate)
}

func TestPostgres_BatchDecrementIsConditional(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	repo := NewGormStockBatchRepository(db)

	batch, err := inventory.NewStockBatch(uuid.New(), "B1", decimal.NewFromInt(3), decimal.NewFromInt(2), time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, batch))

	require.NoError(t, repo.Decrement(ctx, batch.ID, decimal.NewFromInt(2)))
	assert.ErrorIs(t, repo.Decrement(ctx, batch.ID, decimal.NewFromInt(2)), shared.ErrConcurrencyConflict)
	require.NoError(t, repo.Decrement(ctx, batch.ID, decimal.NewFromInt(1)))

	remaining, err := repo.FindActiveByProduct(ctx, batch.ProductID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
