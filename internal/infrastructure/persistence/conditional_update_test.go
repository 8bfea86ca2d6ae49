package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/posgateway/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockGormDB opens GORM on a mocked postgres connection
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormStockBatchRepository_Decrement(t *testing.T) {
	const updateBatch = `UPDATE "inventory_batches" SET "quantity_remaining"=quantity_remaining - \$1,"status"=CASE WHEN quantity_remaining - \$2 <= 0 THEN \$3 ELSE status END`

	t.Run("decrements when enough stock remains", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectExec(updateBatch).WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewGormStockBatchRepository(db).Decrement(context.Background(), uuid.New(), decimal.NewFromInt(3))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a conflict when no row matched", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectExec(updateBatch).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewGormStockBatchRepository(db).Decrement(context.Background(), uuid.New(), decimal.NewFromInt(3))
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("passes database errors through", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectExec(updateBatch).WillReturnError(errors.New("connection reset"))

		err := NewGormStockBatchRepository(db).Decrement(context.Background(), uuid.New(), decimal.NewFromInt(3))
		assert.EqualError(t, err, "connection reset")
	})
}

func TestGormStockLevelRepository_Decrement(t *testing.T) {
	const updateLevel = `UPDATE "stock_levels" SET "quantity_on_hand"=quantity_on_hand - \$1`

	t.Run("decrements the level", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectExec(updateLevel).WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewGormStockLevelRepository(db).Decrement(context.Background(), uuid.New(), decimal.NewFromInt(2))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refuses to go below zero", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectExec(updateLevel).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewGormStockLevelRepository(db).Decrement(context.Background(), uuid.New(), decimal.NewFromInt(2))
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestGormBankAccountRepository_IncrementBalance(t *testing.T) {
	const updateBalance = `UPDATE "bank_accounts" SET "balance"=balance \+ \$1`

	t.Run("adds to the balance", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectExec(updateBalance).WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewGormBankAccountRepository(db).IncrementBalance(context.Background(), uuid.New(), decimal.NewFromInt(22))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown account", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectExec(updateBalance).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewGormBankAccountRepository(db).IncrementBalance(context.Background(), uuid.New(), decimal.NewFromInt(22))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrRecordNotFound), shared.ErrNotFound)
	assert.ErrorIs(t, translateError(gorm.ErrDuplicatedKey), shared.ErrDuplicate)

	other := errors.New("boom")
	assert.Equal(t, other, translateError(other))
}
