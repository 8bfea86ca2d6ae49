package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBatch(t *testing.T, qty, cost int64, received time.Time) StockBatch {
	t.Helper()
	b, err := NewStockBatch(uuid.New(), "B", decimal.NewFromInt(qty), decimal.NewFromInt(cost), received)
	require.NoError(t, err)
	return *b
}

func TestPlanFIFO(t *testing.T) {
	now := time.Now()
	oldest := newBatch(t, 5, 2, now.Add(-48*time.Hour))
	middle := newBatch(t, 5, 3, now.Add(-24*time.Hour))
	newest := newBatch(t, 5, 4, now)

	t.Run("depletes oldest first regardless of input order", func(t *testing.T) {
		plan := PlanFIFO([]StockBatch{newest, oldest, middle}, decimal.NewFromInt(7))
		require.Len(t, plan.Draws, 2)
		assert.Equal(t, oldest.ID, plan.Draws[0].BatchID)
		assert.True(t, plan.Draws[0].Quantity.Equal(decimal.NewFromInt(5)))
		assert.True(t, plan.Draws[0].Exhausts)
		assert.Equal(t, middle.ID, plan.Draws[1].BatchID)
		assert.True(t, plan.Draws[1].Quantity.Equal(decimal.NewFromInt(2)))
		assert.False(t, plan.Draws[1].Exhausts)
		assert.True(t, plan.Shortfall.IsZero())
		// 5*2 + 2*3
		assert.True(t, plan.BatchCost().Equal(decimal.NewFromInt(16)))
	})

	t.Run("does not mutate caller batches", func(t *testing.T) {
		batches := []StockBatch{oldest}
		PlanFIFO(batches, decimal.NewFromInt(3))
		assert.True(t, batches[0].QuantityRemaining.Equal(decimal.NewFromInt(5)))
	})

	t.Run("reports shortfall when batches run out", func(t *testing.T) {
		plan := PlanFIFO([]StockBatch{oldest, middle}, decimal.NewFromInt(12))
		assert.Len(t, plan.Draws, 2)
		assert.True(t, plan.Shortfall.Equal(decimal.NewFromInt(2)))
	})

	t.Run("skips consumed batches", func(t *testing.T) {
		consumed := newBatch(t, 5, 1, now.Add(-72*time.Hour))
		consumed.Deduct(decimal.NewFromInt(5))
		plan := PlanFIFO([]StockBatch{consumed, newest}, decimal.NewFromInt(1))
		require.Len(t, plan.Draws, 1)
		assert.Equal(t, newest.ID, plan.Draws[0].BatchID)
	})

	t.Run("no batches", func(t *testing.T) {
		plan := PlanFIFO(nil, decimal.NewFromInt(3))
		assert.Empty(t, plan.Draws)
		assert.True(t, plan.Shortfall.Equal(decimal.NewFromInt(3)))
	})
}

func TestStockBatch_Deduct(t *testing.T) {
	b := newBatch(t, 4, 1, time.Now())
	assert.True(t, b.Deduct(decimal.NewFromInt(3)).Equal(decimal.NewFromInt(3)))
	assert.Equal(t, BatchStatusActive, b.Status)
	assert.True(t, b.Deduct(decimal.NewFromInt(3)).Equal(decimal.NewFromInt(1)))
	assert.Equal(t, BatchStatusConsumed, b.Status)
	assert.True(t, b.QuantityRemaining.IsZero())
	assert.False(t, b.HasStock())
}

func TestPlanLevelDraws(t *testing.T) {
	pid := uuid.New()
	a := *NewStockLevel(pid, "A", decimal.NewFromInt(2))
	b := *NewStockLevel(pid, "B", decimal.Zero)
	c := *NewStockLevel(pid, "C", decimal.NewFromInt(5))

	draws, remaining := PlanLevelDraws([]StockLevel{a, b, c}, decimal.NewFromInt(4))
	require.Len(t, draws, 2)
	assert.Equal(t, "A", draws[0].LocationCode)
	assert.True(t, draws[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "C", draws[1].LocationCode)
	assert.True(t, draws[1].Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, remaining.IsZero())

	_, remaining = PlanLevelDraws([]StockLevel{a}, decimal.NewFromInt(3))
	assert.True(t, remaining.Equal(decimal.NewFromInt(1)))
}

func TestNewSaleTransaction(t *testing.T) {
	tx := NewSaleTransaction(uuid.New(), nil, decimal.NewFromInt(3), decimal.NewFromInt(4), "invoice", uuid.New(), time.Now())
	assert.True(t, tx.Quantity.Equal(decimal.NewFromInt(-3)))
	assert.True(t, tx.TotalCost.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, TransactionTypeSale, tx.Type)
}
