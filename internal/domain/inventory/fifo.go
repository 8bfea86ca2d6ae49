package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchDraw is the quantity taken from one batch by a FIFO plan.
type BatchDraw struct {
	BatchID  uuid.UUID
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
	// Exhausts is true when the draw empties the batch
	Exhausts bool
}

// Cost returns quantity × batch unit cost
func (d BatchDraw) Cost() decimal.Decimal {
	return d.Quantity.Mul(d.UnitCost)
}

// FIFOPlan describes how a requested quantity is satisfied from batches.
type FIFOPlan struct {
	Draws     []BatchDraw
	Shortfall decimal.Decimal
}

// BatchCost returns the cost of all drawn quantities
func (p FIFOPlan) BatchCost() decimal.Decimal {
	total := decimal.Zero
	for _, d := range p.Draws {
		total = total.Add(d.Cost())
	}
	return total
}

// PlanFIFO draws quantity from batches oldest-received first. Batches with no
// stock are skipped; ties on received date keep creation order. Any quantity
// the batches cannot cover is reported as Shortfall.
func PlanFIFO(batches []StockBatch, quantity decimal.Decimal) FIFOPlan {
	sorted := make([]StockBatch, len(batches))
	copy(sorted, batches)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ReceivedAt.Equal(sorted[j].ReceivedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ReceivedAt.Before(sorted[j].ReceivedAt)
	})

	remaining := quantity
	plan := FIFOPlan{}
	for i := range sorted {
		if !remaining.IsPositive() {
			break
		}
		batch := sorted[i]
		if !batch.HasStock() {
			continue
		}
		used := batch.Deduct(remaining)
		remaining = remaining.Sub(used)
		plan.Draws = append(plan.Draws, BatchDraw{
			BatchID:  batch.ID,
			Quantity: used,
			UnitCost: batch.UnitCost,
			Exhausts: batch.Status == BatchStatusConsumed,
		})
	}
	plan.Shortfall = decimal.Max(remaining, decimal.Zero)
	return plan
}
