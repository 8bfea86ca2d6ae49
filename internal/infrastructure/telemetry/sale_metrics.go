package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SaleMetrics records sale ingestion outcomes.
type SaleMetrics struct {
	sales    metric.Int64Counter
	duration metric.Float64Histogram
	replays  metric.Int64Counter
	cogs     metric.Int64Counter
}

func NewSaleMetrics(meter metric.Meter) (*SaleMetrics, error) {
	sales, err := meter.Int64Counter("pos.sales.processed",
		metric.WithDescription("Sales processed, by outcome"),
		metric.WithUnit("{sale}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sales counter: %w", err)
	}
	duration, err := meter.Float64Histogram("pos.sales.duration",
		metric.WithDescription("Time spent processing a sale"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	replays, err := meter.Int64Counter("pos.sales.replayed",
		metric.WithDescription("Submissions answered from a completed audit row"),
		metric.WithUnit("{sale}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create replay counter: %w", err)
	}
	cogs, err := meter.Int64Counter("pos.sales.cogs_postings",
		metric.WithDescription("COGS evaluations, split by zero cost"),
		metric.WithUnit("{sale}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cogs counter: %w", err)
	}
	return &SaleMetrics{sales: sales, duration: duration, replays: replays, cogs: cogs}, nil
}

// RecordSale counts one sale under outcome, an error code or "completed".
func (m *SaleMetrics) RecordSale(ctx context.Context, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.sales.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(d)/float64(time.Millisecond), attrs)
}

func (m *SaleMetrics) RecordReplay(ctx context.Context) {
	m.replays.Add(ctx, 1)
}

func (m *SaleMetrics) RecordCOGS(ctx context.Context, zeroCost bool) {
	m.cogs.Add(ctx, 1, metric.WithAttributes(attribute.Bool("zero_cost", zeroCost)))
}
