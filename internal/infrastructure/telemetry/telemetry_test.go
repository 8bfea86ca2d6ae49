package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/erp/posgateway/internal/infrastructure/config"
	"github.com/erp/posgateway/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	cfg := config.TelemetryConfig{ServiceName: "pos-gateway-test"}

	tp, err := telemetry.NewTracerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	tp.EnableSpanProfiles()
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := telemetry.NewLoggerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.Core(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(ctx))

	p, err := telemetry.NewProfiler(config.ProfilingConfig{}, "pos-gateway-test", logger)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresServerAddress(t *testing.T) {
	_, err := telemetry.NewProfiler(config.ProfilingConfig{Enabled: true}, "pos-gateway-test", zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestSaleMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	m, err := telemetry.NewSaleMetrics(provider.Meter("pos"))
	require.NoError(t, err)

	m.RecordSale(ctx, "completed", 12*time.Millisecond)
	m.RecordSale(ctx, "completed", 8*time.Millisecond)
	m.RecordSale(ctx, "VALIDATION_FAILED", 3*time.Millisecond)
	m.RecordReplay(ctx)
	m.RecordCOGS(ctx, true)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	byName := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			byName[metric.Name] = metric
		}
	}

	sales, ok := byName["pos.sales.processed"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	counts := map[string]int64{}
	for _, dp := range sales.DataPoints {
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		counts[outcome.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"completed": 2, "VALIDATION_FAILED": 1}, counts)

	hist, ok := byName["pos.sales.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var total uint64
	for _, dp := range hist.DataPoints {
		total += dp.Count
	}
	assert.Equal(t, uint64(3), total)

	replays, ok := byName["pos.sales.replayed"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, replays.DataPoints, 1)
	assert.Equal(t, int64(1), replays.DataPoints[0].Value)

	cogs, ok := byName["pos.sales.cogs_postings"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, cogs.DataPoints, 1)
	zero, _ := cogs.DataPoints[0].Attributes.Value(attribute.Key("zero_cost"))
	assert.True(t, zero.AsBool())
}

type widget struct {
	ID   uint
	Name string
}

func TestDBTracing_AnnotatesSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))

	cfg := config.TelemetryConfig{DBSlowQueryThresh: -time.Nanosecond}
	require.NoError(t, telemetry.NewDBTracing(cfg, "sqlite", zaptest.NewLogger(t)).Register(db))

	require.NoError(t, db.Create(&widget{Name: "a"}).Error)
	var found []widget
	require.NoError(t, db.Find(&found).Error)
	require.Len(t, found, 1)

	spans := recorder.Ended()
	require.NotEmpty(t, spans)

	var slow, rows bool
	for _, span := range spans {
		for _, kv := range span.Attributes() {
			switch kv.Key {
			case "db.slow_query":
				slow = slow || kv.Value.AsBool()
			case "db.rows_affected":
				rows = true
			}
		}
	}
	assert.True(t, slow)
	assert.True(t, rows)
}

func TestRegisterDBPoolMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(3)

	reg, err := telemetry.RegisterDBPoolMetrics(provider.Meter("db"), sqlDB)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	var maxOpen int64 = -1
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if g, ok := m.Data.(metricdata.Gauge[int64]); ok && m.Name == "db.pool.connections_max" {
				require.Len(t, g.DataPoints, 1)
				maxOpen = g.DataPoints[0].Value
			}
		}
	}
	assert.Equal(t, int64(3), maxOpen)

	require.NoError(t, reg.Unregister())
}
