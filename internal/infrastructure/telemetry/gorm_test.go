package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/qms/backend/internal/infrastructure/config"
	"github.com/qms/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"size:50"`
}

type instrumentedDB struct {
	db     *gorm.DB
	reader *sdkmetric.ManualReader
	spans  *tracetest.SpanRecorder
}

func setupInstrumentedDB(t *testing.T, cfg config.TelemetryConfig) instrumentedDB {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&widget{}))

	inst, err := telemetry.NewGormInstrumentation(cfg, meter, nil, telemetry.WithTracerProvider(tp))
	require.NoError(t, err)
	require.NoError(t, db.Use(inst))

	t.Cleanup(func() {
		_ = inst.Close()
		_ = tp.Shutdown(context.Background())
		_ = sqlDB.Close()
	})
	return instrumentedDB{db: db, reader: reader, spans: sr}
}

func queryCounts(t *testing.T, data metricdata.Aggregation) map[string]int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok)
	out := map[string]int64{}
	for _, dp := range sum.DataPoints {
		op, _ := dp.Attributes.Value(attribute.Key("db.operation"))
		table, _ := dp.Attributes.Value(attribute.Key("db.table"))
		out[op.AsString()+" "+table.AsString()] += dp.Value
	}
	return out
}

func TestGormInstrumentation_RecordsQueries(t *testing.T) {
	env := setupInstrumentedDB(t, config.TelemetryConfig{DBSlowQueryThresh: time.Hour})
	ctx := context.Background()

	require.NoError(t, env.db.WithContext(ctx).Create(&widget{Code: "W1"}).Error)
	require.NoError(t, env.db.WithContext(ctx).Create(&widget{Code: "W2"}).Error)
	var found []widget
	require.NoError(t, env.db.WithContext(ctx).Find(&found).Error)
	require.NoError(t, env.db.WithContext(ctx).Model(&widget{}).Where("code = ?", "W1").Update("code", "W9").Error)
	require.NoError(t, env.db.WithContext(ctx).Exec("DELETE FROM widgets WHERE code = ?", "W2").Error)

	data := collect(t, env.reader)
	counts := queryCounts(t, data["db_query_total"])
	assert.Equal(t, int64(2), counts["INSERT widgets"])
	assert.Equal(t, int64(1), counts["SELECT widgets"])
	assert.Equal(t, int64(1), counts["UPDATE widgets"])
	assert.Equal(t, int64(1), counts["DELETE unknown"])

	hist, ok := data["db_query_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	var observed uint64
	for _, dp := range hist.DataPoints {
		observed += dp.Count
	}
	assert.Equal(t, uint64(5), observed)

	assert.Empty(t, env.spans.Ended())
}

func TestGormInstrumentation_SlowQueries(t *testing.T) {
	env := setupInstrumentedDB(t, config.TelemetryConfig{DBSlowQueryThresh: time.Nanosecond})

	require.NoError(t, env.db.Create(&widget{Code: "W1"}).Error)

	counts := queryCounts(t, collect(t, env.reader)["db_slow_query_total"])
	assert.Equal(t, int64(1), counts["INSERT widgets"])
}

func TestGormInstrumentation_PoolGauge(t *testing.T) {
	env := setupInstrumentedDB(t, config.TelemetryConfig{})

	gauge, ok := collect(t, env.reader)["db_pool_connections"].(metricdata.Gauge[int64])
	require.True(t, ok)
	states := map[string]bool{}
	for _, dp := range gauge.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("db.pool.state"))
		states[v.AsString()] = true
	}
	assert.Equal(t, map[string]bool{"idle": true, "in_use": true, "max": true}, states)
}

func TestGormInstrumentation_Tracing(t *testing.T) {
	env := setupInstrumentedDB(t, config.TelemetryConfig{DBTraceEnabled: true})

	require.NoError(t, env.db.WithContext(context.Background()).Create(&widget{Code: "W1"}).Error)

	assert.NotEmpty(t, env.spans.Ended())
}

func TestGormInstrumentation_Name(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	inst, err := telemetry.NewGormInstrumentation(config.TelemetryConfig{}, meter, nil)
	require.NoError(t, err)

	var _ gorm.Plugin = inst
	assert.Equal(t, "qms:telemetry", inst.Name())
	assert.NoError(t, inst.Close())
}
