package telemetry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/qms/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

type queryStartKey struct{}

// GormInstrumentation is a GORM plugin recording query spans through
// otelgorm, query counters and latency histograms, and connection pool
// gauges.
type GormInstrumentation struct {
	traceEnabled   bool
	fullSQL        bool
	slowThreshold  time.Duration
	tracerProvider trace.TracerProvider
	meter          metric.Meter
	logger         *zap.Logger

	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	poolGauge      metric.Int64ObservableGauge
	registration   metric.Registration
}

// GormOption configures a GormInstrumentation
type GormOption func(*GormInstrumentation)

// WithTracerProvider overrides the global tracer provider used for query spans
func WithTracerProvider(tp trace.TracerProvider) GormOption {
	return func(g *GormInstrumentation) {
		g.tracerProvider = tp
	}
}

// NewGormInstrumentation creates the instruments on meter. Query spans are
// only recorded when cfg.DBTraceEnabled is set.
func NewGormInstrumentation(cfg config.TelemetryConfig, meter metric.Meter, logger *zap.Logger, opts ...GormOption) (*GormInstrumentation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &GormInstrumentation{
		traceEnabled:  cfg.DBTraceEnabled,
		fullSQL:       cfg.DBLogFullSQL,
		slowThreshold: cfg.DBSlowQueryThresh,
		meter:         meter,
		logger:        logger,
	}
	if g.slowThreshold <= 0 {
		g.slowThreshold = defaultSlowQueryThreshold
	}
	for _, opt := range opts {
		opt(g)
	}

	var err error
	if g.queryTotal, err = NewCounter(meter, "db_query_total", "Total number of database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if g.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total", "Queries slower than the configured threshold", "{query}"); err != nil {
		return nil, err
	}
	g.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency distribution in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	g.poolGauge, err = meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Name implements gorm.Plugin
func (g *GormInstrumentation) Name() string {
	return "qms:telemetry"
}

// Initialize implements gorm.Plugin
func (g *GormInstrumentation) Initialize(db *gorm.DB) error {
	if g.traceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName(db.Dialector.Name())}
		if !g.fullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if g.tracerProvider != nil {
			opts = append(opts, otelgorm.WithTracerProvider(g.tracerProvider))
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
	}

	cb := db.Callback()
	hooks := []struct {
		name   string
		verb   string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"create", "INSERT", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", "SELECT", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", "UPDATE", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", "DELETE", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", "", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", "", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, h := range hooks {
		verb := h.verb
		if err := h.before("qms_telemetry:before_"+h.name, markQueryStart); err != nil {
			return err
		}
		if err := h.after("qms_telemetry:after_"+h.name, func(tx *gorm.DB) { g.record(tx, verb) }); err != nil {
			return err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	g.registration, err = g.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(g.poolGauge, int64(stats.Idle), metric.WithAttributes(AttrDBPoolState.String("idle")))
		o.ObserveInt64(g.poolGauge, int64(stats.InUse), metric.WithAttributes(AttrDBPoolState.String("in_use")))
		o.ObserveInt64(g.poolGauge, int64(stats.MaxOpenConnections), metric.WithAttributes(AttrDBPoolState.String("max")))
		return nil
	}, g.poolGauge)
	if err != nil {
		return err
	}

	g.logger.Info("Database instrumentation enabled",
		zap.Bool("tracing", g.traceEnabled),
		zap.Bool("full_sql", g.fullSQL),
		zap.Duration("slow_query_threshold", g.slowThreshold),
	)
	return nil
}

// Close stops observing the connection pool
func (g *GormInstrumentation) Close() error {
	if g.registration == nil {
		return nil
	}
	return g.registration.Unregister()
}

func markQueryStart(tx *gorm.DB) {
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tx.Statement.Context = context.WithValue(ctx, queryStartKey{}, time.Now())
}

func (g *GormInstrumentation) record(tx *gorm.DB, verb string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if verb == "" {
		verb = detectOperation(tx.Statement.SQL.String())
	}
	table := tx.Statement.Table
	if table == "" {
		table = "unknown"
	}
	attrs := []attribute.KeyValue{AttrDBOperation.String(verb), AttrDBTable.String(table)}

	g.queryTotal.Inc(ctx, attrs...)
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	g.queryDuration.RecordDuration(ctx, elapsed, attrs...)

	span := trace.SpanFromContext(ctx)
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		RecordError(span, tx.Error)
	}
	if elapsed > g.slowThreshold {
		g.slowQueryTotal.Inc(ctx, attrs...)
		span.SetAttributes(attribute.Bool("db.slow_query", true))
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", g.slowThreshold.Milliseconds()),
		))
	}
}

func detectOperation(sql string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	switch verb = strings.ToUpper(verb); verb {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return verb
	case "":
		return "UNKNOWN"
	default:
		return "OTHER"
	}
}
