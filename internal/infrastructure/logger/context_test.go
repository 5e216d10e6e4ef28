package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	log := zap.NewExample()
	assert.Same(t, log, FromContext(WithContext(context.Background(), log)))

	wrong := context.WithValue(context.Background(), loggerKey, "not a logger")
	assert.NotNil(t, FromContext(wrong))
}

func TestWithImportRun(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx, _ := WithImportRun(context.Background(), zap.New(core), "run-42", "SAP")

	assert.Equal(t, "run-42", GetImportRunID(ctx))
	assert.Equal(t, "SAP", GetProvider(ctx))
	assert.Empty(t, GetProvider(context.Background()))

	L(ctx).Info("batch done")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "run-42", fields["import_run_id"])
	assert.Equal(t, "SAP", fields["erp_provider"])
}

func TestTraceIDs(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))

	ctx := spanContext(t)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))
	assert.Equal(t, "00f067aa0ba902b7", GetSpanID(ctx))
}

func TestWithTraceContext(t *testing.T) {
	log := zap.NewNop()
	assert.Same(t, log, WithTraceContext(context.Background(), log))

	core, logs := observer.New(zapcore.InfoLevel)
	WithTraceContext(spanContext(t), zap.New(core)).Info("traced")
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
}

func TestContextLogger_DoesNotDuplicateTaggedFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx, _ := WithImportRun(spanContext(t), zap.New(core), "run-7", "SAP")

	L(ctx).With(zap.String("code", "V001")).Warn("import skipped")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	count := 0
	for _, f := range entry.Context {
		if f.Key == "import_run_id" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, "V001", entry.ContextMap()["code"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry.ContextMap()["trace_id"])
}

func TestWithLogger_AddsCorrelationFromContext(t *testing.T) {
	ctx, _ := WithImportRun(context.Background(), zap.NewNop(), "run-9", "ORACLE")

	core, logs := observer.New(zapcore.DebugLevel)
	cl := WithLogger(ctx, zap.New(core))
	cl.Debug("d")
	cl.Error("e")

	require.Equal(t, 2, logs.Len())
	for _, entry := range logs.All() {
		assert.Equal(t, "run-9", entry.ContextMap()["import_run_id"])
		assert.Equal(t, "ORACLE", entry.ContextMap()["erp_provider"])
	}
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := WithLogger(context.Background(), nil)
	assert.NotPanics(t, func() {
		cl.Info("nothing")
		cl.With(zap.Int("n", 1)).Warn("still nothing")
	})
	assert.NotNil(t, cl.Zap())
}
