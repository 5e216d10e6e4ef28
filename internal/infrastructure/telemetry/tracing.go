package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer and meter of every business span and instrument
const TracerName = "qms-backend"

// Span attribute keys. The ERP provider and entity type reuse the metric keys.
var (
	AttrSupplierID   = attribute.Key("supplier_id")
	AttrCustomerID   = attribute.Key("customer_id")
	AttrInspectionID = attribute.Key("inspection_id")
	AttrBatchSize    = attribute.Key("erp.batch_size")
)

// StartServiceSpan starts an internal span named "{service}.{method}" carrying attrs.
// Pair it with EndSpan:
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "supplier", "update", telemetry.AttrSupplierID.String(id.String()))
//	defer func() { telemetry.EndSpan(span, err) }()
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError marks the span failed with err
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// EndSpan sets the final status from err and ends the span
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		RecordError(span, err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
