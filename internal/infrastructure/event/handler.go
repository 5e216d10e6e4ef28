package event

import (
	"context"
	"time"

	"github.com/qms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// HandlerFunc adapts a function to shared.EventHandler
type HandlerFunc struct {
	fn         func(ctx context.Context, event shared.DomainEvent) error
	eventTypes []string
}

// NewHandlerFunc wraps fn; no event types means every event
func NewHandlerFunc(fn func(ctx context.Context, event shared.DomainEvent) error, eventTypes ...string) *HandlerFunc {
	return &HandlerFunc{fn: fn, eventTypes: eventTypes}
}

// Handle calls the wrapped function
func (h *HandlerFunc) Handle(ctx context.Context, event shared.DomainEvent) error {
	return h.fn(ctx, event)
}

// EventTypes returns the subscribed event types
func (h *HandlerFunc) EventTypes() []string {
	return h.eventTypes
}

// AuditHandler writes one structured log entry per domain event.
// It subscribes to every event type.
type AuditHandler struct {
	logger *zap.Logger
}

// NewAuditHandler creates an audit handler logging to logger
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHandler{logger: logger.Named("audit")}
}

// Handle logs the event envelope and payload
func (h *AuditHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt().UTC().Truncate(time.Millisecond)),
		zap.Any("payload", event),
	)
	return nil
}

// EventTypes returns nil so the handler receives all events
func (h *AuditHandler) EventTypes() []string {
	return nil
}

var (
	_ shared.EventHandler = (*HandlerFunc)(nil)
	_ shared.EventHandler = (*AuditHandler)(nil)
)
