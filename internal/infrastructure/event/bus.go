package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/qms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusStopped is returned by Publish once Stop has been called
var ErrBusStopped = errors.New("event bus is stopped")

// InMemoryEventBus implements EventBus with in-memory pub/sub.
// Every handler runs on its own goroutine; Publish returns as soon as the
// handlers are dispatched and never reports handler failures.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	timeout  time.Duration

	mu      sync.RWMutex // guards stopped against in-flight wg.Add
	stopped bool
	wg      sync.WaitGroup
}

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithHandlerTimeout bounds each handler invocation; zero means no deadline
func WithHandlerTimeout(d time.Duration) BusOption {
	return func(b *InMemoryEventBus) {
		b.timeout = d
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish dispatches every event to its handlers asynchronously.
// Handlers see a context detached from the caller's cancellation.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.stopped {
		return ErrBusStopped
	}

	handlerCtx := context.WithoutCancel(ctx)
	for _, event := range events {
		if event == nil {
			continue
		}
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			b.wg.Add(1)
			go func(handler shared.EventHandler, event shared.DomainEvent) {
				defer b.wg.Done()
				b.dispatch(handlerCtx, handler, event)
			}(handler, event)
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	b.subscribe(handler, eventTypes...)
}

func (b *InMemoryEventBus) subscribe(handler shared.EventHandler, eventTypes ...string) SubscriptionID {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	id := b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Uint64("subscription_id", uint64(id)),
		zap.Strings("event_types", eventTypes),
	)
	return id
}

// On subscribes fn to one event type and returns the subscription ID to pass
// to Off. An empty eventType subscribes to every event.
func (b *InMemoryEventBus) On(eventType string, fn func(ctx context.Context, event shared.DomainEvent) error) SubscriptionID {
	var types []string
	if eventType != "" {
		types = []string{eventType}
	}
	return b.subscribe(NewHandlerFunc(fn, types...), types...)
}

// Off cancels a subscription made with On
func (b *InMemoryEventBus) Off(id SubscriptionID) {
	if b.registry.Remove(id) {
		b.logger.Debug("handler unsubscribed", zap.Uint64("subscription_id", uint64(id)))
	}
}

// Unsubscribe removes a handler. Handlers of a non-comparable type are never
// matched by value.
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	b.stopped = false
	b.mu.Unlock()

	b.logger.Info("event bus started")
	return nil
}

// Stop rejects further publishes and waits for in-flight handlers until ctx
// is done
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stopped before all handlers finished", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

// dispatch runs one handler, logging its error or panic
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Any("panic", r),
			)
		}
	}()

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	if err := handler.Handle(ctx, event); err != nil {
		b.logger.Error("handler failed to process event",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
	}
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
