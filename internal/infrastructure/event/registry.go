package event

import (
	"reflect"
	"slices"
	"sync"

	"github.com/qms/backend/internal/domain/shared"
)

// SubscriptionID identifies one registration in a HandlerRegistry
type SubscriptionID uint64

type subscription struct {
	id       SubscriptionID
	handler  shared.EventHandler
	wildcard bool
	types    map[string]struct{}
}

func (s *subscription) matches(eventType string) bool {
	if s.wildcard {
		return true
	}
	_, ok := s.types[eventType]
	return ok
}

// HandlerRegistry maps event types to handlers. Handlers registered without
// event types receive every event.
//
// Subscriptions are keyed by a generated SubscriptionID, so any handler type
// can be registered. Handlers whose dynamic type is not comparable (a struct
// holding a func, for instance) cannot be recognised again by value: each
// Register of such a handler creates a new subscription and Unregister does
// not find it; use Remove with the returned ID instead.
type HandlerRegistry struct {
	mu     sync.RWMutex
	nextID SubscriptionID
	subs   []*subscription
}

// NewHandlerRegistry creates a new handler registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{}
}

// Register adds a handler for the given event types and returns its
// subscription ID. Registering a handler that is already known merges the
// event types into its existing subscription.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) SubscriptionID {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub := r.find(handler)
	if sub == nil {
		r.nextID++
		sub = &subscription{
			id:      r.nextID,
			handler: handler,
			types:   make(map[string]struct{}, len(eventTypes)),
		}
		r.subs = append(r.subs, sub)
	}
	if len(eventTypes) == 0 {
		sub.wildcard = true
	}
	for _, eventType := range eventTypes {
		sub.types[eventType] = struct{}{}
	}
	return sub.id
}

// Unregister removes a handler from all event types
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs = slices.DeleteFunc(r.subs, func(s *subscription) bool { return sameHandler(s.handler, handler) })
}

// Remove drops the subscription with the given ID, reporting whether it existed
func (r *HandlerRegistry) Remove(id SubscriptionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.subs)
	r.subs = slices.DeleteFunc(r.subs, func(s *subscription) bool { return s.id == id })
	return len(r.subs) != n
}

// GetHandlers returns the handlers subscribed to eventType in registration
// order, each subscription at most once
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]shared.EventHandler, 0, len(r.subs))
	for _, s := range r.subs {
		if s.matches(eventType) {
			result = append(result, s.handler)
		}
	}
	return result
}

// Len returns the number of subscriptions
func (r *HandlerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

func (r *HandlerRegistry) find(handler shared.EventHandler) *subscription {
	for _, s := range r.subs {
		if sameHandler(s.handler, handler) {
			return s
		}
	}
	return nil
}

// sameHandler compares handlers with == only when their dynamic type allows
// it; comparing non-comparable interface values panics.
func sameHandler(a, b shared.EventHandler) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}
