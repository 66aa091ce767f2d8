package event

import (
	"sync"

	"github.com/facturio/backend/internal/domain/shared"
)

// wildcardKey indexes handlers subscribed to every event type. Domain
// events always carry a non-empty type, so the key cannot collide.
const wildcardKey = ""

// HandlerRegistry tracks which handlers receive which event types.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
}

// NewHandlerRegistry creates an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string][]shared.EventHandler),
	}
}

// Register subscribes a handler to the given event types. With no types
// the handler becomes a wildcard and receives everything.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = []string{wildcardKey}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, eventType := range eventTypes {
		r.handlers[eventType] = append(r.handlers[eventType], handler)
	}
}

// Unregister drops a handler from every subscription, wildcard included.
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for eventType, handlers := range r.handlers {
		kept := handlers[:0]
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		if len(kept) == 0 {
			delete(r.handlers, eventType)
		} else {
			r.handlers[eventType] = kept
		}
	}
}

// GetHandlers returns the handlers subscribed to eventType plus every
// wildcard handler.
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typed := r.handlers[eventType]
	wildcard := r.handlers[wildcardKey]

	result := make([]shared.EventHandler, 0, len(typed)+len(wildcard))
	result = append(result, typed...)
	result = append(result, wildcard...)
	return result
}

// GetAllHandlers returns every registered handler once, regardless of
// how many types it subscribed to.
func (r *HandlerRegistry) GetAllHandlers() []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[shared.EventHandler]bool)
	result := make([]shared.EventHandler, 0, len(r.handlers))
	for _, handlers := range r.handlers {
		for _, h := range handlers {
			if !seen[h] {
				seen[h] = true
				result = append(result, h)
			}
		}
	}
	return result
}
