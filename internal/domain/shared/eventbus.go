package shared

import "context"

// EventHandler is a consumer of domain events.
//
// EventTypes narrows what the handler is delivered. Returning an empty
// slice subscribes the handler to every event on the bus.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher is the write side of the bus. Implementations may
// deliver in-process or stage events through the transactional outbox.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber is the read side of the bus. Passing no event types
// on Subscribe falls back to the handler's own EventTypes.
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is a publisher and subscriber in one.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
