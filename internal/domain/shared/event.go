package shared

import (
	"time"

	"github.com/facturio/backend/internal/domain/shared/valueobject"
)

// DomainEvent represents an event that occurred in the domain
type DomainEvent interface {
	EventID() valueobject.Identifier
	EventType() string
	OccurredAt() time.Time
	AggregateID() valueobject.Identifier
	AggregateType() string
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID        valueobject.Identifier `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	AggID     valueobject.Identifier `json:"aggregate_id"`
	AggType   string                 `json:"aggregate_type"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() valueobject.Identifier {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the ID of the aggregate that produced this event
func (e *BaseDomainEvent) AggregateID() valueobject.Identifier {
	return e.AggID
}

// AggregateType returns the type of the aggregate
func (e *BaseDomainEvent) AggregateType() string {
	return e.AggType
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(eventType, aggType string, aggID valueobject.Identifier) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        valueobject.NewIdentifier(),
		Type:      eventType,
		Timestamp: time.Now(),
		AggID:     aggID,
		AggType:   aggType,
	}
}
