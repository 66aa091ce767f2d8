package shared

import (
	"time"

	"github.com/facturio/backend/internal/domain/shared/valueobject"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() valueobject.Identifier
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        valueobject.Identifier
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity identifier
func (e *BaseEntity) GetID() valueobject.Identifier {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// Touch updates the modification timestamp
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// NewBaseEntity creates a new base entity with a generated identifier
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        valueobject.NewIdentifier(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
