package valueobject

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// Identifier is an opaque unique identifier value object.
// It is generated once at creation and never reassigned; aggregates
// reference each other exclusively through identifiers, never through
// embedded object references.
type Identifier struct {
	value uuid.UUID
}

// NewIdentifier generates a new unique identifier
func NewIdentifier() Identifier {
	return Identifier{value: uuid.New()}
}

// ParseIdentifier parses an identifier from its string form
func ParseIdentifier(s string) (Identifier, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Identifier{}, fmt.Errorf("invalid identifier: %w", err)
	}
	return Identifier{value: id}, nil
}

// NilIdentifier returns the zero identifier
func NilIdentifier() Identifier {
	return Identifier{}
}

// Equals returns true if both identifiers are the same value
func (i Identifier) Equals(other Identifier) bool {
	return i.value == other.value
}

// IsNil returns true if the identifier is the zero value
func (i Identifier) IsNil() bool {
	return i.value == uuid.Nil
}

// String returns the canonical string form
func (i Identifier) String() string {
	return i.value.String()
}

// MarshalText implements encoding.TextMarshaler
func (i Identifier) MarshalText() ([]byte, error) {
	return []byte(i.value.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (i *Identifier) UnmarshalText(data []byte) error {
	id, err := uuid.ParseBytes(data)
	if err != nil {
		return fmt.Errorf("invalid identifier: %w", err)
	}
	i.value = id
	return nil
}

// Value implements driver.Valuer for database storage
func (i Identifier) Value() (driver.Value, error) {
	return i.value.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (i *Identifier) Scan(value any) error {
	if value == nil {
		i.value = uuid.Nil
		return nil
	}

	switch v := value.(type) {
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return fmt.Errorf("invalid identifier value: %w", err)
		}
		i.value = id
	case []byte:
		id, err := uuid.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("invalid identifier value: %w", err)
		}
		i.value = id
	default:
		return fmt.Errorf("cannot scan %T into Identifier", value)
	}
	return nil
}
