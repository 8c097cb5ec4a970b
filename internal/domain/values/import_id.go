// Package values contains domain value objects that encapsulate
// primitive types with validation and such.
package values

import (
	"fmt"

	"github.com/google/uuid"
)

// ImportID identifies a single validate/import run. It is stamped on the
// validation report and on the batch produced by validation, and appears in
// log lines so operators can correlate a report with the import that used it.
type ImportID struct {
	value uuid.UUID
}

// NewImportID creates a new random import ID
func NewImportID() ImportID {
	return ImportID{value: uuid.New()}
}

// ParseImportID parses a string into an ImportID
func ParseImportID(s string) (ImportID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ImportID{}, fmt.Errorf("invalid import ID: %w", err)
	}
	return ImportID{value: id}, nil
}

// MustParseImportID parses a string or panics (for tests only)
func MustParseImportID(s string) ImportID {
	id, err := ParseImportID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation
func (i ImportID) String() string {
	return i.value.String()
}

// IsZero returns true if this is the zero value
func (i ImportID) IsZero() bool {
	return i.value == uuid.Nil
}

// Equals checks if two ImportIDs are equal
func (i ImportID) Equals(other ImportID) bool {
	return i.value == other.value
}

// MarshalText implements encoding.TextMarshaler so the ID renders as a
// plain string in JSON and YAML reports.
func (i ImportID) MarshalText() ([]byte, error) {
	return []byte(i.value.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (i *ImportID) UnmarshalText(data []byte) error {
	id, err := ParseImportID(string(data))
	if err != nil {
		return err
	}
	*i = id
	return nil
}
