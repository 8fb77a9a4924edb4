// Package id provides time-ordered identifiers for orders, movements and deliveries.
package id

import (
	"github.com/google/uuid"
)

// ID is used for every persisted entity.
type ID = uuid.UUID

// New generates a UUIDv7 so rows sort by creation time.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse panics on malformed input. Tests and seed data only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

func Nil() ID { return uuid.Nil }

func IsNil(v ID) bool { return v == uuid.Nil }

