package model

import (
	"strings"

	"github.com/google/uuid"
)

// PlaceholderPrefix marks ids of records predicted locally but not yet confirmed
const PlaceholderPrefix = "temp-"

// NewPlaceholderID returns a fresh id for a predicted record
func NewPlaceholderID() string {
	return PlaceholderPrefix + uuid.New().String()
}

// IsPlaceholderID reports whether id belongs to a predicted record
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}

// DropPlaceholders returns items without predicted records, preserving order
func DropPlaceholders[E any](items []E, id func(E) string) []E {
	if items == nil {
		return nil
	}
	kept := make([]E, 0, len(items))
	for _, item := range items {
		if IsPlaceholderID(id(item)) {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}
