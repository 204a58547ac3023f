// Package models defines the persisted entities of the content store:
// schema definitions, the node tree, localized sources, attributes and
// realms. Relations are expressed as ids, never as object pointers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Timestamps carries audit timestamps shared by most entities.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch sets both timestamps on creation, or only UpdatedAt afterwards.
func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// UUIDPtr returns a pointer to a copy of id.
func UUIDPtr(id uuid.UUID) *uuid.UUID {
	return &id
}

// SameParent reports whether two optional parent ids denote the same parent.
func SameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
