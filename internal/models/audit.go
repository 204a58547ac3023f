package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry records one change of a versioned source field. Values are
// JSON documents so any scalar field type fits.
type AuditEntry struct {
	ID            uuid.UUID
	SourceID      uuid.UUID
	TranslationID uuid.UUID
	FieldName     string
	OldValue      []byte
	NewValue      []byte
	LoggedAt      time.Time
}
