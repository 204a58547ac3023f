package models

import "github.com/google/uuid"

// Tag is a reusable label; TagName is a unique slug.
type Tag struct {
	ID       uuid.UUID
	TagName  string
	ParentID *uuid.UUID
	Color    string
	Visible  bool
	Locked   bool
	Position float64
	Timestamps
}

// TagTranslation holds a tag's localized name.
type TagTranslation struct {
	ID            uuid.UUID
	TagID         uuid.UUID
	TranslationID uuid.UUID
	Name          string
	Description   string
}

// NodesTags is the ordered join between a node and a tag.
type NodesTags struct {
	ID       uuid.UUID
	NodeID   uuid.UUID
	TagID    uuid.UUID
	Position float64
}
