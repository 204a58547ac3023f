package models

import (
	"time"

	"github.com/google/uuid"
)

// FieldValues holds the scalar, schema-defined values of a source, keyed by
// field name. Reference-typed fields never appear here; they live in side rows.
type FieldValues map[string]any

// Clone returns a shallow copy of v; slice values are copied too.
func (v FieldValues) Clone() FieldValues {
	if v == nil {
		return FieldValues{}
	}
	c := make(FieldValues, len(v))
	for k, val := range v {
		if list, ok := val.([]string); ok {
			val = append([]string(nil), list...)
		}
		c[k] = val
	}
	return c
}

// NodesSources is the localized payload of one node in one translation.
// Discriminator names the NodeType whose Descriptor governs Fields.
type NodesSources struct {
	ID              uuid.UUID
	NodeID          uuid.UUID
	TranslationID   uuid.UUID
	Title           string
	PublishedAt     *time.Time
	MetaTitle       string
	MetaDescription string
	NoIndex         bool
	Discriminator   string
	Fields          FieldValues
	Timestamps
}

// NodesSourcesDocuments attaches a document to a source under a field name.
type NodesSourcesDocuments struct {
	ID         uuid.UUID
	SourceID   uuid.UUID
	DocumentID uuid.UUID
	FieldName  string
	Position   float64
}

// NodesToNodes is an ordered, typed edge between two nodes under a field name.
type NodesToNodes struct {
	ID        uuid.UUID
	NodeAID   uuid.UUID
	NodeBID   uuid.UUID
	FieldName string
	Position  float64
}

// NodesCustomForms links a node to a custom form under a field name.
type NodesCustomForms struct {
	ID           uuid.UUID
	NodeID       uuid.UUID
	CustomFormID uuid.UUID
	FieldName    string
	Position     float64
}

// UrlAlias is an alternative, unique path segment for a source.
type UrlAlias struct {
	ID       uuid.UUID
	SourceID uuid.UUID
	Alias    string
}

// SortOption is a listing sort: a field path and a direction.
type SortOption struct {
	Field     string
	Direction string
}
