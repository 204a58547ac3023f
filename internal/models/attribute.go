package models

import "github.com/google/uuid"

// AttributeType is the value type of an Attribute.
type AttributeType string

const (
	AttributeString    AttributeType = "string"
	AttributeDateTime  AttributeType = "datetime"
	AttributeDate      AttributeType = "date"
	AttributeBoolean   AttributeType = "boolean"
	AttributeInteger   AttributeType = "integer"
	AttributeDecimal   AttributeType = "decimal"
	AttributePercent   AttributeType = "percent"
	AttributeEmail     AttributeType = "email"
	AttributeColour    AttributeType = "colour"
	AttributeEnum      AttributeType = "enum"
	AttributeCountry   AttributeType = "country"
	AttributeDocuments AttributeType = "documents"
)

// Valid reports whether t is a known attribute type.
func (t AttributeType) Valid() bool {
	switch t {
	case AttributeString, AttributeDateTime, AttributeDate, AttributeBoolean,
		AttributeInteger, AttributeDecimal, AttributePercent, AttributeEmail,
		AttributeColour, AttributeEnum, AttributeCountry, AttributeDocuments:
		return true
	}
	return false
}

// AttributeGroup groups attributes for display.
type AttributeGroup struct {
	ID            uuid.UUID
	CanonicalName string
	Timestamps
}

// AttributeGroupTranslation is a group's localized name.
type AttributeGroupTranslation struct {
	ID            uuid.UUID
	GroupID       uuid.UUID
	TranslationID uuid.UUID
	Name          string
}

// Attribute is a reusable, typed key that can extend any node.
type Attribute struct {
	ID             uuid.UUID
	Code           string
	Type           AttributeType
	Searchable     bool
	Universal      bool
	Color          string
	Weight         int
	GroupID        *uuid.UUID
	DefaultRealmID *uuid.UUID
	Timestamps
}

// AttributeTranslation holds an attribute's label and enum options per locale.
type AttributeTranslation struct {
	ID            uuid.UUID
	AttributeID   uuid.UUID
	TranslationID uuid.UUID
	Label         string
	Options       []string
}

// AttributeDocument is an ordered document attached to a documents-typed attribute.
type AttributeDocument struct {
	ID          uuid.UUID
	AttributeID uuid.UUID
	DocumentID  uuid.UUID
	Position    float64
}

// AttributeValue binds an attribute to a node, optionally within a realm.
type AttributeValue struct {
	ID          uuid.UUID
	AttributeID uuid.UUID
	NodeID      uuid.UUID
	RealmID     *uuid.UUID
	Position    float64
	Timestamps
}

// AttributeValueTranslation is the stored value of an AttributeValue in one
// translation. Universal attributes keep a single row on the default translation.
type AttributeValueTranslation struct {
	ID               uuid.UUID
	AttributeValueID uuid.UUID
	TranslationID    uuid.UUID
	Value            *string
}
