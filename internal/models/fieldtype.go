package models

// FieldType is the storage/editing type of a NodeTypeField.
type FieldType string

const (
	FieldString      FieldType = "string"
	FieldText        FieldType = "text"
	FieldMarkdown    FieldType = "markdown"
	FieldRichText    FieldType = "rich_text"
	FieldEmail       FieldType = "email"
	FieldColour      FieldType = "colour"
	FieldCountry     FieldType = "country"
	FieldDate        FieldType = "date"
	FieldDateTime    FieldType = "datetime"
	FieldBoolean     FieldType = "boolean"
	FieldInteger     FieldType = "integer"
	FieldDecimal     FieldType = "decimal"
	FieldJSON        FieldType = "json"
	FieldYAML        FieldType = "yaml"
	FieldGeoTag      FieldType = "geotag"
	FieldEnum        FieldType = "enum"
	FieldRadioGroup  FieldType = "radio_group"
	FieldMultiple    FieldType = "multiple"
	FieldCheckGroup  FieldType = "check_group"
	FieldDocuments   FieldType = "documents"
	FieldNodes       FieldType = "nodes"
	FieldChildren    FieldType = "children"
	FieldCustomForms FieldType = "custom_forms"
	FieldManyToOne   FieldType = "many_to_one"
	FieldManyToMany  FieldType = "many_to_many"
	FieldCollection  FieldType = "collection"
)

var knownFieldTypes = map[FieldType]struct{}{
	FieldString: {}, FieldText: {}, FieldMarkdown: {}, FieldRichText: {}, FieldEmail: {},
	FieldColour: {}, FieldCountry: {}, FieldDate: {}, FieldDateTime: {}, FieldBoolean: {},
	FieldInteger: {}, FieldDecimal: {}, FieldJSON: {}, FieldYAML: {}, FieldGeoTag: {},
	FieldEnum: {}, FieldRadioGroup: {}, FieldMultiple: {}, FieldCheckGroup: {},
	FieldDocuments: {}, FieldNodes: {}, FieldChildren: {}, FieldCustomForms: {},
	FieldManyToOne: {}, FieldManyToMany: {}, FieldCollection: {},
}

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	_, ok := knownFieldTypes[t]
	return ok
}

// IsVirtual reports whether values of this type live outside the source's
// own field map: side tables, the tree itself, or external relations.
func (t FieldType) IsVirtual() bool {
	switch t {
	case FieldDocuments, FieldNodes, FieldChildren, FieldCustomForms,
		FieldManyToOne, FieldManyToMany:
		return true
	}
	return false
}

// IsDocuments reports whether the field holds ordered document references.
func (t FieldType) IsDocuments() bool { return t == FieldDocuments }

// IsNodeReferences reports whether the field holds ordered node references.
func (t FieldType) IsNodeReferences() bool { return t == FieldNodes }

// IsCustomForms reports whether the field holds custom form references.
func (t FieldType) IsCustomForms() bool { return t == FieldCustomForms }

// IsChoice reports whether values must come from the field's declared choices.
func (t FieldType) IsChoice() bool {
	switch t {
	case FieldEnum, FieldRadioGroup, FieldMultiple, FieldCheckGroup:
		return true
	}
	return false
}

// IsMultiValued reports whether the scalar value is a list of strings.
func (t FieldType) IsMultiValued() bool {
	return t == FieldMultiple || t == FieldCheckGroup
}

// IsSearchableType reports whether values of this type carry text worth
// handing to a search indexer.
func (t FieldType) IsSearchableType() bool {
	switch t {
	case FieldString, FieldText, FieldMarkdown, FieldRichText, FieldEnum,
		FieldRadioGroup, FieldMultiple, FieldCheckGroup, FieldCountry:
		return true
	}
	return false
}
