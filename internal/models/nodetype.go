package models

import (
	"sort"

	"github.com/google/uuid"
)

// NodeType defines the typed fields a family of nodes carries.
type NodeType struct {
	ID          uuid.UUID `yaml:"-"`
	Name        string    `yaml:"name"`
	DisplayName string    `yaml:"displayName"`
	Description string    `yaml:"description,omitempty"`
	Color       string    `yaml:"color,omitempty"`

	Visible                   bool `yaml:"visible"`
	Publishable               bool `yaml:"publishable"`
	Reachable                 bool `yaml:"reachable"`
	HidingNodes               bool `yaml:"hidingNodes"`
	HidingNonReachableNodes   bool `yaml:"hidingNonReachableNodes"`
	Attributable              bool `yaml:"attributable"`
	SortingAttributesByWeight bool `yaml:"sortingAttributesByWeight"`
	Searchable                bool `yaml:"searchable"`

	DefaultTTL int `yaml:"defaultTtl"`

	Fields []*NodeTypeField `yaml:"fields"`

	Timestamps `yaml:"-"`
}

// SortFields orders Fields by position, keeping declaration order for ties.
func (t *NodeType) SortFields() {
	sort.SliceStable(t.Fields, func(i, j int) bool {
		return t.Fields[i].Position < t.Fields[j].Position
	})
}

// Clone returns a deep copy so decorators and callers cannot alias a
// registry's internal state.
func (t *NodeType) Clone() *NodeType {
	c := *t
	c.Fields = make([]*NodeTypeField, len(t.Fields))
	for i, f := range t.Fields {
		c.Fields[i] = f.Clone()
	}
	return &c
}

// NodeTypeField is one typed field of a NodeType.
type NodeTypeField struct {
	ID          uuid.UUID `yaml:"-"`
	NodeTypeID  uuid.UUID `yaml:"-"`
	Name        string    `yaml:"name"`
	Label       string    `yaml:"label"`
	Type        FieldType `yaml:"type"`
	Description string    `yaml:"description,omitempty"`
	Placeholder string    `yaml:"placeholder,omitempty"`
	GroupName   string    `yaml:"groupName,omitempty"`
	Position    float64   `yaml:"position"`

	Universal         bool `yaml:"universal"`
	ExcludeFromSearch bool `yaml:"excludeFromSearch"`
	Indexed           bool `yaml:"indexed"`
	Visible           bool `yaml:"visible"`
	Required          bool `yaml:"required"`
	Versioned         bool `yaml:"versioned"`

	MinLength int `yaml:"minLength,omitempty"`
	MaxLength int `yaml:"maxLength,omitempty"`

	// DefaultValues lists the allowed choices of enum-like fields, or the
	// accepted target NodeType names of reference fields.
	DefaultValues []string `yaml:"defaultValues,omitempty"`

	SerializationGroups   []string `yaml:"serializationGroups,omitempty"`
	SerializationExclude  bool     `yaml:"serializationExclude,omitempty"`
	SerializationMaxDepth int      `yaml:"serializationMaxDepth,omitempty"`
}

// Clone returns a deep copy of f.
func (f *NodeTypeField) Clone() *NodeTypeField {
	c := *f
	c.DefaultValues = append([]string(nil), f.DefaultValues...)
	c.SerializationGroups = append([]string(nil), f.SerializationGroups...)
	return &c
}

// IsSearchable reports whether a search indexer should read this field.
func (f *NodeTypeField) IsSearchable() bool {
	return f.Type.IsSearchableType() && !f.ExcludeFromSearch
}
