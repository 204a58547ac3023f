package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/models"
)

// Descriptor is the resolved, read-only view of one NodeType used to check
// and coerce source field values.
type Descriptor struct {
	nodeType *models.NodeType
	byName   map[string]*models.NodeTypeField
}

// NewDescriptor builds a Descriptor over a copy of nt.
func NewDescriptor(nt *models.NodeType) *Descriptor {
	c := nt.Clone()
	c.SortFields()
	d := &Descriptor{nodeType: c, byName: make(map[string]*models.NodeTypeField, len(c.Fields))}
	for _, f := range c.Fields {
		d.byName[f.Name] = f
	}
	return d
}

// Name is the described NodeType name, used as the source discriminator.
func (d *Descriptor) Name() string { return d.nodeType.Name }

// NodeType returns a copy of the described definition.
func (d *Descriptor) NodeType() *models.NodeType { return d.nodeType.Clone() }

// Fields returns the fields in position order. Callers must not modify them.
func (d *Descriptor) Fields() []*models.NodeTypeField { return d.nodeType.Fields }

// Field returns the named field, or nil.
func (d *Descriptor) Field(name string) *models.NodeTypeField { return d.byName[name] }

// ValidateFieldName fails with ErrUnknownField when name is not declared.
func (d *Descriptor) ValidateFieldName(name string) (*models.NodeTypeField, error) {
	f, ok := d.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no field %q", common.ErrUnknownField, d.nodeType.Name, name)
	}
	return f, nil
}

// RequireField checks that name is declared and accepted by is.
func (d *Descriptor) RequireField(name string, is func(models.FieldType) bool) (*models.NodeTypeField, error) {
	f, err := d.ValidateFieldName(name)
	if err != nil {
		return nil, err
	}
	if !is(f.Type) {
		return nil, fmt.Errorf("%w: %s.%s is a %s field", common.ErrorValidation, d.nodeType.Name, name, f.Type)
	}
	return f, nil
}

// ValidateValue coerces value to the canonical Go type of the named field.
// A nil value clears the field and is only rejected for required fields.
func (d *Descriptor) ValidateValue(name string, value any) (any, error) {
	f, err := d.ValidateFieldName(name)
	if err != nil {
		return nil, err
	}
	if f.Type.IsVirtual() {
		return nil, fmt.Errorf("%w: %s.%s holds references, attach them instead", common.ErrorValidation, d.nodeType.Name, name)
	}
	v, err := coerce(f, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %v", common.ErrorValidation, d.nodeType.Name, name, err)
	}
	return v, nil
}

// ValidateValues coerces every entry of values, failing on the first error.
func (d *Descriptor) ValidateValues(values models.FieldValues) (models.FieldValues, error) {
	out := make(models.FieldValues, len(values))
	for name, v := range values {
		cv, err := d.ValidateValue(name, v)
		if err != nil {
			return nil, err
		}
		out[name] = cv
	}
	return out, nil
}

// CheckRequired reports the first required scalar field missing from values.
func (d *Descriptor) CheckRequired(values models.FieldValues) error {
	for _, f := range d.RequiredFields() {
		if f.Type.IsVirtual() {
			continue
		}
		if v, ok := values[f.Name]; !ok || v == nil {
			return fmt.Errorf("%w: %s.%s is required", common.ErrorValidation, d.nodeType.Name, f.Name)
		}
	}
	return nil
}

// Normalize re-coerces values read back from storage. Entries that no
// longer match the definition are kept as they are.
func (d *Descriptor) Normalize(values models.FieldValues) models.FieldValues {
	out := make(models.FieldValues, len(values))
	for name, v := range values {
		if f := d.byName[name]; f != nil && !f.Type.IsVirtual() && v != nil {
			if cv, err := coerce(f, v); err == nil {
				v = cv
			}
		}
		out[name] = v
	}
	return out
}

func (d *Descriptor) filter(keep func(*models.NodeTypeField) bool) []*models.NodeTypeField {
	var out []*models.NodeTypeField
	for _, f := range d.nodeType.Fields {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// VersionedFields lists fields whose changes are written to the audit log.
func (d *Descriptor) VersionedFields() []*models.NodeTypeField {
	return d.filter(func(f *models.NodeTypeField) bool { return f.Versioned })
}

// SearchableFields lists fields a search indexer should read.
func (d *Descriptor) SearchableFields() []*models.NodeTypeField {
	return d.filter((*models.NodeTypeField).IsSearchable)
}

// IndexedFields lists fields that support filtering and sorting.
func (d *Descriptor) IndexedFields() []*models.NodeTypeField {
	return d.filter(func(f *models.NodeTypeField) bool { return f.Indexed })
}

// RequiredFields lists fields that must carry a value.
func (d *Descriptor) RequiredFields() []*models.NodeTypeField {
	return d.filter(func(f *models.NodeTypeField) bool { return f.Required })
}

// UniversalFields lists fields shared by every translation of a node.
func (d *Descriptor) UniversalFields() []*models.NodeTypeField {
	return d.filter(func(f *models.NodeTypeField) bool { return f.Universal })
}

// MarshalFields encodes values for storage.
func MarshalFields(values models.FieldValues) ([]byte, error) {
	if values == nil {
		values = models.FieldValues{}
	}
	return json.Marshal(values)
}

// UnmarshalFields decodes stored values; numbers are kept as json.Number
// until a Descriptor normalizes them.
func UnmarshalFields(data []byte) (models.FieldValues, error) {
	values := models.FieldValues{}
	if len(data) == 0 {
		return values, nil
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return values, nil
}
