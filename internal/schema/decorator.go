package schema

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/models"
)

// Decorator overrides one presentation property of a NodeType or of one of
// its fields. Path is "TypeName" or "TypeName.fieldName".
type Decorator struct {
	Path     string `yaml:"path"`
	Property string `yaml:"property"`
	Value    any    `yaml:"value"`
}

// Decorators are applied in order; later entries win.
type Decorators []Decorator

type decoratorFile struct {
	Decorators Decorators `yaml:"decorators"`
}

// LoadDecorators reads a YAML decorators file. An empty path yields none.
func LoadDecorators(path string) (Decorators, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read decorators: %w", err)
	}
	var f decoratorFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse decorators: %w", err)
	}
	return f.Decorators, nil
}

// Apply overrides properties of nt in place. Decorators aimed at other
// types or at undeclared fields are skipped.
func (ds Decorators) Apply(nt *models.NodeType) error {
	for _, d := range ds {
		typeName, fieldName, hasField := strings.Cut(d.Path, ".")
		if typeName != nt.Name {
			continue
		}
		if !hasField {
			if err := applyTypeProperty(nt, d); err != nil {
				return err
			}
			continue
		}
		f := GetFieldByName(nt, fieldName)
		if f == nil {
			continue
		}
		if err := applyFieldProperty(f, d); err != nil {
			return err
		}
	}
	return nil
}

// Unmatched returns the paths that name no type or field among types, in
// decorator order.
func (ds Decorators) Unmatched(types []*models.NodeType) []string {
	byName := make(map[string]*models.NodeType, len(types))
	for _, nt := range types {
		byName[nt.Name] = nt
	}
	var paths []string
	for _, d := range ds {
		typeName, fieldName, hasField := strings.Cut(d.Path, ".")
		nt, ok := byName[typeName]
		if !ok || (hasField && GetFieldByName(nt, fieldName) == nil) {
			paths = append(paths, d.Path)
		}
	}
	return paths
}

func applyTypeProperty(nt *models.NodeType, d Decorator) error {
	var err error
	switch d.Property {
	case "displayName":
		nt.DisplayName, err = decoratorString(d)
	case "description":
		nt.Description, err = decoratorString(d)
	case "color":
		nt.Color, err = decoratorString(d)
	case "visible":
		nt.Visible, err = decoratorBool(d)
	default:
		err = unknownProperty(d)
	}
	return err
}

func applyFieldProperty(f *models.NodeTypeField, d Decorator) error {
	var err error
	switch d.Property {
	case "label":
		f.Label, err = decoratorString(d)
	case "description":
		f.Description, err = decoratorString(d)
	case "placeholder":
		f.Placeholder, err = decoratorString(d)
	case "minLength":
		f.MinLength, err = decoratorInt(d)
	case "maxLength":
		f.MaxLength, err = decoratorInt(d)
	case "visible":
		f.Visible, err = decoratorBool(d)
	case "universal":
		f.Universal, err = decoratorBool(d)
	default:
		err = unknownProperty(d)
	}
	return err
}

func unknownProperty(d Decorator) error {
	return fmt.Errorf("%w: decorator %s has unknown property %q", common.ErrorValidation, d.Path, d.Property)
}

func decoratorString(d Decorator) (string, error) {
	s, ok := d.Value.(string)
	if !ok {
		return "", fmt.Errorf("%w: decorator %s.%s expects a string", common.ErrorValidation, d.Path, d.Property)
	}
	return s, nil
}

func decoratorBool(d Decorator) (bool, error) {
	b, ok := d.Value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: decorator %s.%s expects a boolean", common.ErrorValidation, d.Path, d.Property)
	}
	return b, nil
}

func decoratorInt(d Decorator) (int, error) {
	n, ok := d.Value.(int)
	if !ok || n < 0 {
		return 0, fmt.Errorf("%w: decorator %s.%s expects a non-negative integer", common.ErrorValidation, d.Path, d.Property)
	}
	return n, nil
}
