package schema

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/nodestore/internal/models"
)

// StaticRegistry serves definitions loaded once, typically from YAML files.
type StaticRegistry struct {
	types map[string]*models.NodeType
}

// NewStaticRegistry validates types, applies decorators and indexes them by name.
func NewStaticRegistry(types []*models.NodeType, decorators Decorators) (*StaticRegistry, error) {
	r := &StaticRegistry{types: make(map[string]*models.NodeType, len(types))}
	for _, nt := range types {
		nt = nt.Clone()
		if err := ValidateNodeType(nt); err != nil {
			return nil, err
		}
		if _, dup := r.types[nt.Name]; dup {
			return nil, fmt.Errorf("node type %q is defined twice", nt.Name)
		}
		if err := decorators.Apply(nt); err != nil {
			return nil, err
		}
		nt.SortFields()
		r.types[nt.Name] = nt
	}
	return r, nil
}

// LoadStaticRegistry reads every *.yaml and *.yml file of dir. A file holds
// either one definition or a `nodeTypes` list.
func LoadStaticRegistry(dir string, decorators Decorators) (*StaticRegistry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}

	var types []*models.NodeType
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		loaded, err := ParseNodeTypes(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		types = append(types, loaded...)
	}
	return NewStaticRegistry(types, decorators)
}

type nodeTypeFile struct {
	NodeTypes []*models.NodeType `yaml:"nodeTypes"`
}

// ParseNodeTypes decodes YAML holding one definition or a `nodeTypes` list.
func ParseNodeTypes(data []byte) ([]*models.NodeType, error) {
	var list nodeTypeFile
	if err := yaml.Unmarshal(data, &list); err == nil && len(list.NodeTypes) > 0 {
		return list.NodeTypes, nil
	}
	var single models.NodeType
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parse node type: %w", err)
	}
	if single.Name == "" {
		return nil, fmt.Errorf("parse node type: missing name")
	}
	return []*models.NodeType{&single}, nil
}

func (r *StaticRegistry) GetNodeType(_ context.Context, name string) (*models.NodeType, error) {
	nt, ok := r.types[name]
	if !ok {
		return nil, unknownType(name)
	}
	return nt.Clone(), nil
}

func (r *StaticRegistry) ListNodeTypes(_ context.Context) ([]*models.NodeType, error) {
	out := make([]*models.NodeType, 0, len(r.types))
	for _, nt := range r.types {
		out = append(out, nt.Clone())
	}
	sortByName(out)
	return out, nil
}
