package schema

import (
	"context"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/nodestore/internal/filex"
	"github.com/dmitrijs2005/nodestore/internal/models"
)

// MarshalNodeType encodes nt in the format LoadStaticRegistry reads.
func MarshalNodeType(nt *models.NodeType) ([]byte, error) {
	return yaml.Marshal(nt)
}

// Export writes every definition of r to dir as <Name>.yaml and returns the
// written paths. The output can back a StaticRegistry.
func Export(ctx context.Context, r Registry, dir string) ([]string, error) {
	types, err := r.ListNodeTypes(ctx)
	if err != nil {
		return nil, err
	}
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(types))
	for _, nt := range types {
		data, err := MarshalNodeType(nt)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", nt.Name, err)
		}
		path := filepath.Join(abs, nt.Name+".yaml")
		if err := filex.WriteAtomic(path, data); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Diff compares two registries by name and field list. It returns a line per
// difference; an empty result means both serve the same definitions.
func Diff(ctx context.Context, a, b Registry) ([]string, error) {
	left, err := a.ListNodeTypes(ctx)
	if err != nil {
		return nil, err
	}
	right, err := b.ListNodeTypes(ctx)
	if err != nil {
		return nil, err
	}
	rightByName := make(map[string]*models.NodeType, len(right))
	for _, nt := range right {
		rightByName[nt.Name] = nt
	}

	var diffs []string
	for _, l := range left {
		r, ok := rightByName[l.Name]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("- %s", l.Name))
			continue
		}
		delete(rightByName, l.Name)
		diffs = append(diffs, diffFields(l, r)...)
	}
	for _, r := range right {
		if _, ok := rightByName[r.Name]; ok {
			diffs = append(diffs, fmt.Sprintf("+ %s", r.Name))
		}
	}
	return diffs, nil
}

func diffFields(l, r *models.NodeType) []string {
	var diffs []string
	for _, lf := range l.Fields {
		rf := GetFieldByName(r, lf.Name)
		switch {
		case rf == nil:
			diffs = append(diffs, fmt.Sprintf("- %s.%s", l.Name, lf.Name))
		case rf.Type != lf.Type:
			diffs = append(diffs, fmt.Sprintf("~ %s.%s: %s -> %s", l.Name, lf.Name, lf.Type, rf.Type))
		}
	}
	for _, rf := range r.Fields {
		if GetFieldByName(l, rf.Name) == nil {
			diffs = append(diffs, fmt.Sprintf("+ %s.%s", r.Name, rf.Name))
		}
	}
	return diffs
}
