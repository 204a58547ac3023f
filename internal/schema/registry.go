// Package schema holds the NodeType registry: where type definitions come
// from, how their names are validated and how source values are checked
// against them.
package schema

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/models"
)

// Registry resolves NodeType definitions by name. Returned definitions are
// copies and carry the configured decorators.
type Registry interface {
	GetNodeType(ctx context.Context, name string) (*models.NodeType, error)
	ListNodeTypes(ctx context.Context) ([]*models.NodeType, error)
}

// GetFieldByName returns the named field of nt, or nil.
func GetFieldByName(nt *models.NodeType, name string) *models.NodeTypeField {
	for _, f := range nt.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Resolve looks up a NodeType and wraps it in a Descriptor.
func Resolve(ctx context.Context, r Registry, name string) (*Descriptor, error) {
	nt, err := r.GetNodeType(ctx, name)
	if err != nil {
		return nil, err
	}
	return NewDescriptor(nt), nil
}

func unknownType(name string) error {
	return fmt.Errorf("%w: %q", common.ErrUnknownNodeType, name)
}

func sortByName(types []*models.NodeType) {
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
}
