package schema

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/models"
)

// NodeTypeStore is the persistence a DatabaseRegistry reads from.
type NodeTypeStore interface {
	GetByName(ctx context.Context, name string) (*models.NodeType, error)
	List(ctx context.Context) ([]*models.NodeType, error)
}

// DatabaseRegistry reads definitions from the node_types tables on every call.
type DatabaseRegistry struct {
	store      NodeTypeStore
	decorators Decorators
}

func NewDatabaseRegistry(store NodeTypeStore, decorators Decorators) *DatabaseRegistry {
	return &DatabaseRegistry{store: store, decorators: decorators}
}

func (r *DatabaseRegistry) GetNodeType(ctx context.Context, name string) (*models.NodeType, error) {
	nt, err := r.store.GetByName(ctx, name)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, unknownType(name)
	}
	if err != nil {
		return nil, err
	}
	return r.decorate(nt)
}

func (r *DatabaseRegistry) ListNodeTypes(ctx context.Context) ([]*models.NodeType, error) {
	types, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.NodeType, 0, len(types))
	for _, nt := range types {
		d, err := r.decorate(nt)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	sortByName(out)
	return out, nil
}

func (r *DatabaseRegistry) decorate(nt *models.NodeType) (*models.NodeType, error) {
	nt = nt.Clone()
	if err := r.decorators.Apply(nt); err != nil {
		return nil, err
	}
	nt.SortFields()
	return nt, nil
}
