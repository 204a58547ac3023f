package schema

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/models"
)

// ChainRegistry asks its registries in order; the first definition found wins.
type ChainRegistry struct {
	registries []Registry
}

func NewChainRegistry(registries ...Registry) *ChainRegistry {
	return &ChainRegistry{registries: registries}
}

func (c *ChainRegistry) GetNodeType(ctx context.Context, name string) (*models.NodeType, error) {
	for _, r := range c.registries {
		nt, err := r.GetNodeType(ctx, name)
		if err == nil {
			return nt, nil
		}
		if !errors.Is(err, common.ErrUnknownNodeType) {
			return nil, err
		}
	}
	return nil, unknownType(name)
}

func (c *ChainRegistry) ListNodeTypes(ctx context.Context) ([]*models.NodeType, error) {
	seen := map[string]struct{}{}
	var out []*models.NodeType
	for _, r := range c.registries {
		types, err := r.ListNodeTypes(ctx)
		if err != nil {
			return nil, err
		}
		for _, nt := range types {
			if _, ok := seen[nt.Name]; ok {
				continue
			}
			seen[nt.Name] = struct{}{}
			out = append(out, nt)
		}
	}
	sortByName(out)
	return out, nil
}
