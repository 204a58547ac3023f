package memory

import (
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type NodeTypeRepository struct{ s *Store }

func NewNodeTypeRepository(s *Store) *NodeTypeRepository {
	return &NodeTypeRepository{s: s}
}

func (r *NodeTypeRepository) Create(_ context.Context, t *models.NodeType) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.nodeTypes[t.ID]; ok {
			return duplicate("node type", t.ID)
		}
		for _, o := range a.nodeTypes {
			if o.Name == t.Name {
				return duplicate("node type", t.Name)
			}
		}
		seen := map[string]struct{}{}
		for _, f := range t.Fields {
			if _, ok := seen[f.Name]; ok {
				return duplicate("node type field", t.Name+"."+f.Name)
			}
			seen[f.Name] = struct{}{}
			f.NodeTypeID = t.ID
		}
		a.nodeTypes[t.ID] = t.Clone()
		return nil
	})
}

// Update replaces the type's own columns; fields are managed separately.
func (r *NodeTypeRepository) Update(_ context.Context, t *models.NodeType) error {
	return r.s.write(func(a *arena) error {
		old, ok := a.nodeTypes[t.ID]
		if !ok {
			return notFound("node type", t.ID)
		}
		c := t.Clone()
		c.Name = old.Name
		c.Fields = old.Fields
		c.CreatedAt = old.CreatedAt
		a.nodeTypes[t.ID] = c
		return nil
	})
}

func (r *NodeTypeRepository) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.nodeTypes[id]; !ok {
			return notFound("node type", id)
		}
		delete(a.nodeTypes, id)
		return nil
	})
}

func (r *NodeTypeRepository) GetByName(_ context.Context, name string) (*models.NodeType, error) {
	var out *models.NodeType
	err := r.s.read(func(a *arena) error {
		for _, t := range a.nodeTypes {
			if t.Name == name {
				out = t.Clone()
				out.SortFields()
				return nil
			}
		}
		return notFound("node type", name)
	})
	return out, err
}

func (r *NodeTypeRepository) List(_ context.Context) ([]*models.NodeType, error) {
	var out []*models.NodeType
	err := r.s.read(func(a *arena) error {
		out = collect(a.nodeTypes,
			func(*models.NodeType) bool { return true },
			(*models.NodeType).Clone,
			func(x, y *models.NodeType) bool { return x.Name < y.Name })
		for _, t := range out {
			t.SortFields()
		}
		return nil
	})
	return out, err
}

func (r *NodeTypeRepository) CreateField(_ context.Context, f *models.NodeTypeField) error {
	return r.s.write(func(a *arena) error {
		t, ok := a.nodeTypes[f.NodeTypeID]
		if !ok {
			return notFound("node type", f.NodeTypeID)
		}
		for _, o := range t.Fields {
			if o.Name == f.Name {
				return duplicate("node type field", t.Name+"."+f.Name)
			}
		}
		t.Fields = append(t.Fields, f.Clone())
		return nil
	})
}

func (r *NodeTypeRepository) UpdateField(_ context.Context, f *models.NodeTypeField) error {
	return r.s.write(func(a *arena) error {
		for _, t := range a.nodeTypes {
			for i, o := range t.Fields {
				if o.ID == f.ID {
					c := f.Clone()
					c.NodeTypeID = o.NodeTypeID
					c.Name = o.Name
					t.Fields[i] = c
					return nil
				}
			}
		}
		return notFound("node type field", f.ID)
	})
}

func (r *NodeTypeRepository) DeleteField(_ context.Context, id uuid.UUID) error {
	return r.s.write(func(a *arena) error {
		for _, t := range a.nodeTypes {
			for i, o := range t.Fields {
				if o.ID == id {
					t.Fields = append(t.Fields[:i:i], t.Fields[i+1:]...)
					return nil
				}
			}
		}
		return notFound("node type field", id)
	})
}
