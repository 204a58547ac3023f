package memory

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type NodeRepository struct{ s *Store }

func NewNodeRepository(s *Store) *NodeRepository {
	return &NodeRepository{s: s}
}

func (r *NodeRepository) Create(_ context.Context, n *models.Node) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.nodes[n.ID]; ok {
			return duplicate("node", n.ID)
		}
		if nodeNameTaken(a, n) {
			return duplicate("node name", n.NodeName)
		}
		if n.ParentID != nil {
			if _, ok := a.nodes[*n.ParentID]; !ok {
				return notFound("parent node", *n.ParentID)
			}
		}
		a.nodes[n.ID] = copyNode(n)
		return nil
	})
}

func nodeNameTaken(a *arena, n *models.Node) bool {
	for _, o := range a.nodes {
		if o.ID != n.ID && o.NodeName == n.NodeName {
			return true
		}
	}
	return false
}

func (r *NodeRepository) Update(_ context.Context, n *models.Node) error {
	return r.s.write(func(a *arena) error {
		old, ok := a.nodes[n.ID]
		if !ok {
			return notFound("node", n.ID)
		}
		if nodeNameTaken(a, n) {
			return duplicate("node name", n.NodeName)
		}
		c := copyNode(n)
		c.NodeTypeName = old.NodeTypeName
		c.CreatedAt = old.CreatedAt
		a.nodes[n.ID] = c
		return nil
	})
}

// Delete removes the node, its subtree and every row hanging off them.
func (r *NodeRepository) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.nodes[id]; !ok {
			return notFound("node", id)
		}
		doomed := map[uuid.UUID]struct{}{id: {}}
		for grew := true; grew; {
			grew = false
			for _, n := range a.nodes {
				if _, ok := doomed[n.ID]; ok || n.ParentID == nil {
					continue
				}
				if _, ok := doomed[*n.ParentID]; ok {
					doomed[n.ID] = struct{}{}
					grew = true
				}
			}
		}
		for nid := range doomed {
			deleteNodeRows(a, nid)
		}
		return nil
	})
}

func deleteNodeRows(a *arena, nodeID uuid.UUID) {
	for id, s := range a.sources {
		if s.NodeID == nodeID {
			deleteSourceRows(a, id)
		}
	}
	for id, ref := range a.nodeRefs {
		if ref.NodeAID == nodeID || ref.NodeBID == nodeID {
			delete(a.nodeRefs, id)
		}
	}
	for id, f := range a.nodeForms {
		if f.NodeID == nodeID {
			delete(a.nodeForms, id)
		}
	}
	for id, t := range a.nodeTags {
		if t.NodeID == nodeID {
			delete(a.nodeTags, id)
		}
	}
	for k := range a.stackTypes {
		if k.nodeID == nodeID {
			delete(a.stackTypes, k)
		}
	}
	for id, v := range a.attrValues {
		if v.NodeID == nodeID {
			deleteValueRows(a, id)
		}
	}
	for id, b := range a.realmNodes {
		if b.NodeID == nodeID {
			delete(a.realmNodes, id)
		}
	}
	delete(a.nodes, nodeID)
}

func (r *NodeRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Node, error) {
	var out *models.Node
	err := r.s.read(func(a *arena) error {
		n, ok := a.nodes[id]
		if !ok {
			return notFound("node", id)
		}
		out = copyNode(n)
		return nil
	})
	return out, err
}

func (r *NodeRepository) GetByName(_ context.Context, name string) (*models.Node, error) {
	var out *models.Node
	err := r.s.read(func(a *arena) error {
		for _, n := range a.nodes {
			if n.NodeName == name {
				out = copyNode(n)
				return nil
			}
		}
		return notFound("node", name)
	})
	return out, err
}

func (r *NodeRepository) Children(_ context.Context, parentID *uuid.UUID) ([]*models.Node, error) {
	var out []*models.Node
	err := r.s.read(func(a *arena) error {
		out = collect(a.nodes,
			func(n *models.Node) bool { return models.SameParent(n.ParentID, parentID) },
			copyNode,
			func(x, y *models.Node) bool { return byPosition(x.Position, y.Position, x.ID, y.ID) })
		return nil
	})
	return out, err
}

// Ancestors returns the chain above id, closest first.
func (r *NodeRepository) Ancestors(_ context.Context, id uuid.UUID) ([]*models.Node, error) {
	var out []*models.Node
	err := r.s.read(func(a *arena) error {
		n, ok := a.nodes[id]
		if !ok {
			return nil
		}
		for n.ParentID != nil {
			p, ok := a.nodes[*n.ParentID]
			if !ok {
				break
			}
			out = append(out, copyNode(p))
			n = p
		}
		return nil
	})
	return out, err
}

// LockChildren is a no-op: the Transactor already serializes writers.
func (r *NodeRepository) LockChildren(context.Context, *uuid.UUID) error { return nil }

func (r *NodeRepository) ClearHome(_ context.Context) error {
	return r.s.write(func(a *arena) error {
		for _, n := range a.nodes {
			n.Home = false
		}
		return nil
	})
}

func (r *NodeRepository) CountByType(_ context.Context, typeName string) (int, error) {
	var count int
	err := r.s.read(func(a *arena) error {
		for _, n := range a.nodes {
			if n.NodeTypeName == typeName {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *NodeRepository) AddStackType(_ context.Context, st *models.NodeStackType) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.nodes[st.NodeID]; !ok {
			return notFound("node", st.NodeID)
		}
		k := stackKey{nodeID: st.NodeID, typeName: st.NodeTypeName}
		if _, ok := a.stackTypes[k]; ok {
			return duplicate("stack type", st.NodeTypeName)
		}
		a.stackTypes[k] = struct{}{}
		return nil
	})
}

func (r *NodeRepository) RemoveStackType(_ context.Context, nodeID uuid.UUID, typeName string) error {
	return r.s.write(func(a *arena) error {
		k := stackKey{nodeID: nodeID, typeName: typeName}
		if _, ok := a.stackTypes[k]; !ok {
			return notFound("stack type", typeName)
		}
		delete(a.stackTypes, k)
		return nil
	})
}

func (r *NodeRepository) ListStackTypes(_ context.Context, nodeID uuid.UUID) ([]*models.NodeStackType, error) {
	var out []*models.NodeStackType
	err := r.s.read(func(a *arena) error {
		for k := range a.stackTypes {
			if k.nodeID == nodeID {
				out = append(out, &models.NodeStackType{NodeID: k.nodeID, NodeTypeName: k.typeName})
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].NodeTypeName < out[j].NodeTypeName })
	return out, err
}
