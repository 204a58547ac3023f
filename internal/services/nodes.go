package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/dmitrijs2005/nodestore/internal/textx"
	"github.com/google/uuid"
)

type NodeService struct {
	base
	workflow Workflow
}

func NewNodeService(d Deps) *NodeService {
	d = d.withDefaults()
	return &NodeService{base: newBase(d, "nodes"), workflow: d.Workflow}
}

type CreateNodeInput struct {
	NodeName string
	TypeName string
	ParentID *uuid.UUID
	Title    string
}

// Create adds a node as the last child of its parent together with its
// source in the default translation.
func (s *NodeService) Create(ctx context.Context, in CreateNodeInput) (*models.Node, error) {
	d, err := s.descriptor(ctx, in.TypeName)
	if err != nil {
		return nil, err
	}
	nt := d.NodeType()
	name := textx.Slugify(in.NodeName)
	if name == "" {
		return nil, fmt.Errorf("%w: node name %q has no usable characters", common.ErrorValidation, in.NodeName)
	}

	n := models.NewNode(name, nt.Name, in.ParentID)
	n.TTL = nt.DefaultTTL
	n.Touch(s.now())

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Nodes(tx)
		if err := s.checkNameFree(ctx, tx, name); err != nil {
			return err
		}
		if err := s.checkParent(ctx, tx, in.ParentID); err != nil {
			return err
		}
		if err := repo.LockChildren(ctx, in.ParentID); err != nil {
			return err
		}
		siblings, err := repo.Children(ctx, in.ParentID)
		if err != nil {
			return err
		}
		n.Position = appendAfter(siblings, nodePosition)
		if err := repo.Create(ctx, n); err != nil {
			return err
		}

		tr, err := s.repomanager.Translations(tx).GetDefault(ctx)
		if err != nil {
			return fmt.Errorf("default translation: %w", err)
		}
		src := newSource(n, tr.ID, in.Title, s.now())
		return s.repomanager.Sources(tx).Create(ctx, src)
	})
	if err != nil {
		s.log.Warn(ctx, "node create rejected", "node_name", name, "error", err)
		return nil, err
	}

	s.log.Info(ctx, "node created", "node_id", n.ID, "node_name", n.NodeName, "node_type", n.NodeTypeName)
	s.dispatch(ctx, Event{Type: EventNodeCreated, NodeID: n.ID})
	return n, nil
}

func nodePosition(n *models.Node) float64 { return n.Position }

func newSource(n *models.Node, translationID uuid.UUID, title string, now time.Time) *models.NodesSources {
	src := &models.NodesSources{
		ID:            uuid.New(),
		NodeID:        n.ID,
		TranslationID: translationID,
		Title:         title,
		Discriminator: n.NodeTypeName,
		Fields:        models.FieldValues{},
	}
	src.Touch(now)
	return src
}

func (s *NodeService) checkNameFree(ctx context.Context, tx dbx.DBTX, name string) error {
	_, err := s.repomanager.Nodes(tx).GetByName(ctx, name)
	switch {
	case err == nil:
		return fmt.Errorf("%w: node name %s", common.ErrAlreadyExists, name)
	case errors.Is(err, common.ErrorNotFound):
		return nil
	}
	return err
}

func (s *NodeService) checkParent(ctx context.Context, tx dbx.DBTX, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	parent, err := s.repomanager.Nodes(tx).GetByID(ctx, *parentID)
	if err != nil {
		return fmt.Errorf("parent node: %w", err)
	}
	if parent.Sterile {
		return fmt.Errorf("%w: %s", common.ErrSterileNode, parent.NodeName)
	}
	return nil
}

func (s *NodeService) Get(ctx context.Context, id uuid.UUID) (*models.Node, error) {
	return s.repomanager.Nodes(s.conn()).GetByID(ctx, id)
}

func (s *NodeService) GetByName(ctx context.Context, name string) (*models.Node, error) {
	return s.repomanager.Nodes(s.conn()).GetByName(ctx, name)
}

// Children lists the children of parentID by position; nil lists the roots.
func (s *NodeService) Children(ctx context.Context, parentID *uuid.UUID) ([]*models.Node, error) {
	return s.repomanager.Nodes(s.conn()).Children(ctx, parentID)
}

// Ancestors lists the chain above id, closest first.
func (s *NodeService) Ancestors(ctx context.Context, id uuid.UUID) ([]*models.Node, error) {
	return s.repomanager.Nodes(s.conn()).Ancestors(ctx, id)
}

// Move reparents nodeID under newParentID and places it right after afterID,
// or first when afterID is nil. Placing a node under itself or one of its
// descendants fails with common.ErrInvalidHierarchy before anything is written.
func (s *NodeService) Move(ctx context.Context, nodeID uuid.UUID, newParentID, afterID *uuid.UUID) (*models.Node, error) {
	var moved *models.Node
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Nodes(tx)
		n, err := repo.GetByID(ctx, nodeID)
		if err != nil {
			return err
		}
		if err := s.checkNotDescendant(ctx, tx, nodeID, newParentID); err != nil {
			return err
		}
		if err := s.checkParent(ctx, tx, newParentID); err != nil {
			return err
		}
		if err := repo.LockChildren(ctx, newParentID); err != nil {
			return err
		}

		siblings, err := s.siblingsWithout(ctx, tx, newParentID, nodeID)
		if err != nil {
			return err
		}
		idx := -1
		if afterID != nil {
			idx = indexOf(siblings, func(o *models.Node) bool { return o.ID == *afterID })
			if idx < 0 {
				return fmt.Errorf("%w: %s is not a child of the target parent", common.ErrInvalidHierarchy, afterID)
			}
		}
		pos, err := placeAfter(siblings, idx, nodePosition, s.setNodePosition(ctx, tx))
		if err != nil {
			return err
		}

		n.ParentID = newParentID
		n.Position = pos
		n.Touch(s.now())
		moved = n
		return repo.Update(ctx, n)
	})
	if err != nil {
		s.log.Warn(ctx, "node move rejected", "node_id", nodeID, "error", err)
		return nil, err
	}
	s.log.Info(ctx, "node moved", "node_id", nodeID, "parent_id", newParentID, "position", moved.Position)
	s.dispatch(ctx, Event{Type: EventNodeMoved, NodeID: nodeID})
	return moved, nil
}

func (s *NodeService) checkNotDescendant(ctx context.Context, tx dbx.DBTX, nodeID uuid.UUID, newParentID *uuid.UUID) error {
	if newParentID == nil {
		return nil
	}
	if *newParentID == nodeID {
		return fmt.Errorf("%w: a node cannot be its own parent", common.ErrInvalidHierarchy)
	}
	ancestors, err := s.repomanager.Nodes(tx).Ancestors(ctx, *newParentID)
	if err != nil {
		return err
	}
	for _, a := range ancestors {
		if a.ID == nodeID {
			return fmt.Errorf("%w: %s is a descendant of %s", common.ErrInvalidHierarchy, newParentID, nodeID)
		}
	}
	return nil
}

func (s *NodeService) siblingsWithout(ctx context.Context, tx dbx.DBTX, parentID *uuid.UUID, exclude uuid.UUID) ([]*models.Node, error) {
	all, err := s.repomanager.Nodes(tx).Children(ctx, parentID)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, n := range all {
		if n.ID != exclude {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *NodeService) setNodePosition(ctx context.Context, tx dbx.DBTX) func(*models.Node, float64) error {
	repo := s.repomanager.Nodes(tx)
	return func(n *models.Node, p float64) error {
		n.Position = p
		return repo.Update(ctx, n)
	}
}

// Rebalance renumbers the children of parentID to 1, 2, 3 … keeping their order.
func (s *NodeService) Rebalance(ctx context.Context, parentID *uuid.UUID) (int, error) {
	var count int
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Nodes(tx)
		if err := repo.LockChildren(ctx, parentID); err != nil {
			return err
		}
		children, err := repo.Children(ctx, parentID)
		if err != nil {
			return err
		}
		count = len(children)
		return renumber(children, s.setNodePosition(ctx, tx))
	})
	if err != nil {
		return 0, err
	}
	s.log.Info(ctx, "children rebalanced", "parent_id", parentID, "count", count)
	return count, nil
}

// Delete removes a node with its subtree and everything hanging off it.
// Documents and translations survive.
func (s *NodeService) Delete(ctx context.Context, nodeID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Nodes(tx)
		n, err := repo.GetByID(ctx, nodeID)
		if err != nil {
			return err
		}
		if n.Locked {
			return fmt.Errorf("%w: %s", common.ErrNodeLocked, n.NodeName)
		}
		if err := repo.LockChildren(ctx, n.ParentID); err != nil {
			return err
		}
		return repo.Delete(ctx, nodeID)
	})
	if err != nil {
		s.log.Warn(ctx, "node delete rejected", "node_id", nodeID, "error", err)
		return err
	}
	s.log.Info(ctx, "node deleted", "node_id", nodeID)
	s.dispatch(ctx, Event{Type: EventNodeDeleted, NodeID: nodeID})
	return nil
}

// update loads nodeID, applies fn and saves the result in one transaction.
func (s *NodeService) update(ctx context.Context, nodeID uuid.UUID, what string, fn func(ctx context.Context, tx dbx.DBTX, n *models.Node) error) (*models.Node, error) {
	var out *models.Node
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Nodes(tx)
		n, err := repo.GetByID(ctx, nodeID)
		if err != nil {
			return err
		}
		if err := fn(ctx, tx, n); err != nil {
			return err
		}
		n.Touch(s.now())
		out = n
		return repo.Update(ctx, n)
	})
	if err != nil {
		s.log.Warn(ctx, "node update rejected", "node_id", nodeID, "change", what, "error", err)
		return nil, err
	}
	s.log.Info(ctx, "node updated", "node_id", nodeID, "change", what)
	s.dispatch(ctx, Event{Type: EventNodeUpdated, NodeID: nodeID})
	return out, nil
}

// SetHome makes nodeID the only home node.
func (s *NodeService) SetHome(ctx context.Context, nodeID uuid.UUID) (*models.Node, error) {
	return s.update(ctx, nodeID, "home", func(ctx context.Context, tx dbx.DBTX, n *models.Node) error {
		if err := s.repomanager.Nodes(tx).ClearHome(ctx); err != nil {
			return err
		}
		n.Home = true
		return nil
	})
}

func (s *NodeService) SetLocked(ctx context.Context, nodeID uuid.UUID, locked bool) (*models.Node, error) {
	return s.update(ctx, nodeID, "locked", func(_ context.Context, _ dbx.DBTX, n *models.Node) error {
		n.Locked = locked
		return nil
	})
}

func (s *NodeService) SetVisible(ctx context.Context, nodeID uuid.UUID, visible bool) (*models.Node, error) {
	return s.update(ctx, nodeID, "visible", func(_ context.Context, _ dbx.DBTX, n *models.Node) error {
		n.Visible = visible
		return nil
	})
}

func (s *NodeService) SetSterile(ctx context.Context, nodeID uuid.UUID, sterile bool) (*models.Node, error) {
	return s.update(ctx, nodeID, "sterile", func(_ context.Context, _ dbx.DBTX, n *models.Node) error {
		n.Sterile = sterile
		return nil
	})
}

// SetHideChildren makes the node govern the listing order of its children.
func (s *NodeService) SetHideChildren(ctx context.Context, nodeID uuid.UUID, hide bool) (*models.Node, error) {
	return s.update(ctx, nodeID, "hide_children", func(_ context.Context, _ dbx.DBTX, n *models.Node) error {
		n.HideChildren = hide
		return nil
	})
}

var childrenOrders = map[string]struct{}{
	models.OrderPosition: {}, models.OrderNodeName: {}, models.OrderCreatedAt: {},
	models.OrderUpdatedAt: {}, models.OrderPublishedAt: {},
}

func (s *NodeService) SetChildrenOrder(ctx context.Context, nodeID uuid.UUID, field, direction string) (*models.Node, error) {
	if _, ok := childrenOrders[field]; !ok {
		return nil, fmt.Errorf("%w: unknown children order %q", common.ErrorValidation, field)
	}
	if direction != models.SortAsc && direction != models.SortDesc {
		return nil, fmt.Errorf("%w: unknown sort direction %q", common.ErrorValidation, direction)
	}
	return s.update(ctx, nodeID, "children_order", func(_ context.Context, _ dbx.DBTX, n *models.Node) error {
		n.ChildrenOrder = field
		n.ChildrenOrderDirection = direction
		return nil
	})
}

// ApplyStatus moves the node to status to when the workflow allows it.
func (s *NodeService) ApplyStatus(ctx context.Context, nodeID uuid.UUID, to models.NodeStatus) (*models.Node, error) {
	return s.update(ctx, nodeID, "status", func(_ context.Context, _ dbx.DBTX, n *models.Node) error {
		return s.workflow.Transition(n, to)
	})
}

func (s *NodeService) AddStackType(ctx context.Context, nodeID uuid.UUID, typeName string) error {
	nt, err := s.registry.GetNodeType(ctx, typeName)
	if err != nil {
		return err
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Nodes(tx)
		if _, err := repo.GetByID(ctx, nodeID); err != nil {
			return err
		}
		return repo.AddStackType(ctx, &models.NodeStackType{NodeID: nodeID, NodeTypeName: nt.Name})
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "stack type added", "node_id", nodeID, "node_type", nt.Name)
	return nil
}

func (s *NodeService) RemoveStackType(ctx context.Context, nodeID uuid.UUID, typeName string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Nodes(tx).RemoveStackType(ctx, nodeID, typeName)
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "stack type removed", "node_id", nodeID, "node_type", typeName)
	return nil
}

func (s *NodeService) ListStackTypes(ctx context.Context, nodeID uuid.UUID) ([]string, error) {
	list, err := s.repomanager.Nodes(s.conn()).ListStackTypes(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(list))
	for i, st := range list {
		out[i] = st.NodeTypeName
	}
	return out, nil
}
