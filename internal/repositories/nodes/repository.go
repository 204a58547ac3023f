package nodes

import (
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, n *models.Node) error
	Update(ctx context.Context, n *models.Node) error
	// Delete removes the node and, by cascade, its whole subtree.
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Node, error)
	GetByName(ctx context.Context, name string) (*models.Node, error)
	// Children lists the children of parentID (roots when nil) by position.
	Children(ctx context.Context, parentID *uuid.UUID) ([]*models.Node, error)
	// Ancestors lists the ancestors of id, closest first.
	Ancestors(ctx context.Context, id uuid.UUID) ([]*models.Node, error)
	// LockChildren serializes position writes under parentID until the
	// surrounding transaction ends.
	LockChildren(ctx context.Context, parentID *uuid.UUID) error
	// ClearHome unsets the home flag on every node.
	ClearHome(ctx context.Context) error
	CountByType(ctx context.Context, typeName string) (int, error)

	AddStackType(ctx context.Context, st *models.NodeStackType) error
	RemoveStackType(ctx context.Context, nodeID uuid.UUID, typeName string) error
	ListStackTypes(ctx context.Context, nodeID uuid.UUID) ([]*models.NodeStackType, error)
}

// ChildrenLockKey names the advisory lock guarding positions under parentID.
func ChildrenLockKey(parentID *uuid.UUID) string {
	if parentID == nil {
		return "nodes:children:root"
	}
	return "nodes:children:" + parentID.String()
}
