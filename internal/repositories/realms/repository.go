package realms

import (
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *models.Realm) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Realm, error)
	GetByName(ctx context.Context, name string) (*models.Realm, error)
	List(ctx context.Context) ([]*models.Realm, error)

	Bind(ctx context.Context, rn *models.RealmNode) error
	Unbind(ctx context.Context, nodeID, realmID uuid.UUID) error
	// ListBindings lists the realm bindings carried by one node.
	ListBindings(ctx context.Context, nodeID uuid.UUID) ([]*models.RealmNode, error)
}
