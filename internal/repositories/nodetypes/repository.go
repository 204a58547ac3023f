package nodetypes

import (
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

// Repository persists DB-resident NodeType definitions. Returned types carry
// their fields ordered by position.
type Repository interface {
	Create(ctx context.Context, t *models.NodeType) error
	Update(ctx context.Context, t *models.NodeType) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByName(ctx context.Context, name string) (*models.NodeType, error)
	List(ctx context.Context) ([]*models.NodeType, error)

	CreateField(ctx context.Context, f *models.NodeTypeField) error
	UpdateField(ctx context.Context, f *models.NodeTypeField) error
	DeleteField(ctx context.Context, id uuid.UUID) error
}
