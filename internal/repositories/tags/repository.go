package tags

import (
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, t *models.Tag) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	// SetTranslation inserts or replaces the tag's name in one translation.
	SetTranslation(ctx context.Context, tt *models.TagTranslation) error
	GetTranslation(ctx context.Context, tagID, translationID uuid.UUID) (*models.TagTranslation, error)

	AddNodeTag(ctx context.Context, nt *models.NodesTags) error
	UpdateNodeTagPosition(ctx context.Context, id uuid.UUID, position float64) error
	RemoveNodeTag(ctx context.Context, nodeID, tagID uuid.UUID) error
	// ListNodeTags lists the tag links of a node by position.
	ListNodeTags(ctx context.Context, nodeID uuid.UUID) ([]*models.NodesTags, error)
	// LockNodeTags serializes tag position writes of one node.
	LockNodeTags(ctx context.Context, nodeID uuid.UUID) error
}
