package sources

import (
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

// Repository persists sources and their side rows. Side rows are keyed by
// field name only; callers validate names against the schema first.
type Repository interface {
	Create(ctx context.Context, s *models.NodesSources) error
	Update(ctx context.Context, s *models.NodesSources) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.NodesSources, error)
	GetByNodeAndTranslation(ctx context.Context, nodeID, translationID uuid.UUID) (*models.NodesSources, error)
	ListByNode(ctx context.Context, nodeID uuid.UUID) ([]*models.NodesSources, error)

	AddDocument(ctx context.Context, d *models.NodesSourcesDocuments) error
	RemoveDocument(ctx context.Context, sourceID uuid.UUID, fieldName string, documentID uuid.UUID) error
	ListDocuments(ctx context.Context, sourceID uuid.UUID, fieldName string) ([]*models.NodesSourcesDocuments, error)
	ListAllDocuments(ctx context.Context, sourceID uuid.UUID) ([]*models.NodesSourcesDocuments, error)

	// ReplaceNodeReferences swaps the whole ordered reference list of one field.
	ReplaceNodeReferences(ctx context.Context, nodeID uuid.UUID, fieldName string, refs []*models.NodesToNodes) error
	ListNodeReferences(ctx context.Context, nodeID uuid.UUID, fieldName string) ([]*models.NodesToNodes, error)
	ListAllNodeReferences(ctx context.Context, nodeID uuid.UUID) ([]*models.NodesToNodes, error)

	AddCustomForm(ctx context.Context, cf *models.NodesCustomForms) error
	ListCustomForms(ctx context.Context, nodeID uuid.UUID, fieldName string) ([]*models.NodesCustomForms, error)
	ListAllCustomForms(ctx context.Context, nodeID uuid.UUID) ([]*models.NodesCustomForms, error)

	AddUrlAlias(ctx context.Context, a *models.UrlAlias) error
	// ListUrlAliases lists aliases in creation order.
	ListUrlAliases(ctx context.Context, sourceID uuid.UUID) ([]*models.UrlAlias, error)
	GetUrlAlias(ctx context.Context, alias string) (*models.UrlAlias, error)
}
