package translations

import (
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, t *models.Translation) error
	Update(ctx context.Context, t *models.Translation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Translation, error)
	// GetByLocale matches either the locale or the override locale.
	GetByLocale(ctx context.Context, locale string) (*models.Translation, error)
	GetDefault(ctx context.Context) (*models.Translation, error)
	// ClearDefault unsets the default flag on every translation.
	ClearDefault(ctx context.Context) error
	List(ctx context.Context) ([]*models.Translation, error)
}
