package documents

import (
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

// Repository keeps the reference records of documents and custom forms.
// File storage itself lives outside the store.
type Repository interface {
	Create(ctx context.Context, d *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	CreateCustomForm(ctx context.Context, f *models.CustomForm) error
	GetCustomForm(ctx context.Context, id uuid.UUID) (*models.CustomForm, error)
}
