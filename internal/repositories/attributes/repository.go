package attributes

import (
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type Repository interface {
	CreateGroup(ctx context.Context, g *models.AttributeGroup) error
	GetGroup(ctx context.Context, id uuid.UUID) (*models.AttributeGroup, error)
	SetGroupTranslation(ctx context.Context, gt *models.AttributeGroupTranslation) error
	GetGroupTranslation(ctx context.Context, groupID, translationID uuid.UUID) (*models.AttributeGroupTranslation, error)

	Create(ctx context.Context, a *models.Attribute) error
	Update(ctx context.Context, a *models.Attribute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Attribute, error)
	GetByCode(ctx context.Context, code string) (*models.Attribute, error)
	List(ctx context.Context) ([]*models.Attribute, error)

	SetTranslation(ctx context.Context, at *models.AttributeTranslation) error
	GetTranslation(ctx context.Context, attributeID, translationID uuid.UUID) (*models.AttributeTranslation, error)

	AddDocument(ctx context.Context, d *models.AttributeDocument) error
	ListDocuments(ctx context.Context, attributeID uuid.UUID) ([]*models.AttributeDocument, error)

	CreateValue(ctx context.Context, v *models.AttributeValue) error
	UpdateValue(ctx context.Context, v *models.AttributeValue) error
	GetValue(ctx context.Context, id uuid.UUID) (*models.AttributeValue, error)
	DeleteValue(ctx context.Context, id uuid.UUID) error
	// ListValues lists the attribute values of a node by position.
	ListValues(ctx context.Context, nodeID uuid.UUID) ([]*models.AttributeValue, error)
	// LockValues serializes value position writes of one node.
	LockValues(ctx context.Context, nodeID uuid.UUID) error

	SetValueTranslation(ctx context.Context, vt *models.AttributeValueTranslation) error
	GetValueTranslation(ctx context.Context, valueID, translationID uuid.UUID) (*models.AttributeValueTranslation, error)
	ListValueTranslations(ctx context.Context, valueID uuid.UUID) ([]*models.AttributeValueTranslation, error)
}
