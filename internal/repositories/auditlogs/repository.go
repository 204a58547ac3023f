package auditlogs

import (
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type Repository interface {
	Append(ctx context.Context, e *models.AuditEntry) error
	// ListBySource returns the entries of one source, newest first.
	ListBySource(ctx context.Context, sourceID uuid.UUID) ([]*models.AuditEntry, error)
}
