package memory

import (
	"bytes"
	"context"

	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type AuditLogRepository struct{ s *Store }

func NewAuditLogRepository(s *Store) *AuditLogRepository {
	return &AuditLogRepository{s: s}
}

func (r *AuditLogRepository) Append(_ context.Context, e *models.AuditEntry) error {
	return r.s.write(func(a *arena) error {
		if _, ok := a.sources[e.SourceID]; !ok {
			return notFound("source", e.SourceID)
		}
		a.audit[e.ID] = copyAudit(e)
		return nil
	})
}

// ListBySource returns the newest entries first.
func (r *AuditLogRepository) ListBySource(_ context.Context, sourceID uuid.UUID) ([]*models.AuditEntry, error) {
	var out []*models.AuditEntry
	err := r.s.read(func(a *arena) error {
		out = collect(a.audit,
			func(e *models.AuditEntry) bool { return e.SourceID == sourceID },
			copyAudit,
			func(x, y *models.AuditEntry) bool {
				if !x.LoggedAt.Equal(y.LoggedAt) {
					return x.LoggedAt.After(y.LoggedAt)
				}
				return bytes.Compare(x.ID[:], y.ID[:]) > 0
			})
		return nil
	})
	return out, err
}
