// Package auditlogs persists the change log of versioned source fields.
package auditlogs

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, e *models.AuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO log_entries (id, ns_id, translation_id, field_name, old_value, new_value, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.SourceID, e.TranslationID, e.FieldName, jsonArg(e.OldValue), jsonArg(e.NewValue), e.LoggedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) ListBySource(ctx context.Context, sourceID uuid.UUID) ([]*models.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ns_id, translation_id, field_name, old_value, new_value, logged_at
		FROM log_entries WHERE ns_id = $1 ORDER BY logged_at DESC, id DESC`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to select log entries: %w", err)
	}
	return dbx.CollectRows(rows, func(s dbx.Scanner) (*models.AuditEntry, error) {
		var e models.AuditEntry
		if err := s.Scan(&e.ID, &e.SourceID, &e.TranslationID, &e.FieldName, &e.OldValue, &e.NewValue, &e.LoggedAt); err != nil {
			return nil, err
		}
		return &e, nil
	})
}

// jsonArg maps an empty document to SQL NULL.
func jsonArg(v []byte) any {
	if len(v) == 0 {
		return nil
	}
	return string(v)
}
