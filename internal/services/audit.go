package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/dmitrijs2005/nodestore/internal/repositories/repomanager"
	"github.com/dmitrijs2005/nodestore/internal/schema"
	"github.com/google/uuid"
)

// Auditor records changes of versioned source fields.
type Auditor struct {
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewAuditor(m repomanager.RepositoryManager, clock func() time.Time) *Auditor {
	if clock == nil {
		clock = time.Now
	}
	return &Auditor{repomanager: m, now: clock}
}

// Record appends one entry per versioned field whose value differs between
// before and after. It must run inside the transaction writing the source.
func (a *Auditor) Record(ctx context.Context, tx dbx.DBTX, src *models.NodesSources, d *schema.Descriptor, before, after models.FieldValues) (int, error) {
	repo := a.repomanager.AuditLogs(tx)
	at := a.now().UTC()
	n := 0
	for _, f := range d.VersionedFields() {
		oldJSON, err := encodeAuditValue(before[f.Name])
		if err != nil {
			return n, err
		}
		newJSON, err := encodeAuditValue(after[f.Name])
		if err != nil {
			return n, err
		}
		if bytes.Equal(oldJSON, newJSON) {
			continue
		}
		entry := &models.AuditEntry{
			ID:            uuid.New(),
			SourceID:      src.ID,
			TranslationID: src.TranslationID,
			FieldName:     f.Name,
			OldValue:      oldJSON,
			NewValue:      newJSON,
			LoggedAt:      at,
		}
		if err := repo.Append(ctx, entry); err != nil {
			return n, fmt.Errorf("append audit entry: %w", err)
		}
		n++
	}
	return n, nil
}

func (a *Auditor) ListBySource(ctx context.Context, db dbx.DBTX, sourceID uuid.UUID) ([]*models.AuditEntry, error) {
	return a.repomanager.AuditLogs(db).ListBySource(ctx, sourceID)
}

func encodeAuditValue(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode audit value: %w", err)
	}
	return b, nil
}
