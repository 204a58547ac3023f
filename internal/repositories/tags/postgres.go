// Package tags persists tags and their ordered links to nodes.
package tags

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

const columns = `id, tag_name, parent_id, color, visible, locked, position, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Tag) error {
	query := `INSERT INTO tags (` + columns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.TagName, dbx.NullUUID(t.ParentID), t.Color, t.Visible, t.Locked, t.Position, t.CreatedAt, t.UpdatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM tags WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM tags WHERE tag_name = $1`, name)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Tag, error) {
	var (
		t      models.Tag
		parent uuid.NullUUID
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&t.ID, &t.TagName, &parent, &t.Color, &t.Visible,
		&t.Locked, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	t.ParentID = dbx.UUIDPtr(parent)
	return &t, nil
}

func (r *PostgresRepository) SetTranslation(ctx context.Context, tt *models.TagTranslation) error {
	query := `INSERT INTO tags_translations (id, tag_id, translation_id, name, description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tag_id, translation_id)
		DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description`
	_, err := r.db.ExecContext(ctx, query, tt.ID, tt.TagID, tt.TranslationID, tt.Name, tt.Description)
	return dbx.MapError(err)
}

func (r *PostgresRepository) GetTranslation(ctx context.Context, tagID, translationID uuid.UUID) (*models.TagTranslation, error) {
	query := `SELECT id, tag_id, translation_id, name, description FROM tags_translations
		WHERE tag_id = $1 AND translation_id = $2`
	var tt models.TagTranslation
	err := r.db.QueryRowContext(ctx, query, tagID, translationID).
		Scan(&tt.ID, &tt.TagID, &tt.TranslationID, &tt.Name, &tt.Description)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return &tt, nil
}

func (r *PostgresRepository) AddNodeTag(ctx context.Context, nt *models.NodesTags) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO nodes_tags (id, node_id, tag_id, position) VALUES ($1, $2, $3, $4)`,
		nt.ID, nt.NodeID, nt.TagID, nt.Position)
	return dbx.MapError(err)
}

func (r *PostgresRepository) UpdateNodeTagPosition(ctx context.Context, id uuid.UUID, position float64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE nodes_tags SET position = $2 WHERE id = $1`, id, position)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) RemoveNodeTag(ctx context.Context, nodeID, tagID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM nodes_tags WHERE node_id = $1 AND tag_id = $2`, nodeID, tagID)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) ListNodeTags(ctx context.Context, nodeID uuid.UUID) ([]*models.NodesTags, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, node_id, tag_id, position FROM nodes_tags WHERE node_id = $1 ORDER BY position, id`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to select node tags: %w", err)
	}
	return dbx.CollectRows(rows, func(s dbx.Scanner) (*models.NodesTags, error) {
		var nt models.NodesTags
		if err := s.Scan(&nt.ID, &nt.NodeID, &nt.TagID, &nt.Position); err != nil {
			return nil, err
		}
		return &nt, nil
	})
}

func (r *PostgresRepository) LockNodeTags(ctx context.Context, nodeID uuid.UUID) error {
	return dbx.AdvisoryLock(ctx, r.db, "nodes_tags:"+nodeID.String())
}
