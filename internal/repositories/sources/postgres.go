// Package sources persists localized node payloads, their field-name keyed
// attachments and url aliases.
package sources

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/dmitrijs2005/nodestore/internal/schema"
	"github.com/google/uuid"
)

const columns = `id, node_id, translation_id, title, published_at, meta_title, meta_description,
	no_index, discriminator, fields, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.NodesSources) error {
	fields, err := schema.MarshalFields(s.Fields)
	if err != nil {
		return err
	}
	query := `INSERT INTO nodes_sources (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.NodeID, s.TranslationID, s.Title, s.PublishedAt, s.MetaTitle, s.MetaDescription,
		s.NoIndex, s.Discriminator, string(fields), s.CreatedAt, s.UpdatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) Update(ctx context.Context, s *models.NodesSources) error {
	fields, err := schema.MarshalFields(s.Fields)
	if err != nil {
		return err
	}
	query := `UPDATE nodes_sources SET
		title = $2, published_at = $3, meta_title = $4, meta_description = $5, no_index = $6,
		fields = $7, updated_at = $8
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		s.ID, s.Title, s.PublishedAt, s.MetaTitle, s.MetaDescription, s.NoIndex,
		string(fields), s.UpdatedAt)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM nodes_sources WHERE id = $1`, id)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.NodesSources, error) {
	return scanOne(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM nodes_sources WHERE id = $1`, id))
}

func (r *PostgresRepository) GetByNodeAndTranslation(ctx context.Context, nodeID, translationID uuid.UUID) (*models.NodesSources, error) {
	query := `SELECT ` + columns + ` FROM nodes_sources WHERE node_id = $1 AND translation_id = $2`
	return scanOne(r.db.QueryRowContext(ctx, query, nodeID, translationID))
}

func (r *PostgresRepository) ListByNode(ctx context.Context, nodeID uuid.UUID) ([]*models.NodesSources, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columns+` FROM nodes_sources WHERE node_id = $1 ORDER BY created_at, id`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to select sources: %w", err)
	}
	return dbx.CollectRows(rows, scan)
}

func (r *PostgresRepository) AddDocument(ctx context.Context, d *models.NodesSourcesDocuments) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO nodes_sources_documents (id, ns_id, document_id, field_name, position)
		VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.SourceID, d.DocumentID, d.FieldName, d.Position)
	return dbx.MapError(err)
}

func (r *PostgresRepository) RemoveDocument(ctx context.Context, sourceID uuid.UUID, fieldName string, documentID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM nodes_sources_documents WHERE ns_id = $1 AND field_name = $2 AND document_id = $3`,
		sourceID, fieldName, documentID)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

const documentColumns = `id, ns_id, document_id, field_name, position`

func (r *PostgresRepository) ListDocuments(ctx context.Context, sourceID uuid.UUID, fieldName string) ([]*models.NodesSourcesDocuments, error) {
	return r.documents(ctx, `SELECT `+documentColumns+` FROM nodes_sources_documents
		WHERE ns_id = $1 AND field_name = $2 ORDER BY position, id`, sourceID, fieldName)
}

func (r *PostgresRepository) ListAllDocuments(ctx context.Context, sourceID uuid.UUID) ([]*models.NodesSourcesDocuments, error) {
	return r.documents(ctx, `SELECT `+documentColumns+` FROM nodes_sources_documents
		WHERE ns_id = $1 ORDER BY field_name, position, id`, sourceID)
}

func (r *PostgresRepository) documents(ctx context.Context, query string, args ...any) ([]*models.NodesSourcesDocuments, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select source documents: %w", err)
	}
	return dbx.CollectRows(rows, func(s dbx.Scanner) (*models.NodesSourcesDocuments, error) {
		var d models.NodesSourcesDocuments
		if err := s.Scan(&d.ID, &d.SourceID, &d.DocumentID, &d.FieldName, &d.Position); err != nil {
			return nil, err
		}
		return &d, nil
	})
}

func (r *PostgresRepository) ReplaceNodeReferences(ctx context.Context, nodeID uuid.UUID, fieldName string, refs []*models.NodesToNodes) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM nodes_to_nodes WHERE node_a_id = $1 AND field_name = $2`, nodeID, fieldName)
	if err != nil {
		return dbx.MapError(err)
	}
	for _, ref := range refs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO nodes_to_nodes (id, node_a_id, node_b_id, field_name, position)
			VALUES ($1, $2, $3, $4, $5)`,
			ref.ID, nodeID, ref.NodeBID, fieldName, ref.Position)
		if err != nil {
			return dbx.MapError(err)
		}
	}
	return nil
}

const referenceColumns = `id, node_a_id, node_b_id, field_name, position`

func (r *PostgresRepository) ListNodeReferences(ctx context.Context, nodeID uuid.UUID, fieldName string) ([]*models.NodesToNodes, error) {
	return r.references(ctx, `SELECT `+referenceColumns+` FROM nodes_to_nodes
		WHERE node_a_id = $1 AND field_name = $2 ORDER BY position, id`, nodeID, fieldName)
}

func (r *PostgresRepository) ListAllNodeReferences(ctx context.Context, nodeID uuid.UUID) ([]*models.NodesToNodes, error) {
	return r.references(ctx, `SELECT `+referenceColumns+` FROM nodes_to_nodes
		WHERE node_a_id = $1 ORDER BY field_name, position, id`, nodeID)
}

func (r *PostgresRepository) references(ctx context.Context, query string, args ...any) ([]*models.NodesToNodes, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select node references: %w", err)
	}
	return dbx.CollectRows(rows, func(s dbx.Scanner) (*models.NodesToNodes, error) {
		var n models.NodesToNodes
		if err := s.Scan(&n.ID, &n.NodeAID, &n.NodeBID, &n.FieldName, &n.Position); err != nil {
			return nil, err
		}
		return &n, nil
	})
}

func (r *PostgresRepository) AddCustomForm(ctx context.Context, cf *models.NodesCustomForms) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO nodes_custom_forms (id, node_id, custom_form_id, field_name, position)
		VALUES ($1, $2, $3, $4, $5)`,
		cf.ID, cf.NodeID, cf.CustomFormID, cf.FieldName, cf.Position)
	return dbx.MapError(err)
}

const customFormColumns = `id, node_id, custom_form_id, field_name, position`

func (r *PostgresRepository) ListCustomForms(ctx context.Context, nodeID uuid.UUID, fieldName string) ([]*models.NodesCustomForms, error) {
	return r.customForms(ctx, `SELECT `+customFormColumns+` FROM nodes_custom_forms
		WHERE node_id = $1 AND field_name = $2 ORDER BY position, id`, nodeID, fieldName)
}

func (r *PostgresRepository) ListAllCustomForms(ctx context.Context, nodeID uuid.UUID) ([]*models.NodesCustomForms, error) {
	return r.customForms(ctx, `SELECT `+customFormColumns+` FROM nodes_custom_forms
		WHERE node_id = $1 ORDER BY field_name, position, id`, nodeID)
}

func (r *PostgresRepository) customForms(ctx context.Context, query string, args ...any) ([]*models.NodesCustomForms, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select custom forms: %w", err)
	}
	return dbx.CollectRows(rows, func(s dbx.Scanner) (*models.NodesCustomForms, error) {
		var cf models.NodesCustomForms
		if err := s.Scan(&cf.ID, &cf.NodeID, &cf.CustomFormID, &cf.FieldName, &cf.Position); err != nil {
			return nil, err
		}
		return &cf, nil
	})
}

func (r *PostgresRepository) AddUrlAlias(ctx context.Context, a *models.UrlAlias) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO url_aliases (id, ns_id, alias) VALUES ($1, $2, $3)`, a.ID, a.SourceID, a.Alias)
	return dbx.MapError(err)
}

// ListUrlAliases relies on alias ids being time ordered (UUIDv7).
func (r *PostgresRepository) ListUrlAliases(ctx context.Context, sourceID uuid.UUID) ([]*models.UrlAlias, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ns_id, alias FROM url_aliases WHERE ns_id = $1 ORDER BY id`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to select url aliases: %w", err)
	}
	return dbx.CollectRows(rows, scanAlias)
}

func (r *PostgresRepository) GetUrlAlias(ctx context.Context, alias string) (*models.UrlAlias, error) {
	a, err := scanAlias(r.db.QueryRowContext(ctx, `SELECT id, ns_id, alias FROM url_aliases WHERE alias = $1`, alias))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return a, nil
}

func scanAlias(s dbx.Scanner) (*models.UrlAlias, error) {
	var a models.UrlAlias
	if err := s.Scan(&a.ID, &a.SourceID, &a.Alias); err != nil {
		return nil, err
	}
	return &a, nil
}

func scan(s dbx.Scanner) (*models.NodesSources, error) {
	var (
		src         models.NodesSources
		publishedAt sql.NullTime
		fields      []byte
	)
	err := s.Scan(&src.ID, &src.NodeID, &src.TranslationID, &src.Title, &publishedAt, &src.MetaTitle,
		&src.MetaDescription, &src.NoIndex, &src.Discriminator, &fields, &src.CreatedAt, &src.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		src.PublishedAt = &t
	}
	if src.Fields, err = schema.UnmarshalFields(fields); err != nil {
		return nil, err
	}
	return &src, nil
}

func scanOne(row *sql.Row) (*models.NodesSources, error) {
	s, err := scan(row)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return s, nil
}
