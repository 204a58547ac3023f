// Package documents persists document and custom form references.
package documents

import (
	"context"

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

func (r *PostgresRepository) Create(ctx context.Context, d *models.Document) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, mime_type, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.Filename, d.MimeType, d.CreatedAt, d.UpdatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var d models.Document
	err := r.db.QueryRowContext(ctx,
		`SELECT id, filename, mime_type, created_at, updated_at FROM documents WHERE id = $1`, id).
		Scan(&d.ID, &d.Filename, &d.MimeType, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return &d, nil
}

func (r *PostgresRepository) CreateCustomForm(ctx context.Context, f *models.CustomForm) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO custom_forms (id, name, display_name, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		f.ID, f.Name, f.DisplayName, f.CreatedAt, f.UpdatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) GetCustomForm(ctx context.Context, id uuid.UUID) (*models.CustomForm, error) {
	var f models.CustomForm
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, display_name, created_at, updated_at FROM custom_forms WHERE id = $1`, id).
		Scan(&f.ID, &f.Name, &f.DisplayName, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return &f, nil
}
