// Package translations persists the locale catalog.
package translations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

const columns = `id, name, locale, override_locale, default_translation, available, created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Translation) error {
	query := `INSERT INTO translations (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Locale, t.OverrideLocale, t.DefaultTranslation, t.Available, t.CreatedAt, t.UpdatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) Update(ctx context.Context, t *models.Translation) error {
	query := `UPDATE translations
		SET name = $2, locale = $3, override_locale = $4, default_translation = $5, available = $6, updated_at = $7
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Locale, t.OverrideLocale, t.DefaultTranslation, t.Available, t.UpdatedAt)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Translation, error) {
	query := `SELECT ` + columns + ` FROM translations WHERE id = $1`
	return scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByLocale(ctx context.Context, locale string) (*models.Translation, error) {
	query := `SELECT ` + columns + ` FROM translations
		WHERE locale = $1 OR override_locale = $1
		ORDER BY (locale = $1) DESC
		LIMIT 1`
	return scanOne(r.db.QueryRowContext(ctx, query, locale))
}

func (r *PostgresRepository) GetDefault(ctx context.Context) (*models.Translation, error) {
	query := `SELECT ` + columns + ` FROM translations
		WHERE default_translation AND available
		LIMIT 1`
	return scanOne(r.db.QueryRowContext(ctx, query))
}

func (r *PostgresRepository) ClearDefault(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `UPDATE translations SET default_translation = FALSE WHERE default_translation`)
	return dbx.MapError(err)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Translation, error) {
	query := `SELECT ` + columns + ` FROM translations ORDER BY default_translation DESC, locale`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select translations: %w", err)
	}
	return dbx.CollectRows(rows, scan)
}

func scan(s dbx.Scanner) (*models.Translation, error) {
	var (
		t        models.Translation
		override sql.NullString
	)
	err := s.Scan(&t.ID, &t.Name, &t.Locale, &override, &t.DefaultTranslation, &t.Available, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if override.Valid {
		t.OverrideLocale = &override.String
	}
	return &t, nil
}

func scanOne(row *sql.Row) (*models.Translation, error) {
	t, err := scan(row)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return t, nil
}
