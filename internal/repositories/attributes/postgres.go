// Package attributes persists cross-type attributes and their node values.
package attributes

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

const (
	attributeColumns = `id, code, type, searchable, universal, color, weight, group_id, default_realm_id, created_at, updated_at`
	valueColumns     = `id, attribute_id, node_id, realm_id, position, created_at, updated_at`
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateGroup(ctx context.Context, g *models.AttributeGroup) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attribute_groups (id, canonical_name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		g.ID, g.CanonicalName, g.CreatedAt, g.UpdatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) GetGroup(ctx context.Context, id uuid.UUID) (*models.AttributeGroup, error) {
	var g models.AttributeGroup
	err := r.db.QueryRowContext(ctx,
		`SELECT id, canonical_name, created_at, updated_at FROM attribute_groups WHERE id = $1`, id).
		Scan(&g.ID, &g.CanonicalName, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return &g, nil
}

func (r *PostgresRepository) SetGroupTranslation(ctx context.Context, gt *models.AttributeGroupTranslation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attribute_group_translations (id, attribute_group_id, translation_id, name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (attribute_group_id, translation_id) DO UPDATE SET name = EXCLUDED.name`,
		gt.ID, gt.GroupID, gt.TranslationID, gt.Name)
	return dbx.MapError(err)
}

func (r *PostgresRepository) GetGroupTranslation(ctx context.Context, groupID, translationID uuid.UUID) (*models.AttributeGroupTranslation, error) {
	var gt models.AttributeGroupTranslation
	err := r.db.QueryRowContext(ctx,
		`SELECT id, attribute_group_id, translation_id, name FROM attribute_group_translations
		WHERE attribute_group_id = $1 AND translation_id = $2`, groupID, translationID).
		Scan(&gt.ID, &gt.GroupID, &gt.TranslationID, &gt.Name)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return &gt, nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Attribute) error {
	query := `INSERT INTO attributes (` + attributeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Code, string(a.Type), a.Searchable, a.Universal, a.Color, a.Weight,
		dbx.NullUUID(a.GroupID), dbx.NullUUID(a.DefaultRealmID), a.CreatedAt, a.UpdatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) Update(ctx context.Context, a *models.Attribute) error {
	query := `UPDATE attributes SET
		code = $2, type = $3, searchable = $4, universal = $5, color = $6, weight = $7,
		group_id = $8, default_realm_id = $9, updated_at = $10
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		a.ID, a.Code, string(a.Type), a.Searchable, a.Universal, a.Color, a.Weight,
		dbx.NullUUID(a.GroupID), dbx.NullUUID(a.DefaultRealmID), a.UpdatedAt)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Attribute, error) {
	return scanAttributeOne(r.db.QueryRowContext(ctx, `SELECT `+attributeColumns+` FROM attributes WHERE id = $1`, id))
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*models.Attribute, error) {
	return scanAttributeOne(r.db.QueryRowContext(ctx, `SELECT `+attributeColumns+` FROM attributes WHERE code = $1`, code))
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Attribute, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+attributeColumns+` FROM attributes ORDER BY weight DESC, code`)
	if err != nil {
		return nil, fmt.Errorf("failed to select attributes: %w", err)
	}
	return dbx.CollectRows(rows, scanAttribute)
}

func (r *PostgresRepository) SetTranslation(ctx context.Context, at *models.AttributeTranslation) error {
	options := at.Options
	if options == nil {
		options = []string{}
	}
	data, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO attribute_translations (id, attribute_id, translation_id, label, options)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (attribute_id, translation_id)
		DO UPDATE SET label = EXCLUDED.label, options = EXCLUDED.options`,
		at.ID, at.AttributeID, at.TranslationID, at.Label, string(data))
	return dbx.MapError(err)
}

func (r *PostgresRepository) GetTranslation(ctx context.Context, attributeID, translationID uuid.UUID) (*models.AttributeTranslation, error) {
	var (
		at      models.AttributeTranslation
		options []byte
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, attribute_id, translation_id, label, options FROM attribute_translations
		WHERE attribute_id = $1 AND translation_id = $2`, attributeID, translationID).
		Scan(&at.ID, &at.AttributeID, &at.TranslationID, &at.Label, &options)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &at.Options); err != nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
	}
	return &at, nil
}

func (r *PostgresRepository) AddDocument(ctx context.Context, d *models.AttributeDocument) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attribute_documents (id, attribute_id, document_id, position) VALUES ($1, $2, $3, $4)`,
		d.ID, d.AttributeID, d.DocumentID, d.Position)
	return dbx.MapError(err)
}

func (r *PostgresRepository) ListDocuments(ctx context.Context, attributeID uuid.UUID) ([]*models.AttributeDocument, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, attribute_id, document_id, position FROM attribute_documents
		WHERE attribute_id = $1 ORDER BY position, id`, attributeID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attribute documents: %w", err)
	}
	return dbx.CollectRows(rows, func(s dbx.Scanner) (*models.AttributeDocument, error) {
		var d models.AttributeDocument
		if err := s.Scan(&d.ID, &d.AttributeID, &d.DocumentID, &d.Position); err != nil {
			return nil, err
		}
		return &d, nil
	})
}

func (r *PostgresRepository) CreateValue(ctx context.Context, v *models.AttributeValue) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attribute_values (`+valueColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.AttributeID, v.NodeID, dbx.NullUUID(v.RealmID), v.Position, v.CreatedAt, v.UpdatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) UpdateValue(ctx context.Context, v *models.AttributeValue) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE attribute_values SET realm_id = $2, position = $3, updated_at = $4 WHERE id = $1`,
		v.ID, dbx.NullUUID(v.RealmID), v.Position, v.UpdatedAt)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) GetValue(ctx context.Context, id uuid.UUID) (*models.AttributeValue, error) {
	v, err := scanValue(r.db.QueryRowContext(ctx, `SELECT `+valueColumns+` FROM attribute_values WHERE id = $1`, id))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return v, nil
}

func (r *PostgresRepository) DeleteValue(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attribute_values WHERE id = $1`, id)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) ListValues(ctx context.Context, nodeID uuid.UUID) ([]*models.AttributeValue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+valueColumns+` FROM attribute_values WHERE node_id = $1 ORDER BY position, id`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attribute values: %w", err)
	}
	return dbx.CollectRows(rows, scanValue)
}

func (r *PostgresRepository) LockValues(ctx context.Context, nodeID uuid.UUID) error {
	return dbx.AdvisoryLock(ctx, r.db, "attribute_values:"+nodeID.String())
}

func (r *PostgresRepository) SetValueTranslation(ctx context.Context, vt *models.AttributeValueTranslation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attribute_value_translations (id, attribute_value_id, translation_id, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (attribute_value_id, translation_id) DO UPDATE SET value = EXCLUDED.value`,
		vt.ID, vt.AttributeValueID, vt.TranslationID, vt.Value)
	return dbx.MapError(err)
}

func (r *PostgresRepository) GetValueTranslation(ctx context.Context, valueID, translationID uuid.UUID) (*models.AttributeValueTranslation, error) {
	vt, err := scanValueTranslation(r.db.QueryRowContext(ctx,
		`SELECT id, attribute_value_id, translation_id, value FROM attribute_value_translations
		WHERE attribute_value_id = $1 AND translation_id = $2`, valueID, translationID))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return vt, nil
}

func (r *PostgresRepository) ListValueTranslations(ctx context.Context, valueID uuid.UUID) ([]*models.AttributeValueTranslation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, attribute_value_id, translation_id, value FROM attribute_value_translations
		WHERE attribute_value_id = $1 ORDER BY translation_id`, valueID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attribute value translations: %w", err)
	}
	return dbx.CollectRows(rows, scanValueTranslation)
}

func scanAttribute(s dbx.Scanner) (*models.Attribute, error) {
	var (
		a            models.Attribute
		typ          string
		group, realm uuid.NullUUID
	)
	err := s.Scan(&a.ID, &a.Code, &typ, &a.Searchable, &a.Universal, &a.Color, &a.Weight,
		&group, &realm, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Type = models.AttributeType(typ)
	a.GroupID = dbx.UUIDPtr(group)
	a.DefaultRealmID = dbx.UUIDPtr(realm)
	return &a, nil
}

func scanAttributeOne(row *sql.Row) (*models.Attribute, error) {
	a, err := scanAttribute(row)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return a, nil
}

func scanValue(s dbx.Scanner) (*models.AttributeValue, error) {
	var (
		v     models.AttributeValue
		realm uuid.NullUUID
	)
	if err := s.Scan(&v.ID, &v.AttributeID, &v.NodeID, &realm, &v.Position, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.RealmID = dbx.UUIDPtr(realm)
	return &v, nil
}

func scanValueTranslation(s dbx.Scanner) (*models.AttributeValueTranslation, error) {
	var (
		vt    models.AttributeValueTranslation
		value sql.NullString
	)
	if err := s.Scan(&vt.ID, &vt.AttributeValueID, &vt.TranslationID, &value); err != nil {
		return nil, err
	}
	if value.Valid {
		vt.Value = &value.String
	}
	return &vt, nil
}
