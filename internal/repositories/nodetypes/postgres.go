// Package nodetypes persists NodeType definitions kept in the database.
package nodetypes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

const typeColumns = `id, name, display_name, description, color, visible, publishable, reachable,
	hiding_nodes, hiding_non_reachable_nodes, attributable, sorting_attributes_by_weight,
	searchable, default_ttl, created_at, updated_at`

const fieldColumns = `id, node_type_id, name, label, type, description, placeholder, group_name,
	position, universal, exclude_from_search, indexed, visible, required, versioned,
	min_length, max_length, default_values, serialization_groups, serialization_exclude,
	serialization_max_depth`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the type and every field it carries.
func (r *PostgresRepository) Create(ctx context.Context, t *models.NodeType) error {
	query := `INSERT INTO node_types (` + typeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.DisplayName, t.Description, t.Color, t.Visible, t.Publishable, t.Reachable,
		t.HidingNodes, t.HidingNonReachableNodes, t.Attributable, t.SortingAttributesByWeight,
		t.Searchable, t.DefaultTTL, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return dbx.MapError(err)
	}

	for _, f := range t.Fields {
		f.NodeTypeID = t.ID
		if err := r.CreateField(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, t *models.NodeType) error {
	query := `UPDATE node_types SET
		display_name = $2, description = $3, color = $4, visible = $5, publishable = $6,
		reachable = $7, hiding_nodes = $8, hiding_non_reachable_nodes = $9, attributable = $10,
		sorting_attributes_by_weight = $11, searchable = $12, default_ttl = $13, updated_at = $14
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		t.ID, t.DisplayName, t.Description, t.Color, t.Visible, t.Publishable,
		t.Reachable, t.HidingNodes, t.HidingNonReachableNodes, t.Attributable,
		t.SortingAttributesByWeight, t.Searchable, t.DefaultTTL, t.UpdatedAt)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

// Delete removes the type; its fields go with it by cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM node_types WHERE id = $1`, id)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.NodeType, error) {
	query := `SELECT ` + typeColumns + ` FROM node_types WHERE name = $1`
	t, err := scanType(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	if t.Fields, err = r.fields(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns every type with its fields; fields are loaded in one query.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.NodeType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+typeColumns+` FROM node_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to select node types: %w", err)
	}
	types, err := dbx.CollectRows(rows, scanType)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return types, nil
	}

	rows, err = r.db.QueryContext(ctx, `SELECT `+fieldColumns+` FROM node_type_fields ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to select node type fields: %w", err)
	}
	fields, err := dbx.CollectRows(rows, scanField)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.NodeType, len(types))
	for _, t := range types {
		byID[t.ID] = t
	}
	for _, f := range fields {
		if t, ok := byID[f.NodeTypeID]; ok {
			t.Fields = append(t.Fields, f)
		}
	}
	return types, nil
}

func (r *PostgresRepository) fields(ctx context.Context, typeID uuid.UUID) ([]*models.NodeTypeField, error) {
	query := `SELECT ` + fieldColumns + ` FROM node_type_fields WHERE node_type_id = $1 ORDER BY position, name`
	rows, err := r.db.QueryContext(ctx, query, typeID)
	if err != nil {
		return nil, fmt.Errorf("failed to select node type fields: %w", err)
	}
	return dbx.CollectRows(rows, scanField)
}

func (r *PostgresRepository) CreateField(ctx context.Context, f *models.NodeTypeField) error {
	defaults, groups, err := encodeLists(f)
	if err != nil {
		return err
	}
	query := `INSERT INTO node_type_fields (` + fieldColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	_, err = r.db.ExecContext(ctx, query,
		f.ID, f.NodeTypeID, f.Name, f.Label, string(f.Type), f.Description, f.Placeholder, f.GroupName,
		f.Position, f.Universal, f.ExcludeFromSearch, f.Indexed, f.Visible, f.Required, f.Versioned,
		f.MinLength, f.MaxLength, defaults, groups, f.SerializationExclude,
		f.SerializationMaxDepth)
	return dbx.MapError(err)
}

func (r *PostgresRepository) UpdateField(ctx context.Context, f *models.NodeTypeField) error {
	defaults, groups, err := encodeLists(f)
	if err != nil {
		return err
	}
	query := `UPDATE node_type_fields SET
		label = $2, type = $3, description = $4, placeholder = $5, group_name = $6, position = $7,
		universal = $8, exclude_from_search = $9, indexed = $10, visible = $11, required = $12,
		versioned = $13, min_length = $14, max_length = $15, default_values = $16,
		serialization_groups = $17, serialization_exclude = $18, serialization_max_depth = $19
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		f.ID, f.Label, string(f.Type), f.Description, f.Placeholder, f.GroupName, f.Position,
		f.Universal, f.ExcludeFromSearch, f.Indexed, f.Visible, f.Required,
		f.Versioned, f.MinLength, f.MaxLength, defaults,
		groups, f.SerializationExclude, f.SerializationMaxDepth)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) DeleteField(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM node_type_fields WHERE id = $1`, id)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

func encodeLists(f *models.NodeTypeField) (string, string, error) {
	defaults, err := json.Marshal(nonNil(f.DefaultValues))
	if err != nil {
		return "", "", fmt.Errorf("encode default values: %w", err)
	}
	groups, err := json.Marshal(nonNil(f.SerializationGroups))
	if err != nil {
		return "", "", fmt.Errorf("encode serialization groups: %w", err)
	}
	return string(defaults), string(groups), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanType(s dbx.Scanner) (*models.NodeType, error) {
	var t models.NodeType
	err := s.Scan(&t.ID, &t.Name, &t.DisplayName, &t.Description, &t.Color, &t.Visible, &t.Publishable,
		&t.Reachable, &t.HidingNodes, &t.HidingNonReachableNodes, &t.Attributable,
		&t.SortingAttributesByWeight, &t.Searchable, &t.DefaultTTL, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanField(s dbx.Scanner) (*models.NodeTypeField, error) {
	var (
		f                models.NodeTypeField
		typ              string
		defaults, groups []byte
	)
	err := s.Scan(&f.ID, &f.NodeTypeID, &f.Name, &f.Label, &typ, &f.Description, &f.Placeholder,
		&f.GroupName, &f.Position, &f.Universal, &f.ExcludeFromSearch, &f.Indexed, &f.Visible,
		&f.Required, &f.Versioned, &f.MinLength, &f.MaxLength, &defaults, &groups,
		&f.SerializationExclude, &f.SerializationMaxDepth)
	if err != nil {
		return nil, err
	}
	f.Type = models.FieldType(typ)
	if len(defaults) > 0 {
		if err := json.Unmarshal(defaults, &f.DefaultValues); err != nil {
			return nil, fmt.Errorf("decode default values: %w", err)
		}
	}
	if len(groups) > 0 {
		if err := json.Unmarshal(groups, &f.SerializationGroups); err != nil {
			return nil, fmt.Errorf("decode serialization groups: %w", err)
		}
	}
	return &f, nil
}
