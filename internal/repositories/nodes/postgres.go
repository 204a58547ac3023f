// Package nodes persists the node tree.
package nodes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

const columns = `id, node_name, parent_id, node_type_name, status, visible, home, locked,
	hide_children, sterile, dynamic_node_name, ttl, children_order, children_order_direction,
	position, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Node) error {
	query := `INSERT INTO nodes (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.NodeName, dbx.NullUUID(n.ParentID), n.NodeTypeName, int(n.Status), n.Visible, n.Home, n.Locked,
		n.HideChildren, n.Sterile, n.DynamicNodeName, n.TTL, n.ChildrenOrder, n.ChildrenOrderDirection,
		n.Position, n.CreatedAt, n.UpdatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) Update(ctx context.Context, n *models.Node) error {
	query := `UPDATE nodes SET
		node_name = $2, parent_id = $3, status = $4, visible = $5, home = $6, locked = $7,
		hide_children = $8, sterile = $9, dynamic_node_name = $10, ttl = $11, children_order = $12,
		children_order_direction = $13, position = $14, updated_at = $15
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		n.ID, n.NodeName, dbx.NullUUID(n.ParentID), int(n.Status), n.Visible, n.Home, n.Locked,
		n.HideChildren, n.Sterile, n.DynamicNodeName, n.TTL, n.ChildrenOrder,
		n.ChildrenOrderDirection, n.Position, n.UpdatedAt)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = $1`, id)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Node, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM nodes WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Node, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM nodes WHERE node_name = $1`, name)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Node, error) {
	n, err := scan(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return n, nil
}

func (r *PostgresRepository) Children(ctx context.Context, parentID *uuid.UUID) ([]*models.Node, error) {
	query := `SELECT ` + columns + ` FROM nodes
		WHERE parent_id IS NOT DISTINCT FROM $1
		ORDER BY position, id`
	return r.list(ctx, query, dbx.NullUUID(parentID))
}

func (r *PostgresRepository) Ancestors(ctx context.Context, id uuid.UUID) ([]*models.Node, error) {
	query := `WITH RECURSIVE ancestors AS (
			SELECT p.*, 1 AS depth FROM nodes p
			WHERE p.id = (SELECT parent_id FROM nodes WHERE id = $1)
			UNION ALL
			SELECT p.*, a.depth + 1 FROM nodes p
			JOIN ancestors a ON p.id = a.parent_id
		)
		SELECT ` + columns + ` FROM ancestors ORDER BY depth`
	return r.list(ctx, query, id)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Node, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select nodes: %w", err)
	}
	return dbx.CollectRows(rows, scan)
}

func (r *PostgresRepository) LockChildren(ctx context.Context, parentID *uuid.UUID) error {
	return dbx.AdvisoryLock(ctx, r.db, ChildrenLockKey(parentID))
}

func (r *PostgresRepository) ClearHome(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `UPDATE nodes SET home = FALSE WHERE home`)
	return dbx.MapError(err)
}

func (r *PostgresRepository) CountByType(ctx context.Context, typeName string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM nodes WHERE node_type_name = $1`, typeName).Scan(&n)
	if err != nil {
		return 0, dbx.MapError(err)
	}
	return n, nil
}

func (r *PostgresRepository) AddStackType(ctx context.Context, st *models.NodeStackType) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO node_stack_types (node_id, node_type_name) VALUES ($1, $2)`,
		st.NodeID, st.NodeTypeName)
	return dbx.MapError(err)
}

func (r *PostgresRepository) RemoveStackType(ctx context.Context, nodeID uuid.UUID, typeName string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM node_stack_types WHERE node_id = $1 AND node_type_name = $2`,
		nodeID, typeName)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) ListStackTypes(ctx context.Context, nodeID uuid.UUID) ([]*models.NodeStackType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT node_id, node_type_name FROM node_stack_types WHERE node_id = $1 ORDER BY node_type_name`,
		nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to select stack types: %w", err)
	}
	return dbx.CollectRows(rows, func(s dbx.Scanner) (*models.NodeStackType, error) {
		var st models.NodeStackType
		if err := s.Scan(&st.NodeID, &st.NodeTypeName); err != nil {
			return nil, err
		}
		return &st, nil
	})
}

func scan(s dbx.Scanner) (*models.Node, error) {
	var (
		n      models.Node
		parent uuid.NullUUID
		status int
	)
	err := s.Scan(&n.ID, &n.NodeName, &parent, &n.NodeTypeName, &status, &n.Visible, &n.Home, &n.Locked,
		&n.HideChildren, &n.Sterile, &n.DynamicNodeName, &n.TTL, &n.ChildrenOrder,
		&n.ChildrenOrderDirection, &n.Position, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	n.ParentID = dbx.UUIDPtr(parent)
	n.Status = models.NodeStatus(status)
	return &n, nil
}
