// Package realms persists realms and their bindings to nodes.
package realms

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

const columns = `id, type, name, role, behaviour, serialization_group, password_hash, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, realm *models.Realm) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO realms (`+columns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		realm.ID, string(realm.Type), realm.Name, realm.Role, string(realm.Behaviour),
		realm.SerializationGroup, realm.PasswordHash, realm.CreatedAt, realm.UpdatedAt)
	return dbx.MapError(err)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Realm, error) {
	return scanOne(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM realms WHERE id = $1`, id))
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Realm, error) {
	return scanOne(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM realms WHERE name = $1`, name))
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Realm, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM realms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to select realms: %w", err)
	}
	return dbx.CollectRows(rows, scan)
}

func (r *PostgresRepository) Bind(ctx context.Context, rn *models.RealmNode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO realms_nodes (id, node_id, realm_id, inheritance_type) VALUES ($1, $2, $3, $4)`,
		rn.ID, rn.NodeID, rn.RealmID, string(rn.InheritanceType))
	return dbx.MapError(err)
}

func (r *PostgresRepository) Unbind(ctx context.Context, nodeID, realmID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM realms_nodes WHERE node_id = $1 AND realm_id = $2`, nodeID, realmID)
	if err != nil {
		return dbx.MapError(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) ListBindings(ctx context.Context, nodeID uuid.UUID) ([]*models.RealmNode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, node_id, realm_id, inheritance_type FROM realms_nodes WHERE node_id = $1 ORDER BY id`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to select realm bindings: %w", err)
	}
	return dbx.CollectRows(rows, func(s dbx.Scanner) (*models.RealmNode, error) {
		var (
			rn  models.RealmNode
			typ string
		)
		if err := s.Scan(&rn.ID, &rn.NodeID, &rn.RealmID, &typ); err != nil {
			return nil, err
		}
		rn.InheritanceType = models.InheritanceType(typ)
		return &rn, nil
	})
}

func scan(s dbx.Scanner) (*models.Realm, error) {
	var (
		realm          models.Realm
		typ, behaviour string
	)
	err := s.Scan(&realm.ID, &typ, &realm.Name, &realm.Role, &behaviour, &realm.SerializationGroup,
		&realm.PasswordHash, &realm.CreatedAt, &realm.UpdatedAt)
	if err != nil {
		return nil, err
	}
	realm.Type = models.RealmType(typ)
	realm.Behaviour = models.RealmBehaviour(behaviour)
	return &realm, nil
}

func scanOne(row *sql.Row) (*models.Realm, error) {
	realm, err := scan(row)
	if err != nil {
		return nil, dbx.MapError(err)
	}
	return realm, nil
}
