// Package repomanager provides concrete RepositoryManagers for PostgreSQL and
// the in-memory store, wiring together repository constructors and database
// migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/migrations"
	"github.com/dmitrijs2005/nodestore/internal/repositories/attributes"
	"github.com/dmitrijs2005/nodestore/internal/repositories/auditlogs"
	"github.com/dmitrijs2005/nodestore/internal/repositories/documents"
	"github.com/dmitrijs2005/nodestore/internal/repositories/nodes"
	"github.com/dmitrijs2005/nodestore/internal/repositories/nodetypes"
	"github.com/dmitrijs2005/nodestore/internal/repositories/realms"
	"github.com/dmitrijs2005/nodestore/internal/repositories/sources"
	"github.com/dmitrijs2005/nodestore/internal/repositories/tags"
	"github.com/dmitrijs2005/nodestore/internal/repositories/translations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Translations(db dbx.DBTX) translations.Repository {
	return translations.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) NodeTypes(db dbx.DBTX) nodetypes.Repository {
	return nodetypes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Nodes(db dbx.DBTX) nodes.Repository {
	return nodes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Tags(db dbx.DBTX) tags.Repository {
	return tags.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Sources(db dbx.DBTX) sources.Repository {
	return sources.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Documents(db dbx.DBTX) documents.Repository {
	return documents.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Attributes(db dbx.DBTX) attributes.Repository {
	return attributes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Realms(db dbx.DBTX) realms.Repository {
	return realms.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) AuditLogs(db dbx.DBTX) auditlogs.Repository {
	return auditlogs.NewPostgresRepository(db)
}

// Seams for testing goose.
var (
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
	gooseUpToContext = func(ctx context.Context, db *sql.DB, dir string, version int64, opts ...goose.OptionsFunc) error {
		return goose.UpToContext(ctx, db, dir, version, opts...)
	}
	gooseGetDBVersionContext = func(ctx context.Context, db *sql.DB) (int64, error) {
		return goose.GetDBVersionContext(ctx, db)
	}
)

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB, allowIrreversible bool) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if allowIrreversible {
		return gooseUpContext(ctx, db, ".")
	}

	if err := gooseUpToContext(ctx, db, ".", migrations.LastReversibleVersion); err != nil {
		return err
	}
	version, err := gooseGetDBVersionContext(ctx, db)
	if err != nil {
		return err
	}
	if version < migrations.LatestVersion {
		return fmt.Errorf("%w: schema at version %d, %d drops data",
			common.ErrConfirmationRequired, version, migrations.LatestVersion)
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(db *sql.DB) (RepositoryManager, error) {
	return &PostgresRepositoryManager{}, nil
}
