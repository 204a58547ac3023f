package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/repositories/attributes"
	"github.com/dmitrijs2005/nodestore/internal/repositories/auditlogs"
	"github.com/dmitrijs2005/nodestore/internal/repositories/documents"
	"github.com/dmitrijs2005/nodestore/internal/repositories/nodes"
	"github.com/dmitrijs2005/nodestore/internal/repositories/nodetypes"
	"github.com/dmitrijs2005/nodestore/internal/repositories/realms"
	"github.com/dmitrijs2005/nodestore/internal/repositories/sources"
	"github.com/dmitrijs2005/nodestore/internal/repositories/tags"
	"github.com/dmitrijs2005/nodestore/internal/repositories/translations"
)

type RepositoryManager interface {
	// RunMigrations brings the schema up to date. Migrations that drop data
	// run only when allowIrreversible is set; otherwise the manager stops
	// before them and reports common.ErrConfirmationRequired.
	RunMigrations(ctx context.Context, db *sql.DB, allowIrreversible bool) error
	Translations(db dbx.DBTX) translations.Repository
	NodeTypes(db dbx.DBTX) nodetypes.Repository
	Nodes(db dbx.DBTX) nodes.Repository
	Tags(db dbx.DBTX) tags.Repository
	Sources(db dbx.DBTX) sources.Repository
	Documents(db dbx.DBTX) documents.Repository
	Attributes(db dbx.DBTX) attributes.Repository
	Realms(db dbx.DBTX) realms.Repository
	AuditLogs(db dbx.DBTX) auditlogs.Repository
}
