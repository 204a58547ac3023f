package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/repositories/attributes"
	"github.com/dmitrijs2005/nodestore/internal/repositories/auditlogs"
	"github.com/dmitrijs2005/nodestore/internal/repositories/documents"
	"github.com/dmitrijs2005/nodestore/internal/repositories/memory"
	"github.com/dmitrijs2005/nodestore/internal/repositories/nodes"
	"github.com/dmitrijs2005/nodestore/internal/repositories/nodetypes"
	"github.com/dmitrijs2005/nodestore/internal/repositories/realms"
	"github.com/dmitrijs2005/nodestore/internal/repositories/sources"
	"github.com/dmitrijs2005/nodestore/internal/repositories/tags"
	"github.com/dmitrijs2005/nodestore/internal/repositories/translations"
)

// InMemoryRepositoryManager serves every repository from one memory.Store.
// The DBTX handles passed in are ignored.
type InMemoryRepositoryManager struct {
	store *memory.Store
}

func NewInMemoryRepositoryManager(store *memory.Store) *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: store}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB, bool) error {
	return nil
}

func (m *InMemoryRepositoryManager) Translations(dbx.DBTX) translations.Repository {
	return memory.NewTranslationRepository(m.store)
}

func (m *InMemoryRepositoryManager) NodeTypes(dbx.DBTX) nodetypes.Repository {
	return memory.NewNodeTypeRepository(m.store)
}

func (m *InMemoryRepositoryManager) Nodes(dbx.DBTX) nodes.Repository {
	return memory.NewNodeRepository(m.store)
}

func (m *InMemoryRepositoryManager) Tags(dbx.DBTX) tags.Repository {
	return memory.NewTagRepository(m.store)
}

func (m *InMemoryRepositoryManager) Sources(dbx.DBTX) sources.Repository {
	return memory.NewSourceRepository(m.store)
}

func (m *InMemoryRepositoryManager) Documents(dbx.DBTX) documents.Repository {
	return memory.NewDocumentRepository(m.store)
}

func (m *InMemoryRepositoryManager) Attributes(dbx.DBTX) attributes.Repository {
	return memory.NewAttributeRepository(m.store)
}

func (m *InMemoryRepositoryManager) Realms(dbx.DBTX) realms.Repository {
	return memory.NewRealmRepository(m.store)
}

func (m *InMemoryRepositoryManager) AuditLogs(dbx.DBTX) auditlogs.Repository {
	return memory.NewAuditLogRepository(m.store)
}
