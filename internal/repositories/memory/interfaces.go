package memory

import (
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

var (
	_ dbx.Transactor          = (*Transactor)(nil)
	_ translations.Repository = (*TranslationRepository)(nil)
	_ nodetypes.Repository    = (*NodeTypeRepository)(nil)
	_ nodes.Repository        = (*NodeRepository)(nil)
	_ tags.Repository         = (*TagRepository)(nil)
	_ sources.Repository      = (*SourceRepository)(nil)
	_ documents.Repository    = (*DocumentRepository)(nil)
	_ attributes.Repository   = (*AttributeRepository)(nil)
	_ realms.Repository       = (*RealmRepository)(nil)
	_ auditlogs.Repository    = (*AuditLogRepository)(nil)
)
