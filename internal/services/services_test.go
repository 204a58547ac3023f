package services

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/nodestore/internal/logging"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/dmitrijs2005/nodestore/internal/repositories/memory"
	"github.com/dmitrijs2005/nodestore/internal/repositories/repomanager"
	"github.com/dmitrijs2005/nodestore/internal/schema"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []Event
}

func (d *recordingDispatcher) Dispatch(_ context.Context, e Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) types() []EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]EventType, len(d.events))
	for i, e := range d.events {
		out[i] = e.Type
	}
	return out
}

type env struct {
	ctx          context.Context
	store        *memory.Store
	events       *recordingDispatcher
	logs         *bytes.Buffer
	schema       *SchemaService
	translations *TranslationService
	nodes        *NodeService
	sources      *SourceService
	attributes   *AttributeService
	realms       *RealmService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	events := &recordingDispatcher{}
	logs := &bytes.Buffer{}
	d := Deps{
		Logger:   logging.NewSlogLogger(slog.New(slog.NewTextHandler(logs, nil))),
		Tx:       memory.NewTransactor(store),
		Repos:    repomanager.NewInMemoryRepositoryManager(store),
		Registry: schema.NewDatabaseRegistry(memory.NewNodeTypeRepository(store), nil),
		Events:   events,
		Clock:    func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
	return &env{
		ctx:          context.Background(),
		store:        store,
		events:       events,
		logs:         logs,
		schema:       NewSchemaService(d),
		translations: NewTranslationService(d),
		nodes:        NewNodeService(d),
		sources:      NewSourceService(d),
		attributes:   NewAttributeService(d),
		realms:       NewRealmService(d),
	}
}

func (e *env) translation(t *testing.T, locale string) *models.Translation {
	t.Helper()
	tr, err := e.translations.Create(e.ctx, locale, locale, nil, true)
	require.NoError(t, err)
	return tr
}

func (e *env) nodeType(t *testing.T, name string, fields ...*models.NodeTypeField) *models.NodeType {
	t.Helper()
	nt, err := e.schema.CreateNodeType(e.ctx, &models.NodeType{
		Name:         name,
		DisplayName:  name,
		Visible:      true,
		Publishable:  true,
		Reachable:    true,
		Attributable: true,
		Fields:       fields,
	})
	require.NoError(t, err)
	return nt
}

func (e *env) node(t *testing.T, name, typeName string, parent *models.Node) *models.Node {
	t.Helper()
	in := CreateNodeInput{NodeName: name, TypeName: typeName, Title: name}
	if parent != nil {
		in.ParentID = models.UUIDPtr(parent.ID)
	}
	n, err := e.nodes.Create(e.ctx, in)
	require.NoError(t, err)
	return n
}

// basic prepares the default "en" translation and a Page type.
func (e *env) basic(t *testing.T) *models.Translation {
	t.Helper()
	tr := e.translation(t, "en")
	e.nodeType(t, "Page",
		&models.NodeTypeField{Name: "body", Label: "Body", Type: models.FieldText},
		&models.NodeTypeField{Name: "related", Label: "Related", Type: models.FieldNodes},
	)
	return tr
}

func field(name string, ft models.FieldType) *models.NodeTypeField {
	return &models.NodeTypeField{Name: name, Label: name, Type: ft}
}
