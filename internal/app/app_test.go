package app

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/config"
	"github.com/dmitrijs2005/nodestore/internal/logging"
	"github.com/dmitrijs2005/nodestore/internal/models"
)

const pageYAML = `
name: Page
displayName: Page
fields:
  - name: body
    label: Body
    type: markdown
`

func testConfig(t *testing.T, source string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SchemaSource = source
	cfg.SchemaDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.SchemaDir, "page.yaml"), []byte(pageYAML), 0o600))
	return cfg
}

func TestNewApp_OpensPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	var gotDSN string
	orig := openDB
	openDB = func(dsn string) (*sql.DB, error) {
		gotDSN = dsn
		return db, nil
	}
	t.Cleanup(func() { openDB = orig })

	cfg := testConfig(t, config.SchemaSourceDatabase)
	cfg.DatabaseDSN = "postgres://test"

	var logs bytes.Buffer
	app, err := NewApp(cfg, &logs)
	require.NoError(t, err)
	assert.Equal(t, "postgres://test", gotDSN)
	assert.NotNil(t, app.Nodes)
	assert.NotNil(t, app.Realms)

	mock.ExpectClose()
	require.NoError(t, app.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_Errors(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })

	openDB = func(string) (*sql.DB, error) { return nil, errors.New("no driver") }
	_, err := NewApp(testConfig(t, config.SchemaSourceDatabase), &bytes.Buffer{})
	require.ErrorContains(t, err, "db init error")

	cfg := testConfig(t, config.SchemaSourceDatabase)
	cfg.LogFormat = "xml"
	_, err = NewApp(cfg, &bytes.Buffer{})
	require.Error(t, err)

	cfg = testConfig(t, config.SchemaSourceDatabase)
	cfg.DecoratorsFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = NewApp(cfg, &bytes.Buffer{})
	require.Error(t, err)
}

func TestAssemble_SchemaSources(t *testing.T) {
	ctx := context.Background()

	for _, source := range []string{config.SchemaSourceDatabase, config.SchemaSourceStatic, config.SchemaSourceChain} {
		t.Run(source, func(t *testing.T) {
			app, err := NewInMemory(testConfig(t, source), nil)
			require.NoError(t, err)

			_, err = app.Registry.GetNodeType(ctx, "Page")
			if source == config.SchemaSourceDatabase {
				require.ErrorIs(t, err, common.ErrUnknownNodeType)
				return
			}
			require.NoError(t, err)
		})
	}

	_, err := NewInMemory(testConfig(t, "ldap"), nil)
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestSchemaDiff_ChainOnly(t *testing.T) {
	ctx := context.Background()

	app, err := NewInMemory(testConfig(t, config.SchemaSourceChain), nil)
	require.NoError(t, err)
	_, err = app.Schema.CreateNodeType(ctx, &models.NodeType{
		Name:        "Event",
		DisplayName: "Event",
		Fields:      []*models.NodeTypeField{{Name: "startsAt", Label: "Starts at", Type: models.FieldDateTime}},
	})
	require.NoError(t, err)

	diffs, err := app.SchemaDiff(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"- Page", "+ Event"}, diffs)

	static, err := NewInMemory(testConfig(t, config.SchemaSourceStatic), nil)
	require.NoError(t, err)
	diffs, err = static.SchemaDiff(ctx)
	require.NoError(t, err)
	assert.Nil(t, diffs)
}

func TestWarnUnmatchedDecorators(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.SchemaSourceStatic)
	cfg.DecoratorsFile = filepath.Join(t.TempDir(), "decorators.yaml")
	require.NoError(t, os.WriteFile(cfg.DecoratorsFile, []byte(`
decorators:
  - path: Page.body
    property: label
    value: Content
  - path: Page.ghost
    property: label
    value: Nothing
`), 0o600))

	var logs bytes.Buffer
	logger, err := logging.New(&logs, "json", "info")
	require.NoError(t, err)

	app, err := NewInMemory(cfg, logger)
	require.NoError(t, err)

	paths, err := app.WarnUnmatchedDecorators(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Page.ghost"}, paths)
	assert.Contains(t, logs.String(), "Page.ghost")

	page, err := app.Registry.GetNodeType(ctx, "Page")
	require.NoError(t, err)
	assert.Equal(t, "Content", page.Fields[0].Label)
	require.NoError(t, app.Close())
}
