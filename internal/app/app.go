// Package app wires configuration, storage, the schema registry and the
// services into a single value the nodectl commands run against.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/config"
	"github.com/dmitrijs2005/nodestore/internal/dbx"
	"github.com/dmitrijs2005/nodestore/internal/logging"
	"github.com/dmitrijs2005/nodestore/internal/metrics"
	"github.com/dmitrijs2005/nodestore/internal/repositories/memory"
	"github.com/dmitrijs2005/nodestore/internal/repositories/repomanager"
	"github.com/dmitrijs2005/nodestore/internal/schema"
	"github.com/dmitrijs2005/nodestore/internal/services"
)

// openDB is a test seam for sql.Open with the pgx driver.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	Config   *config.Config
	Logger   logging.Logger
	DB       *sql.DB
	Repos    repomanager.RepositoryManager
	Registry schema.Registry
	Metrics  *metrics.Collector

	Translations *services.TranslationService
	Schema       *services.SchemaService
	Nodes        *services.NodeService
	Sources      *services.SourceService
	Attributes   *services.AttributeService
	Realms       *services.RealmService

	decorators schema.Decorators
	static     schema.Registry
	database   schema.Registry
}

// Parts are the collaborators Assemble builds an App from.
type Parts struct {
	Config     *config.Config
	Logger     logging.Logger
	DB         *sql.DB
	Repos      repomanager.RepositoryManager
	Tx         dbx.Transactor
	Store      schema.NodeTypeStore
	Decorators schema.Decorators
	// Events receives committed content changes; nil drops them after
	// they are counted.
	Events services.EventDispatcher
}

// NewApp connects to PostgreSQL and builds every service for cfg. Log
// output goes to logOut.
func NewApp(cfg *config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.New(logOut, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	decorators, err := schema.LoadDecorators(cfg.DecoratorsFile)
	if err != nil {
		return nil, err
	}

	db, err := openDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := Assemble(Parts{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Repos:      repos,
		Tx:         dbx.NewSQLTransactor(db, cfg.TxTimeout),
		Store:      repos.NodeTypes(db),
		Decorators: decorators,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

// NewInMemory builds an App over a fresh in-memory store. Nothing is
// persisted; DB is nil and migrations are no-ops.
func NewInMemory(cfg *config.Config, logger logging.Logger) (*App, error) {
	decorators, err := schema.LoadDecorators(cfg.DecoratorsFile)
	if err != nil {
		return nil, err
	}
	store := memory.NewStore()
	return Assemble(Parts{
		Config:     cfg,
		Logger:     logger,
		Repos:      repomanager.NewInMemoryRepositoryManager(store),
		Tx:         memory.NewTransactor(store),
		Store:      memory.NewNodeTypeRepository(store),
		Decorators: decorators,
	})
}

// Assemble builds the registry selected by Config.SchemaSource and the
// services on top of p.
func Assemble(p Parts) (*App, error) {
	if p.Logger == nil {
		p.Logger = logging.Nop()
	}
	app := &App{
		Config:     p.Config,
		Logger:     p.Logger,
		DB:         p.DB,
		Repos:      p.Repos,
		Metrics:    metrics.NewCollector("nodestore"),
		decorators: p.Decorators,
	}
	if p.Events == nil {
		p.Events = services.NopDispatcher{}
	}

	switch p.Config.SchemaSource {
	case config.SchemaSourceDatabase:
		app.database = schema.NewDatabaseRegistry(p.Store, p.Decorators)
		app.Registry = app.database
	case config.SchemaSourceStatic, config.SchemaSourceChain:
		static, err := schema.LoadStaticRegistry(p.Config.SchemaDir, p.Decorators)
		if err != nil {
			return nil, err
		}
		app.static = static
		app.Registry = static
		if p.Config.SchemaSource == config.SchemaSourceChain {
			app.database = schema.NewDatabaseRegistry(p.Store, p.Decorators)
			app.Registry = schema.NewChainRegistry(app.static, app.database)
		}
	default:
		return nil, fmt.Errorf("%w: unknown schema source %q", common.ErrorValidation, p.Config.SchemaSource)
	}

	d := services.Deps{
		Tx:       p.Tx,
		Repos:    p.Repos,
		Registry: app.Registry,
		Logger:   p.Logger,
		Events:   meteredDispatcher{next: p.Events, metrics: app.Metrics},
	}
	app.Translations = services.NewTranslationService(d)
	app.Schema = services.NewSchemaService(d)
	app.Nodes = services.NewNodeService(d)
	app.Sources = services.NewSourceService(d)
	app.Attributes = services.NewAttributeService(d)
	app.Realms = services.NewRealmService(d)

	return app, nil
}

// WarnUnmatchedDecorators logs every decorator path that names no known
// type or field. It returns the paths it logged.
func (app *App) WarnUnmatchedDecorators(ctx context.Context) ([]string, error) {
	if len(app.decorators) == 0 {
		return nil, nil
	}
	types, err := app.Registry.ListNodeTypes(ctx)
	if err != nil {
		return nil, err
	}
	paths := app.decorators.Unmatched(types)
	for _, p := range paths {
		app.Logger.Warn(ctx, "decorator path matches nothing, skipped", "path", p)
	}
	return paths, nil
}

// SchemaDiff compares the static definitions with the database ones. It
// is only meaningful for the chain source and returns nil otherwise.
func (app *App) SchemaDiff(ctx context.Context) ([]string, error) {
	if app.static == nil || app.database == nil {
		return nil, nil
	}
	return schema.Diff(ctx, app.static, app.database)
}

// FlushMetrics writes the collected metrics to Config.MetricsFile, if set.
func (app *App) FlushMetrics() error {
	if app.Config.MetricsFile == "" {
		return nil
	}
	return app.Metrics.WriteTextfile(app.Config.MetricsFile)
}

type meteredDispatcher struct {
	next    services.EventDispatcher
	metrics *metrics.Collector
}

func (d meteredDispatcher) Dispatch(ctx context.Context, e services.Event) error {
	err := d.next.Dispatch(ctx, e)
	d.metrics.RecordEvent(string(e.Type), err)
	return err
}

// InitSignalHandler cancels through cancelFunc on SIGINT, SIGTERM or SIGQUIT.
func (app *App) InitSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Close flushes the logger and releases the database handle.
func (app *App) Close() error {
	if s, ok := app.Logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	if app.DB == nil {
		return nil
	}
	return app.DB.Close()
}
