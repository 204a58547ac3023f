package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/migrations"
	"github.com/dmitrijs2005/nodestore/internal/repositories/memory"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// stubGoose swaps every goose seam and restores them on cleanup.
func stubGoose(t *testing.T, up func() error, upTo func(version int64) error, version func() (int64, error)) {
	t.Helper()
	origUp, origUpTo, origVersion := gooseUpContext, gooseUpToContext, gooseGetDBVersionContext
	t.Cleanup(func() {
		gooseUpContext, gooseUpToContext, gooseGetDBVersionContext = origUp, origUpTo, origVersion
	})

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return up()
	}
	gooseUpToContext = func(ctx context.Context, db *sql.DB, dir string, v int64, opts ...goose.OptionsFunc) error {
		return upTo(v)
	}
	gooseGetDBVersionContext = func(ctx context.Context, db *sql.DB) (int64, error) {
		return version()
	}
}

func unexpected() error { return errors.New("unexpected call") }

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m, err := NewPostgresRepositoryManager(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var _ RepositoryManager = m
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	managers := map[string]RepositoryManager{
		"postgres": &PostgresRepositoryManager{},
		"memory":   NewInMemoryRepositoryManager(memory.NewStore()),
	}
	for name, m := range managers {
		if m.Translations(db) == nil {
			t.Fatalf("%s: Translations() nil", name)
		}
		if m.NodeTypes(db) == nil {
			t.Fatalf("%s: NodeTypes() nil", name)
		}
		if m.Nodes(db) == nil {
			t.Fatalf("%s: Nodes() nil", name)
		}
		if m.Tags(db) == nil {
			t.Fatalf("%s: Tags() nil", name)
		}
		if m.Sources(db) == nil {
			t.Fatalf("%s: Sources() nil", name)
		}
		if m.Documents(db) == nil {
			t.Fatalf("%s: Documents() nil", name)
		}
		if m.Attributes(db) == nil {
			t.Fatalf("%s: Attributes() nil", name)
		}
		if m.Realms(db) == nil {
			t.Fatalf("%s: Realms() nil", name)
		}
		if m.AuditLogs(db) == nil {
			t.Fatalf("%s: AuditLogs() nil", name)
		}
	}
}

func TestRunMigrations_AllowIrreversible(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	called := false
	stubGoose(t,
		func() error { called = true; return nil },
		func(int64) error { return unexpected() },
		func() (int64, error) { return 0, unexpected() })

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db, true); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
	if !called {
		t.Fatal("goose.UpContext not called")
	}
}

func TestRunMigrations_StopsBeforeIrreversible(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	var target int64
	stubGoose(t,
		func() error { return unexpected() },
		func(v int64) error { target = v; return nil },
		func() (int64, error) { return migrations.LastReversibleVersion, nil })

	m := &PostgresRepositoryManager{}
	err := m.RunMigrations(context.Background(), db, false)
	if !errors.Is(err, common.ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}
	if target != migrations.LastReversibleVersion {
		t.Fatalf("migrated to %d, want %d", target, migrations.LastReversibleVersion)
	}
}

func TestRunMigrations_AlreadyCurrent(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	stubGoose(t,
		func() error { return unexpected() },
		func(int64) error { return nil },
		func() (int64, error) { return migrations.LatestVersion, nil })

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db, false); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	stubGoose(t,
		func() error { return errors.New("boom") },
		func(int64) error { return errors.New("boom") },
		func() (int64, error) { return 0, unexpected() })

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db, true); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
	if err := m.RunMigrations(context.Background(), db, false); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestInMemoryRunMigrations_NoOp(t *testing.T) {
	m := NewInMemoryRepositoryManager(memory.NewStore())
	if err := m.RunMigrations(context.Background(), nil, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
