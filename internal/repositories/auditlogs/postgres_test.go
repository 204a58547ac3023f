package auditlogs

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestAppend_NullOldValue(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	e := &models.AuditEntry{ID: uuid.New(), SourceID: uuid.New(), TranslationID: uuid.New(),
		FieldName: "subtitle", NewValue: []byte(`"Hi"`), LoggedAt: time.Now()}
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+log_entries`).
		WithArgs(e.ID, e.SourceID, e.TranslationID, "subtitle", nil, `"Hi"`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Append(context.Background(), e); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListBySource_NewestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	src, tr := uuid.New(), uuid.New()
	newer, older := time.Now(), time.Now().Add(-time.Hour)
	mock.ExpectQuery(`(?s)FROM\s+log_entries\s+WHERE\s+ns_id\s*=\s*\$1\s+ORDER\s+BY\s+logged_at\s+DESC`).
		WithArgs(src).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ns_id", "translation_id", "field_name", "old_value", "new_value", "logged_at"}).
			AddRow(uuid.NewString(), src.String(), tr.String(), "subtitle", []byte(`"a"`), []byte(`"b"`), newer).
			AddRow(uuid.NewString(), src.String(), tr.String(), "subtitle", nil, []byte(`"a"`), older))

	got, err := repo.ListBySource(context.Background(), src)
	if err != nil {
		t.Fatalf("ListBySource error: %v", err)
	}
	if len(got) != 2 || string(got[0].NewValue) != `"b"` || got[1].OldValue != nil {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestListBySource_Error(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+log_entries`).WillReturnError(errors.New("boom"))

	if _, err := repo.ListBySource(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error")
	}
}
