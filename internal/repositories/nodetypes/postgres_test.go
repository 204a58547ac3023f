package nodetypes

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var typeCols = []string{"id", "name", "display_name", "description", "color", "visible", "publishable",
	"reachable", "hiding_nodes", "hiding_non_reachable_nodes", "attributable",
	"sorting_attributes_by_weight", "searchable", "default_ttl", "created_at", "updated_at"}

var fieldCols = []string{"id", "node_type_id", "name", "label", "type", "description", "placeholder",
	"group_name", "position", "universal", "exclude_from_search", "indexed", "visible", "required",
	"versioned", "min_length", "max_length", "default_values", "serialization_groups",
	"serialization_exclude", "serialization_max_depth"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func typeRow(id uuid.UUID, name string) []driver.Value {
	now := time.Now()
	return []driver.Value{id.String(), name, name, "", "", true, true, true, false, false, true, false, true, 0, now, now}
}

func fieldRow(id, typeID uuid.UUID, name string, typ models.FieldType, pos float64) []driver.Value {
	return []driver.Value{id.String(), typeID.String(), name, name, string(typ), "", "", "", pos,
		false, false, false, true, false, false, 0, 0, []byte(`["a","b"]`), []byte(`[]`), false, 0}
}

func TestCreate_InsertsTypeAndFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	nt := &models.NodeType{ID: uuid.New(), Name: "Article", DisplayName: "Article", Fields: []*models.NodeTypeField{
		{ID: uuid.New(), Name: "heroImage", Label: "Hero", Type: models.FieldDocuments, Position: 1},
	}}

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+node_types\s*\(id,\s*name,.*\$16\)$`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+node_type_fields\s*\(id,\s*node_type_id,.*\$21\)$`).
		WithArgs(nt.Fields[0].ID, nt.ID, "heroImage", "Hero", "documents", "", "", "", 1.0,
			false, false, false, false, false, false, 0, 0, "[]", "[]", false, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), nt))
	assert.Equal(t, nt.ID, nt.Fields[0].NodeTypeID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_FieldErrorStops(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	nt := &models.NodeType{ID: uuid.New(), Name: "Article", Fields: []*models.NodeTypeField{
		{ID: uuid.New(), Name: "a", Type: models.FieldString},
		{ID: uuid.New(), Name: "b", Type: models.FieldString},
	}}
	mock.ExpectExec(`INSERT\s+INTO\s+node_types`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT\s+INTO\s+node_type_fields`).WillReturnError(errors.New("boom"))

	err := repo.Create(context.Background(), nt)
	require.ErrorContains(t, err, "db error: boom")
}

func TestGetByName_LoadsOrderedFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(`(?s)FROM\s+node_types\s+WHERE\s+name\s*=\s*\$1`).
		WithArgs("Article").
		WillReturnRows(sqlmock.NewRows(typeCols).AddRow(typeRow(id, "Article")...))
	mock.ExpectQuery(`(?s)FROM\s+node_type_fields\s+WHERE\s+node_type_id\s*=\s*\$1\s+ORDER\s+BY\s+position`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(fieldCols).
			AddRow(fieldRow(uuid.New(), id, "title2", models.FieldString, 1)...).
			AddRow(fieldRow(uuid.New(), id, "kind", models.FieldEnum, 2)...))

	got, err := repo.GetByName(context.Background(), "Article")
	require.NoError(t, err)
	assert.Equal(t, "Article", got.Name)
	require.Len(t, got.Fields, 2)
	assert.Equal(t, models.FieldEnum, got.Fields[1].Type)
	assert.Equal(t, []string{"a", "b"}, got.Fields[1].DefaultValues)
}

func TestGetByName_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+node_types`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByName(context.Background(), "Missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList_GroupsFieldsByType(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	a, p := uuid.New(), uuid.New()
	mock.ExpectQuery(`FROM\s+node_types\s+ORDER\s+BY\s+name`).
		WillReturnRows(sqlmock.NewRows(typeCols).AddRow(typeRow(a, "Article")...).AddRow(typeRow(p, "Page")...))
	mock.ExpectQuery(`FROM\s+node_type_fields\s+ORDER\s+BY\s+position`).
		WillReturnRows(sqlmock.NewRows(fieldCols).
			AddRow(fieldRow(uuid.New(), p, "content", models.FieldMarkdown, 1)...).
			AddRow(fieldRow(uuid.New(), a, "subtitle", models.FieldString, 1)...).
			AddRow(fieldRow(uuid.New(), a, "rating", models.FieldInteger, 2)...))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0].Fields, 2)
	assert.Len(t, got[1].Fields, 1)
}

func TestList_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+node_types`).WillReturnRows(sqlmock.NewRows(typeCols))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAndDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+node_types\s+SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE\s+FROM\s+node_types\s+WHERE\s+id\s*=\s*\$1`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE\s+node_type_fields\s+SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE\s+FROM\s+node_type_fields`).WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.ErrorIs(t, repo.Update(ctx, &models.NodeType{ID: uuid.New()}), common.ErrorNotFound)
	require.ErrorIs(t, repo.Delete(ctx, uuid.New()), common.ErrorNotFound)
	require.ErrorIs(t, repo.UpdateField(ctx, &models.NodeTypeField{ID: uuid.New()}), common.ErrorNotFound)
	require.NoError(t, repo.DeleteField(ctx, uuid.New()))
}
