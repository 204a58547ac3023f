package nodes

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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "node_name", "parent_id", "node_type_name", "status", "visible", "home", "locked",
	"hide_children", "sterile", "dynamic_node_name", "ttl", "children_order", "children_order_direction",
	"position", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func row(id uuid.UUID, name string, parent *uuid.UUID, pos float64) []driver.Value {
	now := time.Now()
	var p any
	if parent != nil {
		p = parent.String()
	}
	return []driver.Value{id.String(), name, p, "Page", 30, true, false, false,
		false, false, true, 0, "position", "ASC", pos, now, now}
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	parent := uuid.New()
	n := models.NewNode("about", "Page", &parent)
	n.Position = 3

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+nodes\s*\(id,\s*node_name,\s*parent_id,.*\$17\)$`).
		WithArgs(n.ID, "about", parent, "Page", 10, true, false, false, false, false, true, 0,
			"position", "ASC", 3.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), n))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateName(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+nodes`).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), models.NewNode("about", "Page", nil))
	require.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestUpdate_RootHasNullParent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	n := models.NewNode("home", "Page", nil)
	mock.ExpectExec(`(?s)^UPDATE\s+nodes\s+SET.*WHERE\s+id\s*=\s*\$1$`).
		WithArgs(n.ID, "home", nil, 10, true, false, false, false, false, true, 0,
			"position", "ASC", 0.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), n))
}

func TestGetByName(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id, parent := uuid.New(), uuid.New()
	mock.ExpectQuery(`(?s)FROM\s+nodes\s+WHERE\s+node_name\s*=\s*\$1`).
		WithArgs("about").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(row(id, "about", &parent, 2)...))

	got, err := repo.GetByName(context.Background(), "about")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parent, *got.ParentID)
	assert.True(t, got.Status.IsPublished())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+nodes\s+WHERE\s+id`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestChildren_OfRoot(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)WHERE\s+parent_id\s+IS\s+NOT\s+DISTINCT\s+FROM\s+\$1\s+ORDER\s+BY\s+position,\s*id`).
		WithArgs(nil).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(row(uuid.New(), "a", nil, 1)...).
			AddRow(row(uuid.New(), "b", nil, 2)...))

	got, err := repo.Children(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].ParentID)
	assert.Equal(t, "b", got[1].NodeName)
}

func TestAncestors_ClosestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	child, parent, root := uuid.New(), uuid.New(), uuid.New()
	mock.ExpectQuery(`(?s)^WITH\s+RECURSIVE\s+ancestors.*ORDER\s+BY\s+depth$`).
		WithArgs(child).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(row(parent, "parent", &root, 1)...).
			AddRow(row(root, "root", nil, 1)...))

	got, err := repo.Ancestors(context.Background(), child)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, parent, got[0].ID)
	assert.Equal(t, root, got[1].ID)
}

func TestChildren_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+nodes`).WillReturnError(errors.New("boom"))

	_, err := repo.Children(context.Background(), nil)
	require.ErrorContains(t, err, "failed to select nodes")
}

func TestLockChildren(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	parent := uuid.New()
	mock.ExpectExec(`SELECT\s+pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs("nodes:children:" + parent.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`SELECT\s+pg_advisory_xact_lock`).
		WithArgs("nodes:children:root").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.LockChildren(context.Background(), &parent))
	require.NoError(t, repo.LockChildren(context.Background(), nil))
}

func TestClearHomeAndCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+nodes\s+SET\s+home\s*=\s*FALSE`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT\s+count\(\*\)\s+FROM\s+nodes\s+WHERE\s+node_type_name\s*=\s*\$1`).
		WithArgs("Page").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	require.NoError(t, repo.ClearHome(context.Background()))
	n, err := repo.CountByType(context.Background(), "Page")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestStackTypes(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(`INSERT\s+INTO\s+node_stack_types`).
		WithArgs(id, "Article").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM\s+node_stack_types\s+WHERE\s+node_id\s*=\s*\$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"node_id", "node_type_name"}).AddRow(id.String(), "Article"))
	mock.ExpectExec(`DELETE\s+FROM\s+node_stack_types`).
		WithArgs(id, "Event").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, repo.AddStackType(ctx, &models.NodeStackType{NodeID: id, NodeTypeName: "Article"}))
	got, err := repo.ListStackTypes(ctx, id)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Article", got[0].NodeTypeName)
	require.ErrorIs(t, repo.RemoveStackType(ctx, id, "Event"), common.ErrorNotFound)
}

func TestChildrenLockKey(t *testing.T) {
	assert.Equal(t, "nodes:children:root", ChildrenLockKey(nil))
	id := uuid.New()
	assert.Equal(t, "nodes:children:"+id.String(), ChildrenLockKey(&id))
}
