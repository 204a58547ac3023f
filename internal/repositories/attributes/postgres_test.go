package attributes

import (
	"context"
	"database/sql"
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

var (
	attributeCols = []string{"id", "code", "type", "searchable", "universal", "color", "weight",
		"group_id", "default_realm_id", "created_at", "updated_at"}
	valueCols = []string{"id", "attribute_id", "node_id", "realm_id", "position", "created_at", "updated_at"}
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestGroups(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	g := &models.AttributeGroup{ID: uuid.New(), CanonicalName: "dimensions"}
	gt := &models.AttributeGroupTranslation{ID: uuid.New(), GroupID: g.ID, TranslationID: uuid.New(), Name: "Dimensions"}
	now := time.Now()

	mock.ExpectExec(`INSERT\s+INTO\s+attribute_groups`).
		WithArgs(g.ID, "dimensions", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM\s+attribute_groups\s+WHERE\s+id`).
		WithArgs(g.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "canonical_name", "created_at", "updated_at"}).
			AddRow(g.ID.String(), "dimensions", now, now))
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+attribute_group_translations.*ON\s+CONFLICT`).
		WithArgs(gt.ID, g.ID, gt.TranslationID, "Dimensions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM\s+attribute_group_translations`).
		WithArgs(g.ID, gt.TranslationID).
		WillReturnError(sql.ErrNoRows)

	ctx := context.Background()
	require.NoError(t, repo.CreateGroup(ctx, g))
	got, err := repo.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "dimensions", got.CanonicalName)
	require.NoError(t, repo.SetGroupTranslation(ctx, gt))
	_, err = repo.GetGroupTranslation(ctx, g.ID, gt.TranslationID)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate_DuplicateCode(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	a := &models.Attribute{ID: uuid.New(), Code: "colour", Type: models.AttributeColour}
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+attributes\s*\(id,\s*code,.*\$11\)$`).
		WithArgs(a.ID, "colour", "colour", false, false, "", 0, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT\s+INTO\s+attributes`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, a))
	require.ErrorIs(t, repo.Create(ctx, a), common.ErrAlreadyExists)
}

func TestGetByCodeAndList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id, group := uuid.New(), uuid.New()
	now := time.Now()
	mock.ExpectQuery(`FROM\s+attributes\s+WHERE\s+code\s*=\s*\$1`).
		WithArgs("size").
		WillReturnRows(sqlmock.NewRows(attributeCols).
			AddRow(id.String(), "size", "integer", true, false, "", 5, group.String(), nil, now, now))
	mock.ExpectQuery(`FROM\s+attributes\s+ORDER\s+BY\s+weight\s+DESC`).
		WillReturnError(errors.New("boom"))

	ctx := context.Background()
	got, err := repo.GetByCode(ctx, "size")
	require.NoError(t, err)
	assert.Equal(t, models.AttributeInteger, got.Type)
	require.NotNil(t, got.GroupID)
	assert.Equal(t, group, *got.GroupID)
	assert.Nil(t, got.DefaultRealmID)

	_, err = repo.List(ctx)
	require.ErrorContains(t, err, "failed to select attributes")
}

func TestTranslations(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := &models.AttributeTranslation{ID: uuid.New(), AttributeID: uuid.New(), TranslationID: uuid.New(),
		Label: "Colour", Options: []string{"red", "blue"}}
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+attribute_translations.*ON\s+CONFLICT`).
		WithArgs(at.ID, at.AttributeID, at.TranslationID, "Colour", `["red","blue"]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM\s+attribute_translations`).
		WithArgs(at.AttributeID, at.TranslationID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "attribute_id", "translation_id", "label", "options"}).
			AddRow(at.ID.String(), at.AttributeID.String(), at.TranslationID.String(), "Colour", []byte(`["red","blue"]`)))

	ctx := context.Background()
	require.NoError(t, repo.SetTranslation(ctx, at))
	got, err := repo.GetTranslation(ctx, at.AttributeID, at.TranslationID)
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "blue"}, got.Options)
}

func TestValues(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	nodeID, attrID, realmID := uuid.New(), uuid.New(), uuid.New()
	v := &models.AttributeValue{ID: uuid.New(), AttributeID: attrID, NodeID: nodeID, RealmID: &realmID, Position: 1}
	now := time.Now()

	mock.ExpectExec(`INSERT\s+INTO\s+attribute_values`).
		WithArgs(v.ID, attrID, nodeID, realmID, 1.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE\s+attribute_values\s+SET\s+realm_id\s*=\s*\$2,\s*position\s*=\s*\$3`).
		WithArgs(v.ID, realmID, 2.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM\s+attribute_values\s+WHERE\s+node_id\s*=\s*\$1\s+ORDER\s+BY\s+position`).
		WithArgs(nodeID).
		WillReturnRows(sqlmock.NewRows(valueCols).
			AddRow(v.ID.String(), attrID.String(), nodeID.String(), realmID.String(), 2.0, now, now).
			AddRow(uuid.NewString(), attrID.String(), nodeID.String(), nil, 3.0, now, now))
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs("attribute_values:" + nodeID.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE\s+FROM\s+attribute_values`).
		WithArgs(v.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, repo.CreateValue(ctx, v))
	v.Position = 2
	require.NoError(t, repo.UpdateValue(ctx, v))

	list, err := repo.ListValues(ctx, nodeID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].RealmID)
	assert.Nil(t, list[1].RealmID)

	require.NoError(t, repo.LockValues(ctx, nodeID))
	require.ErrorIs(t, repo.DeleteValue(ctx, v.ID), common.ErrorNotFound)
}

func TestValueTranslations(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	value := "42"
	vt := &models.AttributeValueTranslation{ID: uuid.New(), AttributeValueID: uuid.New(), TranslationID: uuid.New(), Value: &value}
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+attribute_value_translations.*ON\s+CONFLICT`).
		WithArgs(vt.ID, vt.AttributeValueID, vt.TranslationID, "42").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM\s+attribute_value_translations\s+WHERE\s+attribute_value_id\s*=\s*\$1\s+AND`).
		WithArgs(vt.AttributeValueID, vt.TranslationID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "attribute_value_id", "translation_id", "value"}).
			AddRow(vt.ID.String(), vt.AttributeValueID.String(), vt.TranslationID.String(), "42"))
	mock.ExpectQuery(`FROM\s+attribute_value_translations\s+WHERE\s+attribute_value_id\s*=\s*\$1\s+ORDER`).
		WithArgs(vt.AttributeValueID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "attribute_value_id", "translation_id", "value"}).
			AddRow(vt.ID.String(), vt.AttributeValueID.String(), vt.TranslationID.String(), nil))

	ctx := context.Background()
	require.NoError(t, repo.SetValueTranslation(ctx, vt))
	got, err := repo.GetValueTranslation(ctx, vt.AttributeValueID, vt.TranslationID)
	require.NoError(t, err)
	require.NotNil(t, got.Value)
	assert.Equal(t, "42", *got.Value)

	list, err := repo.ListValueTranslations(ctx, vt.AttributeValueID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Value)
}

func TestDocuments(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	attrID, docID := uuid.New(), uuid.New()
	d := &models.AttributeDocument{ID: uuid.New(), AttributeID: attrID, DocumentID: docID, Position: 1}
	mock.ExpectExec(`INSERT\s+INTO\s+attribute_documents`).
		WithArgs(d.ID, attrID, docID, 1.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM\s+attribute_documents\s+WHERE\s+attribute_id\s*=\s*\$1`).
		WithArgs(attrID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "attribute_id", "document_id", "position"}).
			AddRow(d.ID.String(), attrID.String(), docID.String(), 1.0))

	ctx := context.Background()
	require.NoError(t, repo.AddDocument(ctx, d))
	got, err := repo.ListDocuments(ctx, attrID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, docID, got[0].DocumentID)
}
