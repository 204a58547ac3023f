package dbx

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectAffected(t *testing.T) {
	require.NoError(t, ExpectAffected(sqlmock.NewResult(0, 1)))
	require.ErrorIs(t, ExpectAffected(sqlmock.NewResult(0, 0)), common.ErrorNotFound)
	require.Error(t, ExpectAffected(sqlmock.NewErrorResult(errors.New("boom"))))
}

func TestNullUUIDRoundTrip(t *testing.T) {
	assert.False(t, NullUUID(nil).Valid)
	assert.Nil(t, UUIDPtr(uuid.NullUUID{}))

	id := uuid.New()
	n := NullUUID(&id)
	require.True(t, n.Valid)
	assert.Equal(t, id, *UUIDPtr(n))
}

func TestCollectRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow("a").AddRow("b"))

	rows, err := db.Query("SELECT v")
	require.NoError(t, err)
	got, err := CollectRows(rows, func(s Scanner) (*string, error) {
		var v string
		return &v, s.Scan(&v)
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", *got[1])

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow("a").RowError(0, errors.New("bad row")))
	rows, err = db.Query("SELECT v")
	require.NoError(t, err)
	_, err = CollectRows(rows, func(s Scanner) (*string, error) {
		var v string
		return &v, s.Scan(&v)
	})
	require.Error(t, err)
}
