package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewMySQLStore(db), mock
}

func TestMySQLStore_Get(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()
	const q = `SELECT v FROM kv_store WHERE k = ?`

	mock.ExpectQuery(q).WithArgs("registration:id:1").
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow([]byte(`{"id":"1"}`)))
	got, err := s.Get(ctx, "registration:id:1")
	require.NoError(t, err)
	require.Equal(t, `{"id":"1"}`, string(got))

	mock.ExpectQuery(q).WithArgs("registration:id:2").WillReturnRows(sqlmock.NewRows([]string{"v"}))
	_, err = s.Get(ctx, "registration:id:2")
	require.ErrorIs(t, err, ErrNil)

	mock.ExpectQuery(q).WithArgs("registration:id:3").WillReturnError(errors.New("conn reset"))
	_, err = s.Get(ctx, "registration:id:3")
	require.EqualError(t, err, "conn reset")
}

func TestMySQLStore_Set(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO kv_store (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`).
		WithArgs("purchase:p", []byte("v")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, s.Set(context.Background(), "purchase:p", []byte("v")))
}

func TestMySQLStore_SetNX(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()
	const q = `INSERT IGNORE INTO kv_store (k, v) VALUES (?, ?)`

	mock.ExpectExec(q).WithArgs("registration:dni:123", []byte("first")).WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := s.SetNX(ctx, "registration:dni:123", []byte("first"))
	require.NoError(t, err)
	require.True(t, ok)

	mock.ExpectExec(q).WithArgs("registration:dni:123", []byte("second")).WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = s.SetNX(ctx, "registration:dni:123", []byte("second"))
	require.NoError(t, err)
	require.False(t, ok)

	mock.ExpectExec(q).WithArgs("registration:dni:9", []byte("x")).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("rows affected unsupported")))
	_, err = s.SetNX(ctx, "registration:dni:9", []byte("x"))
	require.Error(t, err)
}

func TestMySQLStore_Keys(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT k FROM kv_store WHERE k LIKE ? ESCAPE '\\'`).
		WithArgs("registration:%").
		WillReturnRows(sqlmock.NewRows([]string{"k"}).AddRow("registration:dni:1").AddRow("registration:id:a"))

	keys, err := s.Keys(context.Background(), "registration:*")
	require.NoError(t, err)
	require.Equal(t, []string{"registration:dni:1", "registration:id:a"}, keys)
}

func TestMySQLStore_DelFlush(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM kv_store WHERE k IN (?,?,?)`).
		WithArgs("registration:id:a", "purchase:p", "missing").
		WillReturnResult(sqlmock.NewResult(0, 2))
	n, err := s.Del(ctx, "registration:id:a", "purchase:p", "missing")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	n, err = s.Del(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	mock.ExpectExec(`DELETE FROM kv_store`).WillReturnResult(sqlmock.NewResult(0, 5))
	require.NoError(t, s.FlushAll(ctx))
}
