package kv

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "devfeed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "posts", []byte(`{"version":1}`)))

	v, err := s.Get(ctx, "posts")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"version":1}`), v)
}

func TestGet_Absent(t *testing.T) {
	s := openStore(t)

	v, err := s.Get(context.Background(), "lastLoginInfo")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSet_LastWriteWins(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "post_1_liked", []byte("false")))
	require.NoError(t, s.Set(ctx, "post_1_liked", []byte("true")))

	v, err := s.Get(ctx, "post_1_liked")
	require.NoError(t, err)
	assert.Equal(t, []byte("true"), v)
}

func TestDelete_Idempotent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("1")))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSetManyAndDeleteMany(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetMany(ctx, map[string][]byte{
		"post_3_liked":      []byte("true"),
		"post_3_like_count": []byte("2"),
		"other":             []byte(`"x"`),
	}))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, []byte("2"), all["post_3_like_count"])

	require.NoError(t, s.DeleteMany(ctx, "post_3_liked", "post_3_like_count", "never_set"))

	all, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"other": []byte(`"x"`)}, all)
}

func TestClear(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Set(ctx, "b", []byte("2")))
	require.NoError(t, s.Clear(ctx))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "devfeed.db")
	ctx := context.Background()

	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "settings", []byte(`{}`)))
	require.NoError(t, s.Close())

	s, err = Open(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Get(ctx, "settings")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), v)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(context.Background(), db))
	require.NoError(t, RunMigrations(context.Background(), db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='kv'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestErrorsWrapped(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.Close())

	_, err := s.Get(ctx, "k")
	require.ErrorContains(t, err, "get k")

	require.ErrorContains(t, s.Set(ctx, "k", nil), "set k")
	require.ErrorContains(t, s.Delete(ctx, "k"), "delete k")
	require.Error(t, s.SetMany(ctx, map[string][]byte{"k": nil}))
	require.Error(t, s.DeleteMany(ctx, "k"))

	_, err = s.List(ctx)
	require.ErrorContains(t, err, "list")
	require.ErrorContains(t, s.Clear(ctx), "clear")
}
