package kv

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	pkgdb "github.com/unowned-ai/dump/pkg/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTree(t *testing.T, namespace string) (*sql.DB, *Tree) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "kv.db")
	conn, err := pkgdb.OpenDBConnection(dbPath, false, "OFF")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, pkgdb.UpgradeDB(conn, dbPath, pkgdb.TargetSchemaVersion, nil))

	tree, err := Open(conn, namespace)
	require.NoError(t, err)
	return conn, tree
}

func keys(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key
	}
	return out
}

func TestTree_GetInsertRemove(t *testing.T) {
	_, tree := setupTree(t, pkgdb.EntriesNamespace)
	ctx := context.Background()

	_, ok, err := tree.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, tree.Insert(ctx, "a", []byte("1")))
	v, ok, err := tree.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	require.NoError(t, tree.Remove(ctx, "a"))
	require.NoError(t, tree.Remove(ctx, "a"), "removing an absent key is not an error")

	n, err := tree.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTree_OverwriteKeepsInsertionPosition(t *testing.T) {
	_, tree := setupTree(t, pkgdb.StreamsNamespace)
	ctx := context.Background()

	for _, k := range []string{"z", "a", "m"} {
		require.NoError(t, tree.Insert(ctx, k, []byte(k)))
	}
	require.NoError(t, tree.Insert(ctx, "z", []byte("z2")))

	items, err := tree.Items(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, keys(items))
	assert.Equal(t, []byte("z2"), items[0].Value)

	items, err = tree.Items(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"m", "a", "z"}, keys(items))
}

func TestTree_InvalidNamespace(t *testing.T) {
	_, err := Open(nil, "entries; DROP TABLE streams")
	assert.Error(t, err)
}

func TestTree_StorageFailureIsTyped(t *testing.T) {
	conn, tree := setupTree(t, pkgdb.SyncNamespace)
	require.NoError(t, conn.Close())

	err := tree.Insert(context.Background(), "sync_id", []byte("0"))
	require.Error(t, err)

	var kvErr *Error
	require.True(t, errors.As(err, &kvErr))
	assert.Equal(t, "insert", kvErr.Op)
	assert.Equal(t, pkgdb.SyncNamespace, kvErr.Namespace)
	assert.Equal(t, "sync_id", kvErr.Key)
}
