package db

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLock_SharedHoldersBlockExclusive(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dump.db")

	server := NewFileLock(dbPath)
	require.NoError(t, server.TryRLock())
	defer server.Unlock()

	tui := NewFileLock(dbPath)
	require.NoError(t, tui.TryRLock(), "shared holders must coexist")
	defer tui.Unlock()

	maintenance := NewFileLock(dbPath)
	err := maintenance.TryLock()
	assert.True(t, errors.Is(err, ErrDatabaseBusy), "got %v", err)

	require.NoError(t, server.Unlock())
	require.NoError(t, tui.Unlock())
	require.NoError(t, maintenance.TryLock())
	require.NoError(t, maintenance.Unlock())
	assert.Equal(t, dbPath+".lock", maintenance.Path())
}

func TestFileLock_UnlockWithoutLock(t *testing.T) {
	l := NewFileLock(filepath.Join(t.TempDir(), "dump.db"))
	assert.NoError(t, l.Unlock())
}
