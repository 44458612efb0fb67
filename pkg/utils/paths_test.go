package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAndEnsureDBPath_CreatesParent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "dir", "dump.db")

	got, err := ResolveAndEnsureDBPath(target)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/notes/dump.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "notes", "dump.db"), got)

	got, err = ExpandPath("/abs/dump.db")
	require.NoError(t, err)
	assert.Equal(t, "/abs/dump.db", got)
}

func TestDefaultDBPath_HonoursXDGDataHome(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_DATA_HOME only applies on unix-like systems")
	}
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	assert.Equal(t, filepath.Join(dataHome, "dump", "dump.db"), DefaultDBPath())
}
