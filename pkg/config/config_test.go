package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the developer's own config and environment out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvDB, "")
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvLogLevel, "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
	assert.Equal(t, "127.0.0.1:13371", cfg.Server.Addr)
	assert.EqualValues(t, 16384, cfg.Server.MaxBodyBytes)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db:
  path: /tmp/notes.db
  wal: true
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/notes.db", cfg.DB.Path)
	assert.True(t, cfg.DB.WAL)
	assert.Equal(t, DefaultSync, cfg.DB.Sync)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
}

func TestLoad_DefaultPathPickedUp(t *testing.T) {
	isolate(t)
	cfg := NewConfig()
	cfg.Server.Addr = "127.0.0.1:9999"
	require.NoError(t, cfg.WriteYAML(DefaultPath()))

	loaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", loaded.Server.Addr)
}

func TestLoad_EnvWins(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: 127.0.0.1:1\n"), 0o644))
	t.Setenv(EnvAddr, "127.0.0.1:2")
	t.Setenv(EnvDB, "/env/dump.db")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:2", cfg.Server.Addr)
	assert.Equal(t, "/env/dump.db", cfg.DB.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db:\n  sync: sometimes\nserver:\n  max_body_bytes: 0\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db.sync")
	assert.Contains(t, err.Error(), "server.max_body_bytes")
}
