package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COSTBOOK_CONFIG_FILE", "")
	t.Setenv("COSTBOOK_LISTEN_ADDR", "")
	t.Setenv("COSTBOOK_DB_PATH", "")
	t.Setenv("COSTBOOK_DEBUG", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "costbook.db", cfg.DBPath)
	assert.False(t, cfg.Debug)
}

func TestLoadYAMLFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "costbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: :9999\ndb_path: /tmp/from-file.db\n"), 0o644))

	t.Setenv("COSTBOOK_CONFIG_FILE", path)
	t.Setenv("COSTBOOK_LISTEN_ADDR", "")
	t.Setenv("COSTBOOK_DB_PATH", "/tmp/from-env.db")
	t.Setenv("COSTBOOK_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr, "file value survives when env is empty")
	assert.Equal(t, "/tmp/from-env.db", cfg.DBPath, "env wins over file")
	assert.True(t, cfg.Debug)
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("COSTBOOK_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestMergeKeepsBaseForZeroOverride(t *testing.T) {
	base := Config{ListenAddr: ":8080", DBPath: "a.db", Debug: true}
	merged := base.Merge(Config{DBPath: "  b.db  "})
	assert.Equal(t, ":8080", merged.ListenAddr)
	assert.Equal(t, "b.db", merged.DBPath)
	assert.True(t, merged.Debug)
}
