package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "schemas", cfg.SchemaDir)
	assert.Equal(t, filepath.Join(".formflow", "drafts"), cfg.DraftsDir)
	assert.Equal(t, "human", cfg.LogFormat)
	assert.False(t, cfg.Strict)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schema_dir: forms\nstrict: true\nlog_format: json\n"), 0o644))
	t.Setenv("FORMFLOW_DRAFTS_DIR", "/tmp/drafts")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "forms", cfg.SchemaDir)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/tmp/drafts", cfg.DraftsDir)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
