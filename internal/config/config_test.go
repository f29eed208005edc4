package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("GHOSTTRACE_DATA_DIR", "")
	t.Setenv("GHOSTTRACE_LOG_LEVEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Index.TopK)
	assert.Equal(t, []string{".txt", ".md"}, cfg.Ingest.Extensions)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 250, cfg.Watch.DebounceMS)
	assert.NotEmpty(t, cfg.Index.DataDir)
}

func TestLoad_AppliesDefaultsToPartialFile(t *testing.T) {
	t.Setenv("GHOSTTRACE_DATA_DIR", "")
	t.Setenv("GHOSTTRACE_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "ghosttrace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index:\n  data_dir: /srv/gt\n  top_k: 3\nrisk:\n  critical_types: [config]\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/gt", cfg.Index.DataDir)
	assert.Equal(t, 3, cfg.Index.TopK)
	assert.Equal(t, []string{"config"}, cfg.Risk.CriticalTypes)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, filepath.Join("/srv/gt", "index.db"), cfg.IndexPath())
	assert.Equal(t, filepath.Join("/srv/gt", "metadata.json"), cfg.MetadataPath())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GHOSTTRACE_DATA_DIR", "/tmp/override")
	t.Setenv("GHOSTTRACE_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override", cfg.Index.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index: [unterminated"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("GHOSTTRACE_DATA_DIR", "")
	t.Setenv("GHOSTTRACE_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Index.DataDir = "/data"
	cfg.Metrics.Addr = ":9464"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
