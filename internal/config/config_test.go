package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/automator/pkg/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "automator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Strict)
	assert.Equal(t, "uuid", cfg.IDs)
	assert.Equal(t, "Untitled Workflow", cfg.DefaultWorkflowName)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "text", cfg.View.Format)
	assert.NoError(t, cfg.Validate())
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
	assert.NotNil(t, loader.v)
	assert.Same(t, loader.v, loader.Viper())
}

func TestLoader_LoadFromFile(t *testing.T) {
	path := writeConfig(t, `
strict: true
ids: counter
default_workflow_name: My Flow
log:
  level: debug
  format: json
redis:
  enabled: true
  address: redis:6379
view:
  width: 72
`)

	cfg, err := NewLoader().LoadFromFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.Strict)
	assert.Equal(t, "counter", cfg.IDs)
	assert.Equal(t, "My Flow", cfg.DefaultWorkflowName)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
	assert.Equal(t, "automator:events:", cfg.Redis.ChannelPrefix)
	assert.Equal(t, 72, cfg.View.Width)
	assert.Equal(t, "text", cfg.View.Format)
}

func TestLoader_LoadFromFile_NonExistent(t *testing.T) {
	_, err := NewLoader().LoadFromFile("/nonexistent/path/automator.yaml")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoader_LoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad id kind", "ids: timestamp\n"},
		{"bad view format", "view:\n  format: html\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"redis without address", "redis:\n  enabled: true\n  address: \"\"\n"},
		{"wrong structure", "log:\n  - level\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().LoadFromFile(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoader_Load_DefaultsWithNoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(ConfigPathEnv, "")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_Load_FromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "automator.yaml"), []byte("strict: true\n"), 0644))
	t.Chdir(dir)
	t.Setenv(ConfigPathEnv, "")

	loader := NewLoader()
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Strict)
	assert.Contains(t, loader.ConfigFileUsed(), "automator.yaml")
}

func TestLoader_Load_WithConfigPathEnv(t *testing.T) {
	t.Setenv(ConfigPathEnv, writeConfig(t, "default_workflow_name: From Env Path\n"))

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "From Env Path", cfg.DefaultWorkflowName)
}

func TestLoader_Load_EnvOverridesTakePrecedence(t *testing.T) {
	t.Setenv(ConfigPathEnv, writeConfig(t, "log:\n  level: warn\nhttp:\n  port: 9000\n"))
	t.Setenv("AUTOMATOR_LOG_LEVEL", "debug")
	t.Setenv("AUTOMATOR_STRICT", "true")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 9000, cfg.HTTP.Port)
}

func TestConfig_StoreOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strict = true
	cfg.IDs = "counter"
	cfg.DefaultWorkflowName = "Renamed"

	opts, err := cfg.StoreOptions()
	require.NoError(t, err)

	store, err := builder.New(opts...)
	require.NoError(t, err)
	assert.True(t, store.Strict())

	w, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "Renamed", w.Name)

	a, err := store.AddFromCatalog(t.Context(), "files")
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)
}

func TestConfig_StoreOptions_UnknownIDs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IDs = "timestamp"

	_, err := cfg.StoreOptions()
	assert.Error(t, err)
}
