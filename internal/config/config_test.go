package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "anthropic", cfg.Provider.Name)
	assert.Equal(t, 120*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "general", cfg.Review.Focus)
	assert.Equal(t, 50, cfg.Review.MaxFiles)
	assert.True(t, cfg.Review.RedactSecrets)
	assert.Equal(t, "rich", cfg.Output.Format)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Contains(t, cfg.Review.SensitivePatterns, "*.pem")
	assert.Contains(t, cfg.Review.SensitivePatterns, "**/.env")
}

func TestLoadFileMissingYieldsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Provider.Name, cfg.Provider.Name)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider:
  name: ollama
  model: llama3
review:
  focus: security
  max_files: 5
output:
  format: json
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Provider.Name)
	assert.Equal(t, "llama3", cfg.Provider.Model)
	assert.Equal(t, "security", cfg.Review.Focus)
	assert.Equal(t, 5, cfg.Review.MaxFiles)
	assert.Equal(t, "json", cfg.Output.Format)
	// Untouched sections keep defaults.
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoadFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: [unclosed"), 0o600))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CODE_UNC_PROVIDER", "mistral")
	t.Setenv("CODE_UNC_MODEL", "mistral-large")
	t.Setenv("CODE_UNC_FOCUS", "bugs")
	t.Setenv("CODE_UNC_MAX_FILES", "7")
	t.Setenv("CODE_UNC_CACHE_ENABLED", "false")
	t.Setenv("CODE_UNC_CACHE_TTL", "2h")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "mistral", cfg.Provider.Name)
	assert.Equal(t, "mistral-large", cfg.Provider.Model)
	assert.Equal(t, "bugs", cfg.Review.Focus)
	assert.Equal(t, 7, cfg.Review.MaxFiles)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
}

func TestEnvOverridesIgnoreInvalidValues(t *testing.T) {
	t.Setenv("CODE_UNC_MAX_FILES", "not-a-number")
	t.Setenv("CODE_UNC_CACHE_TTL", "soon")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default().Review.MaxFiles, cfg.Review.MaxFiles)
	assert.Equal(t, Default().Cache.TTL, cfg.Cache.TTL)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Provider.Name = "gemini"
	cfg.Review.ExcludePatterns = []string{"*.lock"}
	require.NoError(t, cfg.SaveFile(path))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini", got.Provider.Name)
	assert.Equal(t, []string{"*.lock"}, got.Review.ExcludePatterns)
}

func TestDBPathPrefersConfiguredPath(t *testing.T) {
	cfg := Default()
	cfg.Cache.Path = "/tmp/custom.db"

	path, err := cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", path)
}
