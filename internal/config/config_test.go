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
	assert.Equal(t, ":8008", cfg.Server.Addr)
	assert.Equal(t, 30, cfg.Cache.TTLDays)
	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, 5, cfg.AI.MaxAIIssues)
	assert.Equal(t, 30*24*time.Hour, cfg.CacheTTL())
	assert.Equal(t, 30*time.Second, cfg.AITimeout())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8008", cfg.Server.Addr)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
cache:
  ttl_days: 7
ai:
  enabled: false
  model: some/model
framework: react
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 7*24*time.Hour, cfg.CacheTTL())
	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, "some/model", cfg.AI.Model)
	assert.Equal(t, "react", cfg.Framework)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv(APIKeyEnv, "sk-or-test")
	assert.Equal(t, "sk-or-test", Default().APIKey())
}
