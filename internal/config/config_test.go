package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RECIPE_BOX_HOST", "RECIPE_BOX_PORT", "RECIPE_BOX_DB_PATH",
		"RECIPE_BOX_LOG_LEVEL", "RECIPE_BOX_MAX_SERVINGS",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipe-box.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "0.0.0.0:8012", cfg.Addr())
}

func TestLoadEmptyPath(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Scaling.MaxServings)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 9000
database:
  path: /tmp/r.db
scaling:
  max_servings: 48
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset keys keep defaults")
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/tmp/r.db", cfg.Database.Path)
	assert.Equal(t, 48, cfg.Scaling.MaxServings)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "server: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  port: 9000\n")

	t.Setenv("RECIPE_BOX_HOST", "127.0.0.1")
	t.Setenv("RECIPE_BOX_PORT", "7000")
	t.Setenv("RECIPE_BOX_DB_PATH", "/var/lib/recipes.db")
	t.Setenv("RECIPE_BOX_LOG_LEVEL", "warn")
	t.Setenv("RECIPE_BOX_MAX_SERVINGS", "12")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr())
	assert.Equal(t, "/var/lib/recipes.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 12, cfg.Scaling.MaxServings)
}

func TestEnvOverrideBadNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("RECIPE_BOX_PORT", "eighty")
	_, err := Load("")
	assert.ErrorContains(t, err, "RECIPE_BOX_PORT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"db path", func(c *Config) { c.Database.Path = "" }},
		{"max servings", func(c *Config) { c.Scaling.MaxServings = 0 }},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, DefaultConfig().Validate())
}
