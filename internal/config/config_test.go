package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "talawang", cfg.Database.DBName)
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 300, cfg.Keycloak.CacheTTL)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
env: production
server:
  port: 9090
database:
  host: db.internal
  dbname: talawang_prod
keycloak:
  issuer: https://sso.example.go.id/realms/talawang
log:
  output: both
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "talawang_prod", cfg.Database.DBName)
	assert.Equal(t, "https://sso.example.go.id/realms/talawang", cfg.Keycloak.Issuer)
	assert.Equal(t, "both", cfg.Log.Output)
	// unset keys keep their defaults
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.True(t, IsProduction(cfg))
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TALAWANG_SERVER_PORT", "7777")
	t.Setenv("TALAWANG_DATABASE_HOST", "envhost")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("env: development\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "envhost", cfg.Database.Host)
}

func TestIsProduction(t *testing.T) {
	assert.False(t, IsProduction(nil))
	assert.False(t, IsProduction(&Config{Env: "development"}))
	assert.True(t, IsProduction(&Config{Env: "production"}))
}
