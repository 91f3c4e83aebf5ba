package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  driver: postgres
  dsn: host=db user=u dbname=gtd
redis:
  enabled: true
  ttl: 30s
`)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	// 未配置的键取默认值
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  dsn: file.db
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("APP_DATABASE_DSN", ":memory:")
	t.Setenv("APP_SERVER_PORT", "7000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Database.DSN)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: oracle
  dsn: x
`)
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestValidate_RateLimit(t *testing.T) {
	cfg := Config{
		Server:    ServerConfig{Port: 8080},
		Database:  DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
		RateLimit: RateLimitConfig{Enabled: true, RPS: 0, Burst: 1},
	}
	assert.Error(t, cfg.Validate())

	cfg.RateLimit.RPS = 10
	assert.NoError(t, cfg.Validate())
}
