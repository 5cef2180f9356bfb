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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_PicksProfileByEnv(t *testing.T) {
	path := writeConfig(t, `
env: dev
local:
  server:
    port: 1111
dev:
  server:
    port: 2222
  log:
    level: warn
prod:
  server:
    port: 3333
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 2222, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_DefaultsFillEmptyProfile(t *testing.T) {
	cfg, err := Load(writeConfig(t, "env: local\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://feefomit-chizhick-deb9.twc1.net", cfg.Chizhik.BaseURL)
	assert.Equal(t, "/api", cfg.Chizhik.Prefix)
	assert.Equal(t, "0c5b2444-70a0-4932-980c-b4dc0d3f02b5", cfg.Chizhik.DefaultCityID)
	assert.Equal(t, 7892, cfg.Server.Port)
	assert.Equal(t, 24, cfg.Pagination.PageSize)

	assert.Equal(t, 20, cfg.HTTP.Retries)
	assert.Equal(t, 10, cfg.HTTP.SearchRetries)
	assert.Equal(t, 800, cfg.HTTP.BackoffBaseMillis)
	assert.Equal(t, 100, cfg.HTTP.BackoffStepMillis)
	assert.Equal(t, 2500, cfg.HTTP.BackoffMaxMillis)

	assert.Equal(t, "file", cfg.Cache.Backend)
	assert.Equal(t, 12*time.Hour, cfg.TreeTTL())
	assert.Equal(t, 10*time.Minute, cfg.OffersTTL())

	// local-профиль болтливый, prod строгий
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_ProdLoggingDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "env: prod\n"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_SharedCacheSectionInherited(t *testing.T) {
	path := writeConfig(t, `
env: local
cache:
  backend: redis
  redis_addr: 127.0.0.1:6379
  tree_ttl_hours: 6
local:
  server:
    port: 9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "127.0.0.1:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 6*time.Hour, cfg.TreeTTL())
}

func TestLoad_ProfileCacheOverridesShared(t *testing.T) {
	path := writeConfig(t, `
env: local
cache:
  backend: redis
local:
  cache:
    backend: File
    dir: /tmp/cache
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Cache.Backend, "backend name is normalized")
	assert.Equal(t, "/tmp/cache", cfg.Cache.Dir)
}

func TestLoad_UnknownEnvRejected(t *testing.T) {
	_, err := Load(writeConfig(t, "env: staging\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "staging")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
