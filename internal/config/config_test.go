package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads values from the yaml file", func(t *testing.T) {
		// Given: a config file selecting redis storage
		path := writeConfig(t, `
log-level: debug
http-port: "8081"
storage:
  driver: redis
  session-ttl: 30m
redis:
  host: cache
  port: "6380"
  db: 2
`)

		// When: loading it
		conf, err := Load(path)

		// Then: every value comes from the file
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8081", conf.HTTPPort)
		assert.Equal(t, StorageRedis, conf.Storage.Driver)
		assert.Equal(t, 30*time.Minute, conf.Storage.SessionTTL)
		assert.Equal(t, "cache:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, 2, conf.Redis.DB)
	})

	t.Run("Falls back to defaults when the file is missing", func(t *testing.T) {
		// When: loading a path that does not exist
		conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		// Then: defaults are applied
		require.NoError(t, err)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, StorageMemory, conf.Storage.Driver)
		assert.Equal(t, 24*time.Hour, conf.Storage.SessionTTL)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Environment overrides defaults", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "7070")
		t.Setenv("STORAGE_DRIVER", "redis")

		conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		require.NoError(t, err)
		assert.Equal(t, "7070", conf.HTTPPort)
		assert.Equal(t, StorageRedis, conf.Storage.Driver)
	})

	t.Run("Rejects an unknown storage driver", func(t *testing.T) {
		path := writeConfig(t, "storage:\n  driver: floppy\n")

		_, err := Load(path)

		require.ErrorIs(t, err, ErrUnknownStorageDriver)
	})

	t.Run("MustLoad panics on invalid config", func(t *testing.T) {
		path := writeConfig(t, "storage:\n  driver: floppy\n")

		assert.Panics(t, func() { MustLoad(path) })
	})
}
