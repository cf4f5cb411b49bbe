package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/km-arc/go-lifespan/framework/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// unsetEnv clears key for the duration of the test and restores it afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "APP_NAME", "APP_ENV", "APP_PORT", "LOG_LEVEL", "LOG_FORMAT",
		"DB_DRIVER", "DB_DSN", "REDIS_ADDR", "LIFESPAN_STARTUP_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT")

	cfg := config.Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "GoLifespan", cfg.App.Name)
	assert.Equal(t, "local", cfg.App.Env)
	assert.Equal(t, "8000", cfg.App.Port)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "file::memory:?cache=shared", cfg.DB.DSN)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Lifespan.StartupTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("APP_NAME", "MyApp")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("LIFESPAN_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")

	cfg := config.Load()

	assert.Equal(t, "MyApp", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, 2*time.Second, cfg.Lifespan.ShutdownTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoad_EnvFile(t *testing.T) {
	unsetEnv(t, "APP_NAME", "LOG_LEVEL", "DB_DSN")
	path := writeEnvFile(t, "APP_NAME=FromFile\nLOG_LEVEL=debug\nDB_DSN=file:test.db\n")

	cfg := config.Load(path)

	assert.Equal(t, "FromFile", cfg.App.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "file:test.db", cfg.DB.DSN)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	t.Setenv("APP_NAME", "FromEnv")
	path := writeEnvFile(t, "APP_NAME=FromFile\n")

	cfg := config.Load(path)
	assert.Equal(t, "FromEnv", cfg.App.Name)
}

// ── Get / GetInt / GetBool / GetDuration ─────────────────────────────────────

func TestGet(t *testing.T) {
	t.Setenv("CUSTOM_KEY", "hello")
	assert.Equal(t, "hello", config.Get("CUSTOM_KEY", "default"))

	unsetEnv(t, "MISSING_KEY")
	assert.Equal(t, "fallback", config.Get("MISSING_KEY", "fallback"))
}

func TestGetInt(t *testing.T) {
	t.Setenv("SOME_INT", "42")
	assert.Equal(t, 42, config.GetInt("SOME_INT", 0))

	t.Setenv("SOME_INT", "notanint")
	assert.Equal(t, 99, config.GetInt("SOME_INT", 99))
}

func TestGetBool(t *testing.T) {
	for _, val := range []string{"true", "1", "True", "TRUE"} {
		t.Setenv("BOOL_KEY", val)
		assert.True(t, config.GetBool("BOOL_KEY", false), val)
	}

	t.Setenv("BOOL_KEY", "false")
	assert.False(t, config.GetBool("BOOL_KEY", true))

	t.Setenv("BOOL_KEY", "notabool")
	assert.True(t, config.GetBool("BOOL_KEY", true))
}

func TestGetDuration(t *testing.T) {
	t.Setenv("DURATION_KEY", "250ms")
	assert.Equal(t, 250*time.Millisecond, config.GetDuration("DURATION_KEY", time.Second))

	t.Setenv("DURATION_KEY", "soon")
	assert.Equal(t, time.Second, config.GetDuration("DURATION_KEY", time.Second))
}
