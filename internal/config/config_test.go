package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "LOG_LEVEL", "LOG_FORMAT", "APP_ENV", "CLIENT_ORIGIN", "SESSION_SECRET",
	"MAX_DIMENSION", "REQUEST_TIMEOUT", "STORE", "DB_PATH", "MINES_API_BASE", "MINES_API_TIMEOUT",
}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	c := FromEnv()
	assert.Equal(t, "5175", c.Port)
	assert.Equal(t, "http://localhost:5173", c.ClientOrigin)
	assert.Equal(t, 64, c.MaxDimension)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, StoreMemory, c.Store)
	assert.Equal(t, "./data/mines.db", c.DBPath)
	assert.Equal(t, "http://localhost:5175/mines", c.MinesAPIBase)
	assert.Equal(t, 5*time.Second, c.MinesAPITimeout)
	assert.Equal(t, zerolog.InfoLevel, c.Level())
	assert.False(t, c.Production())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE", "SQLite")
	t.Setenv("MAX_DIMENSION", "12")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("MINES_API_BASE", "http://mines.example/api")
	t.Setenv("MINES_API_TIMEOUT", "250ms")

	c := FromEnv()
	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, zerolog.DebugLevel, c.Level())
	assert.Equal(t, StoreSQLite, c.Store)

	srv := c.Server()
	assert.Equal(t, 12, srv.MaxDimension)
	assert.Equal(t, 3*time.Second, srv.RequestTimeout)
	assert.True(t, srv.SecureCookies)

	rc := c.Remote()
	assert.Equal(t, "http://mines.example/api", rc.BaseURL)
	assert.Equal(t, 250*time.Millisecond, rc.Timeout)
}

func TestFromEnv_ClientDefaultsToOwnPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "6100")
	assert.Equal(t, "http://localhost:6100/mines", FromEnv().Remote().BaseURL)
}

func TestFromEnv_BadValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_DIMENSION", "lots")
	t.Setenv("REQUEST_TIMEOUT", "10")
	t.Setenv("LOG_LEVEL", "chatty")

	c := FromEnv()
	assert.Equal(t, 64, c.MaxDimension)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, zerolog.InfoLevel, c.Level())
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=7001\nDB_PATH=/tmp/x.db\n"), 0o600))
	t.Setenv("PORT", "7002")

	c := Load(path)
	assert.Equal(t, "7002", c.Port)
	assert.Equal(t, "/tmp/x.db", c.DBPath)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	clearEnv(t)
	c := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.Equal(t, "5175", c.Port)
}
