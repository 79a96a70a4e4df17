package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateConfigEnv unsets every RETROTRACKER_ env var so tests don't inherit
// values from the host environment. t.Cleanup restores original values.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(key, envPrefix) {
			continue
		}
		orig := os.Getenv(key)
		t.Cleanup(func() { os.Setenv(key, orig) })
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("RETROTRACKER_DISCORD_TOKEN", "bot-token")
	t.Setenv("RETROTRACKER_DB_PATH", "/tmp/test.db")
	t.Setenv("RETROTRACKER_CACHE_TTL", "24h")
	t.Setenv("RETROTRACKER_IGDB_CLIENT_ID", "client")
	t.Setenv("RETROTRACKER_IGDB_CLIENT_SECRET", "secret")
	t.Setenv("RETROTRACKER_STORE", "JSONFile")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "bot-token", cfg.DiscordToken)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, StoreJSONFile, cfg.Store)
	assert.True(t, cfg.HasIGDBCredentials())
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("RETROTRACKER_DISCORD_TOKEN", "bot-token")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "retrotracker.db", cfg.DBPath)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, 7*24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "https://api.igdb.com/v4", cfg.IGDBBaseURL)
	assert.Equal(t, 20*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.HasIGDBCredentials())
	assert.False(t, cfg.HasRAWGKey())
	assert.Nil(t, cfg.SecretKey)
}

func TestLoad_MissingDiscordToken(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_TOKEN")
}

func TestLoad_InvalidStore(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("RETROTRACKER_DISCORD_TOKEN", "bot-token")
	t.Setenv("RETROTRACKER_STORE", "redis")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE")
}

func TestLoad_InvalidDuration(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("RETROTRACKER_DISCORD_TOKEN", "bot-token")
	t.Setenv("RETROTRACKER_CACHE_TTL", "weekly")

	_, err := Load()

	require.Error(t, err)
}

func TestLoad_SecretKey(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("RETROTRACKER_DISCORD_TOKEN", "bot-token")
	t.Setenv("RETROTRACKER_SECRET_KEY", strings.Repeat("ab", 32))

	cfg, err := Load()

	require.NoError(t, err)
	assert.Len(t, cfg.SecretKey, 32)
}

func TestLoad_SecretKeyWrongLength(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("RETROTRACKER_DISCORD_TOKEN", "bot-token")
	t.Setenv("RETROTRACKER_SECRET_KEY", "abcd")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")
}

func TestSlogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "DEBUG"}
	assert.Equal(t, "DEBUG", cfg.SlogLevel().String())

	cfg.LogLevel = "bogus"
	assert.Equal(t, "INFO", cfg.SlogLevel().String())
}
