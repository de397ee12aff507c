package app_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatekey/internal/app"
	"gatekey/internal/failure"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := app.ParseConfig(map[string]string{"GATEKEY_HOME": "/tmp/gk"})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/gk", cfg.Home)
	assert.Equal(t, app.StoreFile, cfg.Store)
	assert.Equal(t, app.ModeLocal, cfg.NetworkMode)
	assert.Equal(t, cfg.RelayURL, cfg.OAuthURL)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 1500*time.Millisecond, cfg.ReadyTimeout)
	assert.Equal(t, 3, cfg.ConnectRetries)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "gatekey.local", cfg.Domain)
}

func TestParseConfigOverrides(t *testing.T) {
	t.Parallel()
	cfg, err := app.ParseConfig(map[string]string{
		"GATEKEY_HOME":         "/tmp/gk",
		"GATEKEY_STORE":        "redis",
		"GATEKEY_REDIS_URL":    "redis://localhost:6379/0",
		"GATEKEY_NETWORK_MODE": "delegated",
		"GATEKEY_RELAY_URL":    "https://relay.example.org",
		"GATEKEY_OAUTH_URL":    "https://oauth.example.org",
		"GATEKEY_SESSION_TTL":  "1h",
	})
	require.NoError(t, err)
	assert.Equal(t, app.StoreRedis, cfg.Store)
	assert.Equal(t, app.ModeDelegated, cfg.NetworkMode)
	assert.Equal(t, "https://oauth.example.org", cfg.OAuthURL)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
}

func TestParseConfigRejects(t *testing.T) {
	t.Parallel()
	cases := map[string]map[string]string{
		"unknown store":     {"GATEKEY_STORE": "s3"},
		"redis without url": {"GATEKEY_STORE": "redis"},
		"postgres sans dsn": {"GATEKEY_STORE": "postgres"},
		"unknown mode":      {"GATEKEY_NETWORK_MODE": "p2p"},
		"bad duration":      {"GATEKEY_SESSION_TTL": "soon"},
		"zero timeout":      {"GATEKEY_READY_TIMEOUT": "0s"},
		"negative retries":  {"GATEKEY_CONNECT_RETRIES": "-1"},
	}
	for name, environ := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			environ["GATEKEY_HOME"] = "/tmp/gk"
			_, err := app.ParseConfig(environ)
			assert.ErrorIs(t, err, failure.InvalidInput)
		})
	}
}

func TestDocumentsPath(t *testing.T) {
	t.Parallel()

	cfg, err := app.ParseConfig(map[string]string{"GATEKEY_HOME": "/tmp/gk"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/gk", "documents.json"), cfg.DocumentsPath())

	cfg.Store = app.StoreMemory
	assert.Empty(t, cfg.DocumentsPath())

	cfg.DocumentsFile = "/srv/docs.json"
	assert.Equal(t, "/srv/docs.json", cfg.DocumentsPath())
}

func TestParseRelayConfig(t *testing.T) {
	t.Parallel()
	cfg, err := app.ParseRelayConfig(map[string]string{"GATEKEY_RELAY_SECRET": "abcd"})
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "abcd", cfg.Secret)
	assert.Equal(t, "gatekey-dev", cfg.Network)
}

// Not parallel: godotenv writes to the process environment.
func TestLoadConfigReadsDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gatekey.env")
	require.NoError(t, os.WriteFile(path, []byte("GATEKEY_HOME="+dir+"\nGATEKEY_APP_NAME=dotenv-app\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("GATEKEY_HOME")
		_ = os.Unsetenv("GATEKEY_APP_NAME")
	})

	cfg, err := app.LoadConfig(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Home)
	assert.Equal(t, "dotenv-app", cfg.AppName)
}
