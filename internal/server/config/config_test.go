package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, 60*time.Minute, cfg.TemporaryPasswordValidityDuration)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.NotificationEndpoint)
	assert.NotEmpty(t, cfg.AccessPrivateKeyPath)
	assert.NotEmpty(t, cfg.RefreshPublicKeyPath)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("AUTH_ENDPOINT_ADDR", ":9090")
	t.Setenv("AUTH_REDIS_ADDR", "redis:6379")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL", "15m")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":9090", cfg.EndpointAddrHTTP)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	// Untouched values keep their defaults.
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenValidityDuration)
}

func TestParseEnv_InvalidDurationPanics(t *testing.T) {
	t.Setenv("AUTH_ACCESS_TOKEN_TTL", "soon")

	cfg := &Config{}
	cfg.LoadDefaults()
	assert.Panics(t, func() { parseEnv(cfg) })
}

func TestParseJson(t *testing.T) {
	content := `{
		"endpoint_addr_http": ":7070",
		"database_dsn": "postgres://json",
		"access_token_validity_duration": "45m",
		"refresh_token_validity_duration": "48h",
		"notification_endpoint": "http://notify:9000"
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	origArgs := os.Args
	os.Args = []string{"server", "-c", path}
	defer func() { os.Args = origArgs }()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":7070", cfg.EndpointAddrHTTP)
	assert.Equal(t, "postgres://json", cfg.DatabaseDSN)
	assert.Equal(t, 45*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, "http://notify:9000", cfg.NotificationEndpoint)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, 60*time.Minute, cfg.TemporaryPasswordValidityDuration)
	assert.Equal(t, "./keys/private.key", cfg.AccessPrivateKeyPath)
}

func TestParseJson_NoFileFlag(t *testing.T) {
	origArgs := os.Args
	os.Args = []string{"server"}
	defer func() { os.Args = origArgs }()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
}

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	os.Args = []string{"server", "-a", ":6060", "-t", "10", "-x", "redis:6379"}
	defer func() { os.Args = origArgs }()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":6060", cfg.EndpointAddrHTTP)
	assert.Equal(t, 10*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenValidityDuration)
}

func TestLoadConfig_Precedence(t *testing.T) {
	t.Setenv("AUTH_ENDPOINT_ADDR", ":9090")

	content := `{"endpoint_addr_http": ":7070"}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	origArgs := os.Args
	os.Args = []string{"server", "-c", path, "-a", ":6060"}
	defer func() { os.Args = origArgs }()

	cfg := LoadConfig()

	// Flags beat the JSON file, which beats the environment.
	assert.Equal(t, ":6060", cfg.EndpointAddrHTTP)
}
