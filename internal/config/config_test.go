package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		envValue string
		want     string
	}{
		{"flag takes precedence", "/path/from/flag", "/path/from/env", "/path/from/flag"},
		{"env when no flag", "", "/path/from/env", "/path/from/env"},
		{"empty when neither", "", "", ""},
		{"whitespace flag", "  ", "/path/from/env", "/path/from/env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DIDCACHE_CONFIG", tt.envValue)
			got := ResolveConfigPath(tt.flag)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Client.ServiceAddress)
	assert.Equal(t, 100, cfg.Client.CacheCapacity)
	assert.Equal(t, 300, cfg.Client.CacheTTLSeconds)
	assert.Equal(t, 5000, cfg.Client.NetworkTimeoutMS)
	assert.Equal(t, 100, cfg.Client.NetworkCacheLimitCount)
	assert.Equal(t, 5, cfg.Client.MaxDIDParts)
	assert.Equal(t, 1.0, cfg.Client.MaxDIDSizeKB)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8787, cfg.Server.Port)
	assert.Equal(t, "/did/v1/ws", cfg.Server.WSPath)
}

func TestLoadFromFile(t *testing.T) {
	content := `
client:
  service_address: "ws://localhost:8787/did/v1/ws"
  cache_capacity: 50
  cache_ttl_seconds: 60

server:
  host: "127.0.0.1"
  port: 9090

logging:
  level: "DEBUG"
  structured: false
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://localhost:8787/did/v1/ws", cfg.Client.ServiceAddress)
	assert.Equal(t, 50, cfg.Client.CacheCapacity)
	assert.Equal(t, 60, cfg.Client.CacheTTLSeconds)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Structured)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: [invalid"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeInvalidPort(t *testing.T) {
	content := `
server:
  port: 0
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeInvalidCacheCapacity(t *testing.T) {
	content := `
client:
  cache_capacity: 0
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DIDCACHE_CLIENT_SERVICE_ADDRESS", "ws://cache.internal:8787/did/v1/ws")
	t.Setenv("DIDCACHE_CLIENT_CACHE_CAPACITY", "250")
	t.Setenv("DIDCACHE_SERVER_PORT", "9999")
	t.Setenv("DIDCACHE_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ws://cache.internal:8787/did/v1/ws", cfg.Client.ServiceAddress)
	assert.Equal(t, 250, cfg.Client.CacheCapacity)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}
