package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidateReportsFirstOffendingField(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*Config)
		field string
	}{
		{"cache capacity", func(c *Config) { c.CacheCapacity = 0 }, "cache_capacity"},
		{"cache ttl", func(c *Config) { c.CacheTTLSeconds = -1 }, "cache_ttl_seconds"},
		{"network timeout", func(c *Config) { c.NetworkTimeoutMS = 0 }, "network_timeout"},
		{"network cache limit", func(c *Config) { c.NetworkCacheLimitCount = 0 }, "network_cache_limit_count"},
		{"max did parts", func(c *Config) { c.MaxDIDParts = 0 }, "max_did_parts"},
		{"max did size", func(c *Config) { c.MaxDIDSizeKB = 0 }, "max_did_size_kb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mut(&cfg)

			err := cfg.Validate()
			var cfgErr *ConfigError
			if assert.ErrorAs(t, err, &cfgErr) {
				assert.Equal(t, tt.field, cfgErr.Field)
			}
			assert.True(t, errors.Is(err, ErrConfig))
		})
	}
}
