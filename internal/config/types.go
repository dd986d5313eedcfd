// Package config provides configuration loading for the did-cache client
// and server using Viper. Configuration is loaded from YAML files with
// automatic environment variable binding.
//
// Environment variables use the DIDCACHE_ prefix and underscore-separated
// keys:
//   - DIDCACHE_CLIENT_SERVICE_ADDRESS -> client.service_address
//   - DIDCACHE_CLIENT_CACHE_CAPACITY  -> client.cache_capacity
//   - DIDCACHE_SERVER_PORT            -> server.port
//   - DIDCACHE_LOGGING_LEVEL          -> logging.level
package config

import (
	"os"
	"strings"

	"github.com/affinidi/did-cache-go/internal/resolver"
)

// ClientConfig mirrors resolver.Config with struct tags Viper can bind.
type ClientConfig struct {
	ServiceAddress         string  `yaml:"service_address"           mapstructure:"service_address"`
	CacheCapacity          int     `yaml:"cache_capacity"            mapstructure:"cache_capacity"`
	CacheTTLSeconds        int     `yaml:"cache_ttl_seconds"         mapstructure:"cache_ttl_seconds"`
	NetworkTimeoutMS       int     `yaml:"network_timeout_ms"        mapstructure:"network_timeout_ms"`
	NetworkCacheLimitCount int     `yaml:"network_cache_limit_count" mapstructure:"network_cache_limit_count"`
	MaxDIDParts            int     `yaml:"max_did_parts"             mapstructure:"max_did_parts"`
	MaxDIDSizeKB           float64 `yaml:"max_did_size_kb"           mapstructure:"max_did_size_kb"`
}

// ToResolverConfig converts to the type internal/resolver actually consumes.
func (c ClientConfig) ToResolverConfig() resolver.Config {
	return resolver.Config{
		ServiceAddress:         strings.TrimSpace(c.ServiceAddress),
		CacheCapacity:          c.CacheCapacity,
		CacheTTLSeconds:        c.CacheTTLSeconds,
		NetworkTimeoutMS:       c.NetworkTimeoutMS,
		NetworkCacheLimitCount: c.NetworkCacheLimitCount,
		MaxDIDParts:            c.MaxDIDParts,
		MaxDIDSizeKB:           c.MaxDIDSizeKB,
	}
}

// ServerConfig contains server-related settings.
type ServerConfig struct {
	Host   string `yaml:"host"    mapstructure:"host"`
	Port   int    `yaml:"port"    mapstructure:"port"`
	WSPath string `yaml:"ws_path" mapstructure:"ws_path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"      mapstructure:"level"`
	Structured bool   `yaml:"structured" mapstructure:"structured"`
}

// Config is the root configuration structure shared by both the CLI
// client and the resolver server binaries. Each binary only reads the
// sections relevant to it.
type Config struct {
	Client  ClientConfig  `yaml:"client"  mapstructure:"client"`
	Server  ServerConfig  `yaml:"server"  mapstructure:"server"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// ResolveConfigPath determines the config file path from flag or environment.
func ResolveConfigPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv("DIDCACHE_CONFIG")); v != "" {
		return v
	}
	return ""
}

// Load loads configuration from a YAML file with environment variable
// overrides. This is the main entry point for loading configuration.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (DIDCACHE_*)
//  2. Config file values
//  3. Default values
func Load(path string) (*Config, error) {
	return loadFromSource(path)
}
