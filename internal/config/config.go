// Package config provides configuration loading and validation for the
// did-cache client and server.
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Command-line flags (not handled here, see cmd/did-cache-server/main.go)
//  2. Environment variables (DIDCACHE_* prefix)
//  3. YAML config file (if specified with --config)
//  4. Hardcoded defaults
//
// Environment variables are mapped from DIDCACHE_CATEGORY_SETTING format,
// e.g., DIDCACHE_SERVER_HOST maps to server.host in YAML.
//
// All configuration is validated during Load() to ensure correctness early.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/affinidi/did-cache-go/internal/resolver"
)

// initConfig sets up the config loader with defaults, env binding, and config file.
func initConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	// Uses DIDCACHE_ prefix: DIDCACHE_SERVER_HOST -> server.host
	v.SetEnvPrefix("DIDCACHE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

// setDefaults configures all default values, mirroring resolver.DefaultConfig
// for the client section.
func setDefaults(v *viper.Viper) {
	def := resolver.DefaultConfig()

	v.SetDefault("client.service_address", def.ServiceAddress)
	v.SetDefault("client.cache_capacity", def.CacheCapacity)
	v.SetDefault("client.cache_ttl_seconds", def.CacheTTLSeconds)
	v.SetDefault("client.network_timeout_ms", def.NetworkTimeoutMS)
	v.SetDefault("client.network_cache_limit_count", def.NetworkCacheLimitCount)
	v.SetDefault("client.max_did_parts", def.MaxDIDParts)
	v.SetDefault("client.max_did_size_kb", def.MaxDIDSizeKB)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8787)
	v.SetDefault("server.ws_path", "/did/v1/ws")

	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", true)
}

// loadFromSource loads configuration from file and environment.
func loadFromSource(configPath string) (*Config, error) {
	v, err := initConfig(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	loadClientConfig(v, cfg)
	loadServerConfig(v, cfg)
	loadLoggingConfig(v, cfg)

	if err := normalizeConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadClientConfig(v *viper.Viper, cfg *Config) {
	cfg.Client.ServiceAddress = v.GetString("client.service_address")
	cfg.Client.CacheCapacity = v.GetInt("client.cache_capacity")
	cfg.Client.CacheTTLSeconds = v.GetInt("client.cache_ttl_seconds")
	cfg.Client.NetworkTimeoutMS = v.GetInt("client.network_timeout_ms")
	cfg.Client.NetworkCacheLimitCount = v.GetInt("client.network_cache_limit_count")
	cfg.Client.MaxDIDParts = v.GetInt("client.max_did_parts")
	cfg.Client.MaxDIDSizeKB = v.GetFloat64("client.max_did_size_kb")
}

func loadServerConfig(v *viper.Viper, cfg *Config) {
	cfg.Server.Host = v.GetString("server.host")
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.WSPath = v.GetString("server.ws_path")
}

func loadLoggingConfig(v *viper.Viper, cfg *Config) {
	cfg.Logging.Level = strings.ToUpper(v.GetString("logging.level"))
	cfg.Logging.Structured = v.GetBool("logging.structured")
}

// normalizeConfig validates and normalizes the configuration.
func normalizeConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1..65535")
	}
	if cfg.Server.WSPath == "" {
		cfg.Server.WSPath = "/did/v1/ws"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}

	if err := cfg.Client.ToResolverConfig().Validate(); err != nil {
		return err
	}
	return nil
}
