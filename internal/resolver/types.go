package resolver

import "encoding/json"

// Document is a resolved DID document. The core treats its contents as
// opaque: it is cached, coalesced, and shipped over the wire as a byte
// blob, never inspected field-by-field. Only ID is pulled out, since the
// document id returned by a method resolver may differ from the DID that
// was requested (e.g. did:peer numalgo rewriting).
type Document struct {
	ID  string          `json:"id"`
	Raw json.RawMessage `json:"-"`
}

// ResolveResponse is returned to callers of Client.Resolve.
type ResolveResponse struct {
	DID      string
	Method   string
	DIDHash  string
	Document Document
	CacheHit bool
}

// Config controls both a Client and, when embedded in a server, the
// defaults applied to each connection's local resolver. Field names match
// the config keys documented in SPEC_FULL.md §3.
type Config struct {
	// ServiceAddress is the websocket URL of a resolver server
	// (e.g. "ws://localhost:8080/did/v1/ws"). Empty means local mode: DIDs
	// are resolved directly via the method dispatcher, no network task is
	// started.
	ServiceAddress string

	// CacheCapacity is the maximum number of documents held in the cache.
	CacheCapacity int
	// CacheTTLSeconds is how long a cached document stays valid.
	CacheTTLSeconds int

	// NetworkTimeoutMS bounds how long Resolve waits for a network reply
	// before returning a TimeoutError.
	NetworkTimeoutMS int
	// NetworkCacheLimitCount bounds the number of distinct in-flight
	// network requests the RequestList will hold before IsFull() gates new
	// submissions.
	NetworkCacheLimitCount int

	// MaxDIDParts is the maximum number of '.'-separated parts in the last
	// colon-separated segment of a DID. The number of colon-separated
	// segments is not bounded by it.
	MaxDIDParts int
	// MaxDIDSizeKB is the maximum size of a DID string, in kilobytes of
	// 1000 bytes.
	MaxDIDSizeKB float64
}

// DefaultConfig returns the configuration defaults fixed by SPEC_FULL.md §3.
func DefaultConfig() Config {
	return Config{
		CacheCapacity:          100,
		CacheTTLSeconds:        300,
		NetworkTimeoutMS:       5000,
		NetworkCacheLimitCount: 100,
		MaxDIDParts:            5,
		MaxDIDSizeKB:           1.0,
	}
}

// Validate checks the configuration for the invariants SPEC_FULL.md §3
// requires, returning a *ConfigError naming the first offending field.
func (c Config) Validate() error {
	if c.CacheCapacity <= 0 {
		return &ConfigError{Field: "cache_capacity", Msg: "must be positive"}
	}
	if c.CacheTTLSeconds <= 0 {
		return &ConfigError{Field: "cache_ttl_seconds", Msg: "must be positive"}
	}
	if c.NetworkTimeoutMS <= 0 {
		return &ConfigError{Field: "network_timeout", Msg: "must be positive"}
	}
	if c.NetworkCacheLimitCount <= 0 {
		return &ConfigError{Field: "network_cache_limit_count", Msg: "must be positive"}
	}
	if c.MaxDIDParts <= 0 {
		return &ConfigError{Field: "max_did_parts", Msg: "must be positive"}
	}
	if c.MaxDIDSizeKB <= 0 {
		return &ConfigError{Field: "max_did_size_kb", Msg: "must be positive"}
	}
	return nil
}
