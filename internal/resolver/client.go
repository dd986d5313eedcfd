package resolver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/affinidi/did-cache-go/internal/resolver/methods"
)

// Client is the public entry point of the SDK: Resolve/Remove implement the
// cache-first resolution pipeline described in SPEC_FULL.md §7.5. A Client
// with an empty ServiceAddress runs in local mode, dispatching directly to
// the method resolvers; one with a ServiceAddress dials a resolver server
// and resolves misses over the wire via a NetworkTask.
type Client struct {
	cfg    Config
	logger *slog.Logger

	cache      *DocumentCache[string, Document]
	dispatcher methods.Dispatcher
	network    *NetworkTask
}

// New builds a Client from cfg, validating it first. In network mode it
// dials ServiceAddress and blocks until the connection is established or
// ctx is cancelled.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:        cfg,
		logger:     logger,
		cache:      NewDocumentCache[string, Document](cfg.CacheCapacity, time.Duration(cfg.CacheTTLSeconds)*time.Second),
		dispatcher: methods.Default(),
	}

	if strings.TrimSpace(cfg.ServiceAddress) != "" {
		nt, err := StartNetworkTask(ctx, cfg.ServiceAddress, cfg, logger)
		if err != nil {
			return nil, &TransportError{Cause: err}
		}
		c.network = nt
	}

	return c, nil
}

// Close stops the background network task, if one is running.
func (c *Client) Close() {
	if c.network != nil {
		c.network.Shutdown()
	}
}

// Resolve returns the document for did, preferring the cache and falling
// back to local or network resolution on a miss. The DID's size and shape
// are always validated, in that order, regardless of whether the result
// will come from the cache.
func (c *Client) Resolve(ctx context.Context, did string) (ResolveResponse, error) {
	if err := validateDIDSize(did, c.cfg.MaxDIDSizeKB); err != nil {
		return ResolveResponse{}, err
	}
	parts, err := validateDIDShape(did, c.cfg.MaxDIDParts)
	if err != nil {
		return ResolveResponse{}, err
	}
	method := strings.ToLower(parts[1])
	hash := hashDID(did)

	if doc, ok := c.cache.Get(hash); ok {
		return ResolveResponse{DID: did, Method: method, DIDHash: hash, Document: doc, CacheHit: true}, nil
	}

	var doc Document
	if c.network == nil {
		var mdoc methods.Document
		mdoc, err = c.dispatcher.Resolve(ctx, method, did)
		doc = Document{ID: mdoc.ID, Raw: mdoc.Raw}
	} else {
		doc, err = c.resolveOverNetwork(ctx, did, hash)
	}
	if err != nil {
		var unsupported *methods.UnsupportedMethodError
		if errors.As(err, &unsupported) {
			return ResolveResponse{}, &UnsupportedMethodError{Method: unsupported.Method}
		}
		return ResolveResponse{}, err
	}

	c.cache.Set(hash, doc)
	return ResolveResponse{DID: did, Method: method, DIDHash: hash, Document: doc, CacheHit: false}, nil
}

// Remove evicts did from the cache, returning the document that was stored
// (if any) and whether it was present.
func (c *Client) Remove(did string) (Document, bool) {
	return c.cache.Remove(hashDID(did))
}

// CacheStats reports the document cache's current size and cumulative
// hit/miss counters, for server /stats endpoints and diagnostics.
func (c *Client) CacheStats() (entries, hits, misses int) {
	hits, misses = c.cache.Stats()
	return c.cache.Len(), hits, misses
}

func (c *Client) resolveOverNetwork(ctx context.Context, did, hash string) (Document, error) {
	uid := uuid.NewString()[:8]
	reply := make(chan wireResult, 1)

	if err := c.network.Submit(did, hash, uid, reply); err != nil {
		return Document{}, err
	}

	timeout := time.Duration(c.cfg.NetworkTimeoutMS) * time.Millisecond
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		c.network.CancelWait(hash, uid)
		return Document{}, ctx.Err()
	case <-timer.C:
		c.network.CancelWait(hash, uid)
		return Document{}, &TimeoutError{DID: did}
	case result := <-reply:
		if result.err != nil {
			return Document{}, result.err
		}
		return result.document, nil
	}
}

// hashDID derives the stable, collision-resistant key used for caching,
// coalescing, and wire routing. Client and server must agree on the same
// digest; this repository fixes it to sha256 (see DESIGN.md's Open
// Question ledger).
func hashDID(did string) string {
	sum := sha256.Sum256([]byte(did))
	return hex.EncodeToString(sum[:])
}

// validateDIDSize enforces the max_did_size_kb guard: len(did)/1000 bytes
// against max_did_size_kb, a DID of exactly that many bytes is accepted,
// one byte larger is rejected.
func validateDIDSize(did string, maxKB float64) error {
	sizeKB := float64(len(did)) / 1000.0
	if sizeKB > maxKB {
		return &DIDError{DID: did, Reason: fmt.Sprintf("size %.3fKB exceeds max of %.3fKB", sizeKB, maxKB)}
	}
	return nil
}

// validateDIDShape enforces the "did:<method>:<method-specific-id>" shape
// (at least 3 colon-separated segments). The max_did_parts cap applies only
// to the last colon segment split on '.', not the overall colon count; see
// SPEC_FULL.md §12.
func validateDIDShape(did string, maxParts int) ([]string, error) {
	parts := strings.Split(did, ":")
	if len(parts) < 3 {
		return nil, &DIDError{DID: did, Reason: "did isn't to spec"}
	}
	lastParts := strings.Split(parts[len(parts)-1], ".")
	if len(lastParts) > maxParts {
		return nil, &DIDError{DID: did, Reason: fmt.Sprintf("exceeds max_did_parts of %d", maxParts)}
	}
	if parts[0] != "did" {
		return nil, &DIDError{DID: did, Reason: "missing did: prefix"}
	}
	return parts, nil
}
