// Package methods implements MethodDispatcher (SPEC_FULL.md §7.7): one
// resolver function per did:<method> token. Per-method resolution logic is
// an external collaborator spec.md never re-specifies algorithmically, so
// each resolver here is a pragmatic, self-contained stand-in sufficient to
// exercise the cache/coalescing/wire pipeline end to end, not a faithful
// reimplementation of any particular DID method's full resolution rules.
package methods

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Document mirrors resolver.Document without importing it, to avoid an
// import cycle (resolver imports methods for dispatch).
type Document struct {
	ID  string
	Raw json.RawMessage
}

// Resolver resolves one did:<method>:... DID into a document.
type Resolver func(ctx context.Context, did string) (Document, error)

// Dispatcher maps a lowercase method token to its Resolver.
type Dispatcher struct {
	resolvers map[string]Resolver
}

// ErrUnsupportedMethod-style errors are reported through this type so
// callers can identify the offending token without string matching.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported did method: %s", e.Method)
}

// Default returns the dispatcher shipped with this repository, covering the
// methods named in SPEC_FULL.md §7.7: ethr, jwk, key, peer, pkh, web.
func Default() Dispatcher {
	return Dispatcher{resolvers: map[string]Resolver{
		"ethr": ResolveEthr,
		"jwk":  ResolveJWK,
		"key":  ResolveKey,
		"peer": ResolvePeer,
		"pkh":  ResolvePKH,
		"web":  ResolveWeb,
	}}
}

// Resolve looks up method (case-insensitively) and invokes its resolver.
func (d Dispatcher) Resolve(ctx context.Context, method, did string) (Document, error) {
	fn, ok := d.resolvers[strings.ToLower(method)]
	if !ok {
		return Document{}, &UnsupportedMethodError{Method: method}
	}
	return fn(ctx, did)
}
