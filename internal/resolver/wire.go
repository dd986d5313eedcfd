package resolver

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/affinidi/did-cache-go/internal/pool"
)

// encodeBufPool reuses the scratch buffers used to marshal wire frames,
// through the generic sync.Pool wrapper in internal/pool.
var encodeBufPool = pool.New(func() *bytes.Buffer { return new(bytes.Buffer) })

func marshalPooled(v any) ([]byte, error) {
	buf := encodeBufPool.Get()
	buf.Reset()
	defer encodeBufPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// wireRequest is sent by the client over the websocket to ask the server to
// resolve a DID. Hash lets the server route an out-of-order reply without
// re-deriving it, and lets the client match the reply back to its waiters.
type wireRequest struct {
	DID  string `json:"did"`
	Hash string `json:"hash"`
}

// wireEnvelope is the server's reply. Type discriminates success from
// failure; exactly one of Document/Error is populated.
type wireEnvelope struct {
	Type     string          `json:"type"` // "Response" or "Error"
	DID      string          `json:"did"`
	Hash     string          `json:"hash"`
	Document json.RawMessage `json:"document,omitempty"`
	Error    string          `json:"error,omitempty"`
}

const (
	wireTypeResponse = "Response"
	wireTypeError    = "Error"
)

// wireResult is the value threaded back through a waiter's reply channel:
// the decoded document, or an error if the server reported one.
type wireResult struct {
	document Document
	err      error
}

func encodeRequest(did, hash string) ([]byte, error) {
	b, err := marshalPooled(wireRequest{DID: did, Hash: hash})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return b, nil
}

func decodeEnvelope(raw []byte) (wireEnvelope, error) {
	var env wireEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return wireEnvelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

func encodeResponse(did, hash string, doc Document) ([]byte, error) {
	b, err := marshalPooled(wireEnvelope{
		Type:     wireTypeResponse,
		DID:      did,
		Hash:     hash,
		Document: doc.Raw,
	})
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return b, nil
}

func encodeError(did, hash string, cause error) ([]byte, error) {
	b, err := marshalPooled(wireEnvelope{
		Type:  wireTypeError,
		DID:   did,
		Hash:  hash,
		Error: cause.Error(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode error: %w", err)
	}
	return b, nil
}

// WireRequest is the decoded form of a client's Request frame, exported so
// internal/server can read it off an accepted connection without this
// package's wire types leaking further than necessary.
type WireRequest struct {
	DID  string
	Hash string
}

// DecodeRequest parses a Request frame received on the server side.
func DecodeRequest(raw []byte) (WireRequest, error) {
	var req wireRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return WireRequest{}, fmt.Errorf("decode request: %w", err)
	}
	return WireRequest{DID: req.DID, Hash: req.Hash}, nil
}

// EncodeResponseFrame builds the bytes for a successful Response frame.
func EncodeResponseFrame(did, hash string, doc Document) ([]byte, error) {
	return encodeResponse(did, hash, doc)
}

// EncodeErrorFrame builds the bytes for an Error frame.
func EncodeErrorFrame(did, hash string, cause error) ([]byte, error) {
	return encodeError(did, hash, cause)
}
