package resolver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRequestRoundtrip(t *testing.T) {
	raw, err := encodeRequest("did:key:z6Mk...", "abc123")
	require.NoError(t, err)

	req, err := DecodeRequest(raw)
	require.NoError(t, err)
	assert.Equal(t, "did:key:z6Mk...", req.DID)
	assert.Equal(t, "abc123", req.Hash)
}

func TestEncodeResponseEnvelope(t *testing.T) {
	doc := Document{ID: "did:key:z6Mk...", Raw: json.RawMessage(`{"id":"did:key:z6Mk..."}`)}
	raw, err := encodeResponse("did:key:z6Mk...", "abc123", doc)
	require.NoError(t, err)

	env, err := decodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, wireTypeResponse, env.Type)
	assert.Equal(t, "abc123", env.Hash)
	assert.JSONEq(t, `{"id":"did:key:z6Mk..."}`, string(env.Document))
}

func TestEncodeErrorEnvelope(t *testing.T) {
	raw, err := encodeError("did:key:bad", "xyz", assertError("boom"))
	require.NoError(t, err)

	env, err := decodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, wireTypeError, env.Type)
	assert.Equal(t, "boom", env.Error)
}

func TestDecodeEnvelopeMalformed(t *testing.T) {
	_, err := decodeEnvelope([]byte("not json"))
	assert.Error(t, err)
}

type assertError string

func (e assertError) Error() string { return string(e) }
