package methods

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKeyProducesVerificationMethod(t *testing.T) {
	did := "did:key:z6MkiToqovww7vYtxm1xNM15u9JzqzUFZ1k7s7MazYJUyAxv"
	doc, err := ResolveKey(context.Background(), did)
	require.NoError(t, err)
	assert.Equal(t, did, doc.ID)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(doc.Raw, &parsed))
	assert.Equal(t, did, parsed["id"])
	assert.NotEmpty(t, parsed["verificationMethod"])
}

func TestResolveKeyRejectsMissingIdentifier(t *testing.T) {
	_, err := ResolveKey(context.Background(), "did:key:")
	assert.Error(t, err)
}

func TestResolveKeyRejectsNonMultibasePrefix(t *testing.T) {
	_, err := ResolveKey(context.Background(), "did:key:abc123")
	assert.Error(t, err)
}

func TestDecodeBase58RejectsInvalidCharacter(t *testing.T) {
	_, err := decodeBase58("0OIl") // all four are excluded from the base58btc alphabet
	assert.Error(t, err)
}

func TestDecodeBase58RoundtripsLeadingZeros(t *testing.T) {
	// "1" repeated encodes leading zero bytes in base58; decoding must
	// produce them without corrupting the rest of the payload.
	decoded, err := decodeBase58("11z")
	require.NoError(t, err)
	assert.Equal(t, byte(0), decoded[0])
	assert.Equal(t, byte(0), decoded[1])
}
