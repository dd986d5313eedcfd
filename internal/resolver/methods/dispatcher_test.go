package methods

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDispatcherResolvesEachRegisteredMethod(t *testing.T) {
	d := Default()
	ctx := context.Background()

	tests := []string{
		"did:ethr:0x1:0xb9c5714089478a327f09197987f16f9e5d936e8a",
		"did:jwk:eyJjcnYiOiJQLTI1NiJ9",
		"did:key:z6MkiToqovww7vYtxm1xNM15u9JzqzUFZ1k7s7MazYJUyAxv",
		"did:peer:2.Vz6MkiToqovww7vYtxm1xNM15u9JzqzUFZ1k7s7MazYJUyAxv",
		"did:pkh:solana:4sGjMW1sUnHzSxGspuhpqLDx6wiyjNtZ:CKg5d12Jhpej1JqtmxLJgaFqqeYjxgPqToJ4LBdvG9Ev",
	}
	methodOf := []string{"ethr", "jwk", "key", "peer", "pkh"}

	for i, did := range tests {
		doc, err := d.Resolve(ctx, methodOf[i], did)
		require.NoError(t, err, "method %s", methodOf[i])
		assert.Equal(t, did, doc.ID)
		assert.NotEmpty(t, doc.Raw)
	}
}

func TestDispatcherCaseInsensitiveLookup(t *testing.T) {
	d := Default()
	_, err := d.Resolve(context.Background(), "KEY", "did:key:z6MkiToqovww7vYtxm1xNM15u9JzqzUFZ1k7s7MazYJUyAxv")
	assert.NoError(t, err)
}

func TestDispatcherUnsupportedMethod(t *testing.T) {
	d := Default()
	_, err := d.Resolve(context.Background(), "nope", "did:nope:abc")

	var unsupported *UnsupportedMethodError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "nope", unsupported.Method)
}
