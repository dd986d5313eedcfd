package methods

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ResolveEthr, ResolveJWK, ResolvePeer and ResolvePKH synthesize a minimal
// document embedding the method-specific-id, the same stand-in strategy as
// ResolveKey but without any method-specific decoding step (their full
// resolution rules — Ethereum registry lookups, JWK-to-document projection,
// did:peer numalgo expansion, chain-namespaced key derivation — are out of
// scope per SPEC_FULL.md §5 item 4). Each still round-trips through the
// cache/coalescing/wire pipeline exactly like the other methods.

func ResolveEthr(ctx context.Context, did string) (Document, error) {
	return syntheticDocument(did, "did:ethr:")
}

func ResolveJWK(ctx context.Context, did string) (Document, error) {
	return syntheticDocument(did, "did:jwk:")
}

func ResolvePeer(ctx context.Context, did string) (Document, error) {
	return syntheticDocument(did, "did:peer:")
}

func ResolvePKH(ctx context.Context, did string) (Document, error) {
	return syntheticDocument(did, "did:pkh:")
}

func syntheticDocument(did, prefix string) (Document, error) {
	idPart := strings.TrimPrefix(did, prefix)
	if idPart == "" || idPart == did {
		return Document{}, fmt.Errorf("%s: missing identifier in %q", prefix, did)
	}

	doc := map[string]any{
		"id": did,
		"verificationMethod": []map[string]any{
			{
				"id":         did + "#primary",
				"type":       "Multikey",
				"controller": did,
			},
		},
		"authentication": []string{did + "#primary"},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: did, Raw: raw}, nil
}
