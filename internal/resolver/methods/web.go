package methods

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// webHTTPClient is shared across calls; did:web resolution is infrequent
// and latency-bound, so there is no need for the connection-pool tuning the
// domain's websocket transport gets.
var webHTTPClient = &http.Client{Timeout: 10 * time.Second}

// ResolveWeb resolves a did:web identifier by fetching
// https://<domain>[:<port>]/[<path>/].../did.json, per the did:web method
// spec's domain/path decoding rules (colons in the identifier after the
// domain become '/' in the URL path, and %3A decodes back to ':').
func ResolveWeb(ctx context.Context, did string) (Document, error) {
	idPart := strings.TrimPrefix(did, "did:web:")
	if idPart == "" || idPart == did {
		return Document{}, fmt.Errorf("did:web: missing identifier in %q", did)
	}

	url, err := webDocumentURL(idPart)
	if err != nil {
		return Document{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Document{}, fmt.Errorf("did:web: build request: %w", err)
	}
	resp, err := webHTTPClient.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("did:web: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("did:web: %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Document{}, fmt.Errorf("did:web: read body: %w", err)
	}

	return Document{ID: did, Raw: body}, nil
}

// webDocumentURL turns a did:web method-specific-id into the https URL it
// resolves to, e.g. "example.com%3A8443:users:alice" ->
// "https://example.com:8443/users/alice/did.json".
func webDocumentURL(idPart string) (string, error) {
	segments := strings.Split(idPart, ":")
	for i, seg := range segments {
		segments[i] = strings.ReplaceAll(seg, "%3A", ":")
	}
	if segments[0] == "" {
		return "", fmt.Errorf("did:web: empty domain segment")
	}

	host := segments[0]
	path := segments[1:]
	if len(path) == 0 {
		return fmt.Sprintf("https://%s/.well-known/did.json", host), nil
	}
	return fmt.Sprintf("https://%s/%s/did.json", host, strings.Join(path, "/")), nil
}
