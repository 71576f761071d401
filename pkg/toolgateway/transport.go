package toolgateway

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	sseSchemePrefix = "sse://"
	hintSSE         = "sse"
	hintStreamable  = "stream"
)

// buildTransport maps an endpoint string to an SDK transport.
//
//	sse://host/path          SSE over https
//	http(s)://host/path      SSE
//	http(s)+sse://host/path  SSE
//	http(s)+stream://host    streamable HTTP
func buildTransport(endpoint string, httpClient *http.Client) (mcpsdk.Transport, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is empty")
	}

	lowered := strings.ToLower(endpoint)
	if strings.HasPrefix(lowered, sseSchemePrefix) {
		target, err := normalizeHTTPURL("https://" + endpoint[len(sseSchemePrefix):])
		if err != nil {
			return nil, fmt.Errorf("invalid SSE endpoint: %w", err)
		}
		return &mcpsdk.SSEClientTransport{Endpoint: target, HTTPClient: httpClient}, nil
	}

	kind, target, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if kind == hintStreamable {
		return &mcpsdk.StreamableClientTransport{Endpoint: target, HTTPClient: httpClient}, nil
	}
	return &mcpsdk.SSEClientTransport{Endpoint: target, HTTPClient: httpClient}, nil
}

// parseEndpoint splits an optional "+hint" off the scheme and returns the
// transport kind together with the plain http(s) URL.
func parseEndpoint(endpoint string) (string, string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", "", fmt.Errorf("invalid endpoint: %w", err)
	}
	base, hint, hasHint := strings.Cut(strings.ToLower(u.Scheme), "+")
	kind := hintSSE
	if hasHint {
		switch hint {
		case "sse":
			kind = hintSSE
		case "stream", "streamable", "http":
			kind = hintStreamable
		default:
			return "", "", fmt.Errorf("unsupported transport hint %q", hint)
		}
	}
	normalized := *u
	normalized.Scheme = base
	target, err := normalizeHTTPURL(normalized.String())
	if err != nil {
		return "", "", fmt.Errorf("invalid %s endpoint: %w", kind, err)
	}
	return kind, target, nil
}

func normalizeHTTPURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	parsed.Scheme = scheme
	return parsed.String(), nil
}
