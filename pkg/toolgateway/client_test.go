package toolgateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// connectInMemory starts a test server on an in-memory transport and connects a client to it.
func connectInMemory(t *testing.T, callCounter *atomic.Int32) *Client {
	t.Helper()
	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "weather-server", Version: "test"}, nil)
	registerTestTools(server, callCounter)

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	ctx, cancel := context.WithCancel(context.Background())
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("server connect: %v", err)
	}

	originalBuilder := transportBuilder
	transportBuilder = func(string, *http.Client) (mcpsdk.Transport, error) {
		return clientTransport, nil
	}
	t.Cleanup(func() { transportBuilder = originalBuilder })

	client, err := Connect(context.Background(), "http://localhost:3000/sse")
	if err != nil {
		cancel()
		t.Fatalf("Connect: %v", err)
	}
	if client.Endpoint() != "http://localhost:3000/sse" {
		cancel()
		t.Fatalf("unexpected endpoint: %q", client.Endpoint())
	}
	t.Cleanup(func() {
		_ = client.Close()
		_ = serverSession.Close()
		cancel()
	})
	return client
}

func registerTestTools(server *mcpsdk.Server, callCounter *atomic.Int32) {
	server.AddTool(&mcpsdk.Tool{
		Name:        "get_weather",
		Description: "Get the current weather for a location",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"location": map[string]any{"type": "string"},
			},
			"required": []any{"location"},
		},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		if callCounter != nil {
			callCounter.Add(1)
		}
		var args struct {
			Location string `json:"location"`
		}
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return nil, err
		}
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: fmt.Sprintf("Sunny in %s, 21C", args.Location)},
				&mcpsdk.TextContent{Text: "second element is ignored"},
			},
		}, nil
	})
	server.AddTool(&mcpsdk.Tool{
		Name:        "broken",
		Description: "Always fails",
		InputSchema: map[string]any{"type": "object"},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return &mcpsdk.CallToolResult{
			IsError: true,
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "upstream unavailable"}},
		}, nil
	})
	server.AddTool(&mcpsdk.Tool{
		Name:        "crashed",
		Description: "Fails without a message",
		InputSchema: map[string]any{"type": "object"},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return &mcpsdk.CallToolResult{IsError: true, Content: []mcpsdk.Content{}}, nil
	})
	server.AddTool(&mcpsdk.Tool{
		Name:        "silent",
		Description: "Returns no text",
		InputSchema: map[string]any{"type": "object"},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return &mcpsdk.CallToolResult{Content: []mcpsdk.Content{}}, nil
	})
}

func TestListToolsReturnsCatalog(t *testing.T) {
	client := connectInMemory(t, nil)

	tools, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(tools) != 4 {
		t.Fatalf("expected 4 tools, got %d", len(tools))
	}
	byName := map[string]int{}
	for i, tool := range tools {
		byName[tool.Name] = i
	}
	idx, ok := byName["get_weather"]
	if !ok {
		t.Fatalf("get_weather missing from catalog: %+v", tools)
	}
	weather := tools[idx]
	if weather.Description != "Get the current weather for a location" {
		t.Fatalf("unexpected description: %q", weather.Description)
	}
	if weather.Schema["type"] != "object" {
		t.Fatalf("unexpected schema: %+v", weather.Schema)
	}
	props, ok := weather.Schema["properties"].(map[string]any)
	if !ok || props["location"] == nil {
		t.Fatalf("expected location property, got %+v", weather.Schema)
	}
}

func TestListToolsTwiceReturnsSameCatalog(t *testing.T) {
	client := connectInMemory(t, nil)

	first, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("first ListTools: %v", err)
	}
	second, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("second ListTools: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("catalog size changed: %d != %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name || first[i].Description != second[i].Description {
			t.Fatalf("catalog entry %d changed: %+v != %+v", i, first[i], second[i])
		}
	}
}

func TestCallToolReturnsFirstText(t *testing.T) {
	var calls atomic.Int32
	client := connectInMemory(t, &calls)

	text, err := client.CallTool(context.Background(), "get_weather", map[string]any{"location": "Paris"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if text != "Sunny in Paris, 21C" {
		t.Fatalf("unexpected text: %q", text)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one tool invocation, got %d", calls.Load())
	}
}

func TestCallToolErrorResultReturnsText(t *testing.T) {
	client := connectInMemory(t, nil)

	text, err := client.CallTool(context.Background(), "broken", nil)
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if text != "upstream unavailable" {
		t.Fatalf("expected error text to be returned as output, got %q", text)
	}
}

func TestCallToolErrorResultWithoutText(t *testing.T) {
	client := connectInMemory(t, nil)

	_, err := client.CallTool(context.Background(), "crashed", nil)
	var invErr *InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected *InvocationError, got %T (%v)", err, err)
	}
	if invErr.Tool != "crashed" {
		t.Fatalf("unexpected invocation error: %+v", invErr)
	}
}

func TestCallToolWithoutText(t *testing.T) {
	client := connectInMemory(t, nil)

	_, err := client.CallTool(context.Background(), "silent", map[string]any{})
	if !errors.Is(err, ErrNoTextContent) {
		t.Fatalf("expected ErrNoTextContent, got %v", err)
	}
}

func TestCallUnknownTool(t *testing.T) {
	client := connectInMemory(t, nil)

	_, err := client.CallTool(context.Background(), "missing", nil)
	var invErr *InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected *InvocationError, got %T (%v)", err, err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	client := connectInMemory(t, nil)

	if err := client.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := client.CallTool(context.Background(), "get_weather", nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}
	var nilClient *Client
	if err := nilClient.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}

func TestConnectBuildError(t *testing.T) {
	_, err := Connect(context.Background(), "ftp://example.com/tools")
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *ConnectionError, got %T (%v)", err, err)
	}
	if connErr.Endpoint != "ftp://example.com/tools" {
		t.Fatalf("unexpected endpoint: %q", connErr.Endpoint)
	}
}

func TestConnectPassesHTTPClientToTransport(t *testing.T) {
	custom := &http.Client{}
	var got *http.Client
	originalBuilder := transportBuilder
	transportBuilder = func(_ string, httpClient *http.Client) (mcpsdk.Transport, error) {
		got = httpClient
		return nil, errors.New("no transport in this test")
	}
	t.Cleanup(func() { transportBuilder = originalBuilder })

	_, err := Connect(context.Background(), "http://localhost:3000/sse", WithHTTPClient(custom))
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *ConnectionError, got %T (%v)", err, err)
	}
	if got != custom {
		t.Fatal("expected the configured HTTP client to reach the transport")
	}
}
