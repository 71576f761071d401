// Package toolgateway connects to an MCP tool server, lists its tools and
// relays tool calls to it.
package toolgateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/minhyannv/mcp-client-go/pkg/conversation"
	loggerpkg "github.com/minhyannv/mcp-client-go/pkg/logger"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// transportBuilder is overridden in tests to stub the transport factory.
var transportBuilder = buildTransport

const (
	clientName    = "mcp-client-cli"
	clientVersion = "1.0.0"
)

// Client is a connected tool gateway session.
type Client struct {
	endpoint string
	session  *mcpsdk.ClientSession
	logger   loggerpkg.Logger

	mu      sync.Mutex
	catalog []conversation.ToolDescriptor

	closeOnce sync.Once
	closeErr  error
}

// Option configures Connect.
type Option func(*connectOptions)

type connectOptions struct {
	logger     loggerpkg.Logger
	httpClient *http.Client
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(o *connectOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithHTTPClient sets the HTTP client used by network transports.
func WithHTTPClient(c *http.Client) Option {
	return func(o *connectOptions) {
		o.httpClient = c
	}
}

// Connect opens a session with the tool server at endpoint and performs the
// MCP initialize handshake. Failures are returned as *ConnectionError.
func Connect(ctx context.Context, endpoint string, opts ...Option) (*Client, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := connectOptions{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	transport, err := transportBuilder(endpoint, o.httpClient)
	if err != nil {
		return nil, &ConnectionError{Endpoint: endpoint, Err: err}
	}
	session, err := mcpsdk.NewClient(&mcpsdk.Implementation{Name: clientName, Version: clientVersion}, nil).Connect(ctx, transport, nil)
	if err != nil {
		return nil, &ConnectionError{Endpoint: endpoint, Err: err}
	}
	loggerpkg.Info(o.logger, "connected to tool server", map[string]any{
		"endpoint": endpoint,
	})

	return &Client{
		endpoint: endpoint,
		session:  session,
		logger:   o.logger,
	}, nil
}

// Endpoint returns the address the client is connected to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// ListTools returns the tool catalog. The first successful result is cached,
// so repeated calls on one connection return the same catalog.
func (c *Client) ListTools(ctx context.Context) ([]conversation.ToolDescriptor, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.catalog != nil {
		return cloneCatalog(c.catalog), nil
	}
	if c.session == nil {
		return nil, ErrClosed
	}

	catalog := []conversation.ToolDescriptor{}
	for tool, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}
		descriptor, err := toToolDescriptor(tool)
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, descriptor)
	}
	c.catalog = catalog
	return cloneCatalog(catalog), nil
}

// CallTool invokes the named tool and returns the first text element of its
// result. A result flagged as an error still returns its text; only transport
// failures and results without text are reported as *InvocationError.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.session == nil {
		return "", &InvocationError{Tool: name, Err: ErrClosed}
	}
	if args == nil {
		args = map[string]any{}
	}

	result, err := c.session.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", &InvocationError{Tool: name, Err: err}
	}
	text, ok := firstText(result)
	if !ok {
		if result != nil && result.IsError {
			return "", &InvocationError{Tool: name, Err: errors.New("tool reported an error without text")}
		}
		return "", &InvocationError{Tool: name, Err: ErrNoTextContent}
	}
	if result.IsError {
		// In-band tool errors go back to the model like any other output.
		loggerpkg.Warn(c.logger, "tool reported an error", map[string]any{
			"tool":  name,
			"error": text,
		})
	}
	return text, nil
}

// Close releases the session. It is safe to call more than once.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		if c.session == nil {
			return
		}
		c.closeErr = c.session.Close()
		c.session = nil
		c.logger.Debug("tool server session closed", map[string]any{
			"endpoint": c.endpoint,
		})
	})
	return c.closeErr
}

func firstText(result *mcpsdk.CallToolResult) (string, bool) {
	if result == nil {
		return "", false
	}
	for _, content := range result.Content {
		if text, ok := content.(*mcpsdk.TextContent); ok && text != nil {
			return text.Text, true
		}
	}
	return "", false
}

// toToolDescriptor converts the SDK tool, normalising its input schema to a JSON object map.
func toToolDescriptor(tool *mcpsdk.Tool) (conversation.ToolDescriptor, error) {
	if tool == nil {
		return conversation.ToolDescriptor{}, errors.New("list tools: nil tool in catalog")
	}
	descriptor := conversation.ToolDescriptor{
		Name:        tool.Name,
		Description: strings.TrimSpace(tool.Description),
	}
	if tool.InputSchema == nil {
		return descriptor, nil
	}

	if schema, ok := tool.InputSchema.(map[string]any); ok {
		descriptor.Schema = schema
		return descriptor, nil
	}
	raw, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return conversation.ToolDescriptor{}, fmt.Errorf("tool %s: encode input schema: %w", tool.Name, err)
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return conversation.ToolDescriptor{}, fmt.Errorf("tool %s: decode input schema: %w", tool.Name, err)
	}
	descriptor.Schema = schema
	return descriptor, nil
}

func cloneCatalog(in []conversation.ToolDescriptor) []conversation.ToolDescriptor {
	out := make([]conversation.ToolDescriptor, len(in))
	copy(out, in)
	return out
}
