// Package modelgateway sends transcripts and tool schemas to the OpenAI
// Responses API (or an Azure OpenAI deployment) and converts the reply.
package modelgateway

import (
	"context"
	"errors"
	"strings"

	configpkg "github.com/minhyannv/mcp-client-go/pkg/config"
	"github.com/minhyannv/mcp-client-go/pkg/conversation"
	loggerpkg "github.com/minhyannv/mcp-client-go/pkg/logger"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const statusFailed = "failed"

// ErrEmptyTranscript is returned when Complete is called without any items.
var ErrEmptyTranscript = errors.New("transcript is empty")

// Client wraps the OpenAI client for non-streaming Responses calls.
type Client struct {
	client       openai.Client
	model        string
	instructions string
	logger       loggerpkg.Logger
	verbose      bool
}

// Option configures New.
type Option func(*clientOptions)

type clientOptions struct {
	logger     loggerpkg.Logger
	requestOps []option.RequestOption
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(o *clientOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRequestOptions appends SDK request options, e.g. a custom HTTP client.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(o *clientOptions) {
		o.requestOps = append(o.requestOps, opts...)
	}
}

// New builds a Client from cfg. An Azure client is used when cfg.APIVersion is set.
func New(cfg configpkg.Config, opts ...Option) *Client {
	cfg = configpkg.Normalize(cfg)
	o := clientOptions{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	requestOps := append(requestOptions(cfg), o.requestOps...)
	return &Client{
		client:       openai.NewClient(requestOps...),
		model:        cfg.ModelName(),
		instructions: cfg.Instructions,
		logger:       o.logger,
		verbose:      cfg.Verbose,
	}
}

func requestOptions(cfg configpkg.Config) []option.RequestOption {
	// SDK retries stay off; errors reach the caller unmodified.
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.APIVersion != "" {
		opts = append(opts,
			azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
		return opts
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return opts
}

// Model returns the model identifier sent with each request.
func (c *Client) Model() string {
	return c.model
}

// Complete submits the full transcript and tool catalog and returns the model's reply.
func (c *Client) Complete(
	ctx context.Context,
	transcript []conversation.Item,
	tools []conversation.ToolDescriptor,
) (conversation.Response, error) {
	if len(transcript) == 0 {
		return conversation.Response{}, &RequestError{Err: ErrEmptyTranscript}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	params, err := c.newParams(transcript, tools)
	if err != nil {
		return conversation.Response{}, &RequestError{Err: err}
	}
	loggerpkg.Debug(c.verbose, c.logger, "model request", map[string]any{
		"model": c.model,
		"items": len(transcript),
		"tools": len(tools),
	})

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return conversation.Response{}, &RequestError{Err: err}
	}
	out := fromResponse(resp)
	if out.Status == statusFailed && out.Error != "" {
		return out, &RequestError{ResponseID: out.ID, Err: errors.New(out.Error)}
	}
	return out, nil
}

func (c *Client) newParams(
	transcript []conversation.Item,
	tools []conversation.ToolDescriptor,
) (responses.ResponseNewParams, error) {
	input, err := toInputItems(transcript)
	if err != nil {
		return responses.ResponseNewParams{}, err
	}
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: input},
	}
	if len(tools) > 0 {
		params.Tools = toToolParams(tools)
	}
	if strings.TrimSpace(c.instructions) != "" {
		params.Instructions = openai.String(c.instructions)
	}
	return params, nil
}
