package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/minhyannv/mcp-client-go/pkg/conversation"
	loggerpkg "github.com/minhyannv/mcp-client-go/pkg/logger"
)

// ModelGateway completes a transcript against the language model.
type ModelGateway interface {
	Complete(ctx context.Context, transcript []conversation.Item, tools []conversation.ToolDescriptor) (conversation.Response, error)
}

// ToolGateway lists and invokes the tools of the tool server.
type ToolGateway interface {
	ListTools(ctx context.Context) ([]conversation.ToolDescriptor, error)
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
}

// AgentLoop owns the conversation transcript and drives the
// request, tool call, follow-up request cycle for each query.
type AgentLoop struct {
	models  ModelGateway
	tools   ToolGateway
	catalog []conversation.ToolDescriptor

	transcript conversation.Transcript
	sessionID  string

	maxToolRounds    int
	logTruncateLimit int
	logger           loggerpkg.Logger
	verbose          bool
}

// New builds an AgentLoop and fetches the tool catalog once.
func New(ctx context.Context, models ModelGateway, tools ToolGateway, opts ...AgentOption) (*AgentLoop, error) {
	if models == nil {
		return nil, errors.New("model gateway is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	deps := defaultDeps()
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}

	catalog, err := tools.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	sessionID := deps.sessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	loggerpkg.Debug(deps.verbose, deps.logger, "agent_loop init", map[string]any{
		"session_id":      sessionID,
		"tools":           len(catalog),
		"max_tool_rounds": deps.maxToolRounds,
	})

	return &AgentLoop{
		models:           models,
		tools:            tools,
		catalog:          catalog,
		sessionID:        sessionID,
		maxToolRounds:    deps.maxToolRounds,
		logTruncateLimit: deps.logTruncateLimit,
		logger:           deps.logger,
		verbose:          deps.verbose,
	}, nil
}

// ProcessQuery appends query to the transcript, runs the model and any
// requested tools, and returns the accumulated answer text.
//
// Items appended before a failure stay in the transcript. A failed tool call
// still gets a function_call_output carrying the error, so no call is left
// without its output.
func (a *AgentLoop) ProcessQuery(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", errors.New("query is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	a.appendItem(conversation.UserMessage(query))
	resp, err := a.request(ctx)
	if err != nil {
		return "", err
	}

	var answer []string
	for rounds := 0; ; rounds++ {
		if len(resp.FunctionCalls()) > 0 && rounds >= a.maxToolRounds {
			return "", fmt.Errorf("%w (%d)", ErrMaxToolRounds, a.maxToolRounds)
		}
		parts, calls, err := a.interpret(ctx, resp)
		answer = append(answer, parts...)
		if err != nil {
			return "", err
		}
		if calls == 0 {
			break
		}
		a.debugf("[verbose] round %d: resolved %d tool call(s), requesting follow-up", rounds+1, calls)
		if resp, err = a.request(ctx); err != nil {
			return "", err
		}
	}
	return strings.Join(answer, "\n"), nil
}

// interpret walks the output items in order. Messages contribute their text
// to the answer; function calls are executed and their outputs appended.
func (a *AgentLoop) interpret(ctx context.Context, resp conversation.Response) ([]string, int, error) {
	var parts []string
	calls := 0
	for _, item := range resp.Output {
		switch item.Type {
		case conversation.ItemMessage:
			for _, part := range item.Content {
				parts = append(parts, part.String())
			}
			a.appendItem(conversation.AssistantMessage(item.Text()))
		case conversation.ItemFunctionCall:
			marker, err := a.callTool(ctx, item)
			if marker != "" {
				parts = append(parts, marker)
			}
			if err != nil {
				return parts, calls, err
			}
			calls++
		}
	}
	return parts, calls, nil
}

// callTool appends the call, runs it, and appends the matching output.
// It returns the "[Calling tool ...]" marker once the arguments parsed.
func (a *AgentLoop) callTool(ctx context.Context, call conversation.OutputItem) (string, error) {
	a.appendItem(conversation.FunctionCall(call.ID, call.CallID, call.Name, call.Arguments))

	args, err := parseArguments(call.Arguments)
	if err != nil {
		parseErr := &ArgumentParseError{Tool: call.Name, CallID: call.CallID, Arguments: call.Arguments, Err: err}
		a.appendFailure(call.CallID, parseErr)
		return "", parseErr
	}
	marker := fmt.Sprintf("[Calling tool %s with args %s]", call.Name, displayArguments(call.Arguments))
	loggerpkg.Info(a.logger, "call tool", map[string]any{
		"session_id": a.sessionID,
		"name":       call.Name,
		"arguments":  args,
	})

	output, err := a.tools.CallTool(ctx, call.Name, args)
	if err != nil {
		a.appendFailure(call.CallID, err)
		return marker, err
	}
	a.appendItem(conversation.FunctionCallOutput(call.CallID, output))
	return marker, nil
}

func (a *AgentLoop) request(ctx context.Context) (conversation.Response, error) {
	resp, err := a.models.Complete(ctx, a.transcript.Items(), a.catalog)
	if err != nil {
		return conversation.Response{}, err
	}
	loggerpkg.Debug(a.verbose, a.logger, "model response", resp)
	return resp, nil
}

func (a *AgentLoop) appendItem(item conversation.Item) {
	a.transcript.Append(item)
	loggerpkg.Debug(a.verbose, a.logger, "append item", conversation.ForLog(item, a.logTruncateLimit))
}

func (a *AgentLoop) appendFailure(callID string, cause error) {
	payload, err := json.Marshal(struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}{OK: false, Error: cause.Error()})
	if err != nil {
		payload = []byte(`{"ok":false}`)
	}
	a.appendItem(conversation.FunctionCallOutput(callID, string(payload)))
}

// parseArguments decodes the model's argument text into a JSON object.
// Empty text and null mean no arguments.
func parseArguments(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(text), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// displayArguments renders the model's argument text compacted, keeping its
// key order and characters as sent.
func displayArguments(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return text
	}
	return buf.String()
}

// Transcript returns a copy of the conversation so far.
func (a *AgentLoop) Transcript() []conversation.Item {
	return a.transcript.Items()
}

// Tools returns the tool catalog fetched at construction.
func (a *AgentLoop) Tools() []conversation.ToolDescriptor {
	out := make([]conversation.ToolDescriptor, len(a.catalog))
	copy(out, a.catalog)
	return out
}

// SessionID identifies this conversation in logs.
func (a *AgentLoop) SessionID() string {
	return a.sessionID
}

// Reset clears the transcript. The tool catalog is kept.
func (a *AgentLoop) Reset() {
	a.transcript.Reset()
	loggerpkg.Debug(a.verbose, a.logger, "transcript reset", map[string]any{"session_id": a.sessionID})
}

func (a *AgentLoop) debugf(format string, args ...any) {
	loggerpkg.Debugf(a.verbose, a.logger, format, args...)
}
