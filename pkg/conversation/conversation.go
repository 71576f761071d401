// Package conversation defines the transcript, tool catalog, and model
// response types shared by the gateways and the agent loop.
package conversation

import (
	"strings"
	"unicode/utf8"
)

// Role is the role of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ItemType discriminates transcript items.
type ItemType string

const (
	ItemMessage            ItemType = "message"
	ItemFunctionCall       ItemType = "function_call"
	ItemFunctionCallOutput ItemType = "function_call_output"
)

// Item is one transcript entry. Which fields are set depends on Type.
type Item struct {
	Type ItemType `json:"type"`

	// message
	Role    Role   `json:"role,omitempty"`
	Content string `json:"content,omitempty"`

	// function_call and function_call_output
	ID        string `json:"id,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Output    string `json:"output,omitempty"`
}

// UserMessage builds a user message item.
func UserMessage(text string) Item {
	return Item{Type: ItemMessage, Role: RoleUser, Content: text}
}

// AssistantMessage builds an assistant message item.
func AssistantMessage(text string) Item {
	return Item{Type: ItemMessage, Role: RoleAssistant, Content: text}
}

// FunctionCall builds a function_call item from the model's request.
func FunctionCall(id, callID, name, arguments string) Item {
	return Item{Type: ItemFunctionCall, ID: id, CallID: callID, Name: name, Arguments: arguments}
}

// FunctionCallOutput builds the item reporting a tool result for callID.
func FunctionCallOutput(callID, output string) Item {
	return Item{Type: ItemFunctionCallOutput, CallID: callID, Output: output}
}

// Transcript is an append-only list of items.
type Transcript struct {
	items []Item
}

// Append adds item at the end.
func (t *Transcript) Append(item Item) {
	t.items = append(t.items, item)
}

// Items returns a copy of the transcript.
func (t *Transcript) Items() []Item {
	out := make([]Item, len(t.items))
	copy(out, t.items)
	return out
}

func (t *Transcript) Len() int {
	return len(t.items)
}

// Reset drops every item.
func (t *Transcript) Reset() {
	t.items = nil
}

// DanglingCalls returns the call ids of function calls that have no output yet.
func (t *Transcript) DanglingCalls() []string {
	answered := make(map[string]bool)
	for _, item := range t.items {
		if item.Type == ItemFunctionCallOutput {
			answered[item.CallID] = true
		}
	}
	var out []string
	for _, item := range t.items {
		if item.Type == ItemFunctionCall && !answered[item.CallID] {
			out = append(out, item.CallID)
		}
	}
	return out
}

// ToolDescriptor describes one tool offered by the tool server.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Schema      map[string]any `json:"parameters,omitempty"`
}

// ContentPart is one piece of an output message: either text or a refusal.
type ContentPart struct {
	Text    string `json:"text,omitempty"`
	Refusal string `json:"refusal,omitempty"`
}

// String returns the text, or the refusal when the part carries no text.
func (p ContentPart) String() string {
	if p.Refusal != "" && p.Text == "" {
		return p.Refusal
	}
	return p.Text
}

// OutputItem is a single entry of a model response.
type OutputItem struct {
	Type ItemType `json:"type"`

	// message
	Content []ContentPart `json:"content,omitempty"`

	// function_call
	ID        string `json:"id,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// Text joins the message parts of a message output.
func (o OutputItem) Text() string {
	parts := make([]string, 0, len(o.Content))
	for _, part := range o.Content {
		parts = append(parts, part.String())
	}
	return strings.Join(parts, "")
}

// Usage reports token accounting for one response.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// Response is the result of one model request.
type Response struct {
	ID     string       `json:"id"`
	Model  string       `json:"model,omitempty"`
	Status string       `json:"status,omitempty"`
	Error  string       `json:"error,omitempty"`
	Output []OutputItem `json:"output"`
	Usage  Usage        `json:"usage"`
}

// Text concatenates the text parts of every message output, like output_text.
func (r Response) Text() string {
	var b strings.Builder
	for _, item := range r.Output {
		if item.Type != ItemMessage {
			continue
		}
		for _, part := range item.Content {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// FunctionCalls returns the function call outputs in order.
func (r Response) FunctionCalls() []OutputItem {
	var calls []OutputItem
	for _, item := range r.Output {
		if item.Type == ItemFunctionCall {
			calls = append(calls, item)
		}
	}
	return calls
}

// TruncationMarker is appended to tool output shortened for logging.
const TruncationMarker = " ... TOOL RESPONSE TRUNCATED"

// TruncateForLog keeps the first limit characters of s. A non-positive limit disables truncation.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + TruncationMarker
}

// ForLog returns a copy of item whose output is truncated to limit characters.
func ForLog(item Item, limit int) Item {
	if item.Type == ItemFunctionCallOutput {
		item.Output = TruncateForLog(item.Output, limit)
	}
	return item
}
