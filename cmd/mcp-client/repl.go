package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minhyannv/mcp-client-go/pkg/conversation"
	loggerpkg "github.com/minhyannv/mcp-client-go/pkg/logger"
)

const maxInputLine = 1024 * 1024

// queryProcessor is the part of agent.AgentLoop the shell drives.
type queryProcessor interface {
	ProcessQuery(ctx context.Context, query string) (string, error)
	Reset()
	Tools() []conversation.ToolDescriptor
}

// replOptions configures REPL behavior.
type replOptions struct {
	Verbose bool
	Logger  loggerpkg.Logger
}

// runREPL reads queries line by line until a quit sentinel or end of input.
func runREPL(ctx context.Context, app queryProcessor, opts replOptions, in io.Reader, out io.Writer) error {
	if app == nil {
		return fmt.Errorf("agent loop is required")
	}
	if in == nil {
		return fmt.Errorf("input reader is required")
	}
	if out == nil {
		out = io.Discard
	}

	loggerpkg.Debug(opts.Verbose, opts.Logger, "repl start", nil)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxInputLine)
	printWelcome(out)

	for {
		_, _ = fmt.Fprint(out, "\nQuery: ")
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		// Sentinels and commands match the whole line; anything else,
		// surrounding spaces included, is sent as typed.
		if isQuit(line) {
			_, _ = fmt.Fprintln(out, "Goodbye!")
			break
		}
		if handleCommand(line, app, out) {
			continue
		}

		answer, err := app.ProcessQuery(ctx, line)
		if err != nil {
			_, _ = fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		_, _ = fmt.Fprintf(out, "\n=======================\n%s\n", answer)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func isQuit(input string) bool {
	switch strings.ToLower(input) {
	case "quit", `\q`, "/quit", "/exit", "/q":
		return true
	}
	return false
}

// handleCommand runs a shell command and reports whether input was one.
// Unrecognized input, slash-prefixed or not, goes to the model verbatim.
func handleCommand(input string, app queryProcessor, out io.Writer) bool {
	switch strings.ToLower(input) {
	case "/help", "/h":
		printHelp(out)
		return true
	case "/clear", "/c":
		app.Reset()
		_, _ = fmt.Fprintln(out, "Conversation history cleared.")
		return true
	case "/tools", "/t":
		printTools(out, app.Tools())
		return true
	}
	return false
}

func printWelcome(out io.Writer) {
	_, _ = fmt.Fprintln(out, "MCP Client Started!")
	_, _ = fmt.Fprintln(out, "Type your queries or 'quit' to exit. Type /help for commands.")
}

func printHelp(out io.Writer) {
	_, _ = fmt.Fprintln(out, "Commands:")
	_, _ = fmt.Fprintln(out, "  /help  - Show this help message")
	_, _ = fmt.Fprintln(out, "  /tools - List the tools offered by the server")
	_, _ = fmt.Fprintln(out, "  /clear - Clear conversation history")
	_, _ = fmt.Fprintln(out, "  quit   - Exit the program (also \\q, /quit, /exit)")
}

func printTools(out io.Writer, tools []conversation.ToolDescriptor) {
	if len(tools) == 0 {
		_, _ = fmt.Fprintln(out, "No tools available.")
		return
	}
	_, _ = fmt.Fprintln(out, "Tools:")
	for _, tool := range tools {
		if tool.Description == "" {
			_, _ = fmt.Fprintf(out, "  %s\n", tool.Name)
			continue
		}
		_, _ = fmt.Fprintf(out, "  %s - %s\n", tool.Name, tool.Description)
	}
}
