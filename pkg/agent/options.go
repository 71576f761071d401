package agent

import (
	configpkg "github.com/minhyannv/mcp-client-go/pkg/config"
	loggerpkg "github.com/minhyannv/mcp-client-go/pkg/logger"
)

// AgentOption configures optional runtime dependencies for AgentLoop.
type AgentOption func(*agentDeps)

type agentDeps struct {
	logger           loggerpkg.Logger
	verbose          bool
	maxToolRounds    int
	logTruncateLimit int
	sessionID        string
}

func defaultDeps() agentDeps {
	return agentDeps{
		logger:           loggerpkg.NopLogger{},
		maxToolRounds:    configpkg.DefaultMaxToolRounds,
		logTruncateLimit: configpkg.DefaultLogTruncateLimit,
	}
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) AgentOption {
	return func(d *agentDeps) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithConfig applies the loop settings from cfg.
func WithConfig(cfg configpkg.Config) AgentOption {
	return func(d *agentDeps) {
		cfg = configpkg.Normalize(cfg)
		d.verbose = cfg.Verbose
		d.maxToolRounds = cfg.MaxToolRounds
		d.logTruncateLimit = cfg.LogTruncateLimit
	}
}

// WithMaxToolRounds bounds how many times one query may go back to the model after tool calls.
func WithMaxToolRounds(n int) AgentOption {
	return func(d *agentDeps) {
		if n > 0 {
			d.maxToolRounds = n
		}
	}
}

// WithVerbose enables debug logging of transcript items and model responses.
func WithVerbose(enabled bool) AgentOption {
	return func(d *agentDeps) {
		d.verbose = enabled
	}
}

// WithLogTruncateLimit caps how many characters of a tool output are logged.
func WithLogTruncateLimit(n int) AgentOption {
	return func(d *agentDeps) {
		if n > 0 {
			d.logTruncateLimit = n
		}
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) AgentOption {
	return func(d *agentDeps) {
		d.sessionID = id
	}
}
