package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultToolServerURL is the MCP server the client connects to when none is configured.
	DefaultToolServerURL = "http://localhost:3000/sse"
	// DefaultMaxToolRounds bounds follow-up model requests per query.
	DefaultMaxToolRounds = 10
	// DefaultLogTruncateLimit is the number of characters of a tool result kept in logs.
	DefaultLogTruncateLimit = 1000
)

// Environment variable names read by FromEnv.
const (
	EnvEndpoint      = "AZURE_OPENAI_ENDPOINT"
	EnvAPIKey        = "AZURE_OPENAI_API_KEY"
	EnvDeployment    = "AZURE_OPENAI_DEPLOYMENT"
	EnvModel         = "AZURE_OPENAI_MODEL_NAME"
	EnvAPIVersion    = "AZURE_OPENAI_API_VERSION"
	EnvToolServerURL = "MCP_SERVER_URL"
	EnvInstructions  = "MCP_CLIENT_INSTRUCTIONS"
	EnvVerbose       = "MCP_CLIENT_VERBOSE"
	EnvLogLevel      = "MCP_CLIENT_LOG_LEVEL"
	EnvConfigFile    = "MCP_CLIENT_CONFIG"
)

// Config holds all runtime configuration for the client.
type Config struct {
	ToolServerURL string `yaml:"tool_server_url"`

	Endpoint     string `yaml:"endpoint"`
	APIKey       string `yaml:"api_key"`
	Deployment   string `yaml:"deployment"`
	Model        string `yaml:"model"`
	APIVersion   string `yaml:"api_version"`
	Instructions string `yaml:"instructions"`

	MaxToolRounds    int    `yaml:"max_tool_rounds"`
	LogTruncateLimit int    `yaml:"log_truncate_limit"`
	Verbose          bool   `yaml:"verbose"`
	LogLevel         string `yaml:"log_level"`
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		ToolServerURL:    DefaultToolServerURL,
		MaxToolRounds:    DefaultMaxToolRounds,
		LogTruncateLimit: DefaultLogTruncateLimit,
	}
}

// FromEnv overlays environment values onto cfg. Unset variables leave the
// field untouched; nothing is validated here, bad values surface later as API errors.
func FromEnv(cfg Config, getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&cfg.Endpoint, EnvEndpoint)
	set(&cfg.APIKey, EnvAPIKey)
	set(&cfg.Deployment, EnvDeployment)
	set(&cfg.Model, EnvModel)
	set(&cfg.APIVersion, EnvAPIVersion)
	set(&cfg.ToolServerURL, EnvToolServerURL)
	set(&cfg.Instructions, EnvInstructions)
	set(&cfg.LogLevel, EnvLogLevel)

	switch strings.ToLower(strings.TrimSpace(getenv(EnvVerbose))) {
	case "1", "true", "yes", "on":
		cfg.Verbose = true
	}
	return cfg
}

// LoadFile overlays the YAML document at path onto cfg.
func LoadFile(cfg Config, path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	out := cfg
	if err := yaml.Unmarshal(content, &out); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return out, nil
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.ToolServerURL = strings.TrimSpace(cfg.ToolServerURL)
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Deployment = strings.TrimSpace(cfg.Deployment)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.APIVersion = strings.TrimSpace(cfg.APIVersion)
	cfg.Instructions = strings.TrimSpace(cfg.Instructions)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if cfg.ToolServerURL == "" {
		cfg.ToolServerURL = DefaultToolServerURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}
	if cfg.LogLevel == "debug" {
		cfg.Verbose = true
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = DefaultMaxToolRounds
	}
	if cfg.LogTruncateLimit <= 0 {
		cfg.LogTruncateLimit = DefaultLogTruncateLimit
	}
	return cfg
}

// ModelName is the identifier sent with each model request.
func (c Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return c.Deployment
}

// Redacted returns a copy that is safe to log.
func (c Config) Redacted() Config {
	if c.APIKey == "" {
		return c
	}
	if len(c.APIKey) <= 8 {
		c.APIKey = "****"
		return c
	}
	c.APIKey = c.APIKey[:4] + "****"
	return c
}
