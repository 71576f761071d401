// Package main runs an interactive chat client that answers queries with a
// hosted language model and the tools of an MCP server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/minhyannv/mcp-client-go/pkg/agent"
	configpkg "github.com/minhyannv/mcp-client-go/pkg/config"
	loggerpkg "github.com/minhyannv/mcp-client-go/pkg/logger"
	"github.com/minhyannv/mcp-client-go/pkg/modelgateway"
	"github.com/minhyannv/mcp-client-go/pkg/toolgateway"
)

// main is the program entry point. The exit code is 0 on normal and on error exit.
func main() {
	run(context.Background(), os.Stdin, os.Stdout, os.Stderr)
	os.Exit(0)
}

func run(ctx context.Context, in io.Reader, out, errOut io.Writer) {
	cfg, cfgErr := loadConfig(os.Getenv)
	appLogger := newLogger(cfg, errOut)
	if cfgErr != nil {
		appLogger.Warn("config file ignored", map[string]any{"error": cfgErr.Error()})
	}
	appLogger.Info("configuration", cfg.Redacted())

	tools, err := toolgateway.Connect(ctx, cfg.ToolServerURL, toolgateway.WithLogger(appLogger))
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		return
	}
	defer func() {
		if err := tools.Close(); err != nil {
			appLogger.Error("close tool gateway", map[string]any{"error": err.Error()})
		}
	}()

	models := modelgateway.New(cfg, modelgateway.WithLogger(appLogger))
	app, err := agent.New(ctx, models, tools,
		agent.WithLogger(appLogger),
		agent.WithConfig(cfg),
	)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		return
	}
	appLogger.Info("connected to server with tools", map[string]any{
		"endpoint": tools.Endpoint(),
		"tools":    app.Tools(),
	})

	if err := runREPL(ctx, app, replOptions{
		Verbose: cfg.Verbose,
		Logger:  appLogger,
	}, in, out); err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
	}
}

// loadConfig reads .env, the optional YAML file, and the environment, in that order of precedence from lowest to highest.
func loadConfig(getenv func(string) string) (configpkg.Config, error) {
	_ = godotenv.Load()

	cfg := configpkg.DefaultConfig()
	cfg, fileErr := configpkg.LoadFile(cfg, getenv(configpkg.EnvConfigFile))
	cfg = configpkg.FromEnv(cfg, getenv)
	return configpkg.Normalize(cfg), fileErr
}

func newLogger(cfg configpkg.Config, w io.Writer) loggerpkg.Logger {
	opts := []loggerpkg.Option{loggerpkg.WithLevel(loggerpkg.ParseLevel(cfg.LogLevel))}
	if cfg.Verbose {
		opts = append(opts, loggerpkg.WithIndent())
	}
	return loggerpkg.NewWriterLogger(w, opts...)
}
