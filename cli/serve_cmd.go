package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parley-hq/parley/core"
	"github.com/parley-hq/parley/provider"
	"github.com/parley-hq/parley/server"
)

// runServe starts the gateway HTTP server and blocks until SIGINT/SIGTERM.
func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)

	var (
		addr       string
		configPath string
		model      string
		baseURL    string
	)

	fs.StringVar(&addr, "addr", "", "listen address (overrides config)")
	fs.StringVar(&configPath, "config", ".parley.yaml", "path to config file")
	fs.StringVar(&model, "model", "", "chat model name (overrides config)")
	fs.StringVar(&baseURL, "base-url", "", "custom OpenAI-compatible API base URL")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := core.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if model != "" {
		cfg.Provider.Model = model
	}
	if baseURL != "" {
		cfg.Provider.BaseURL = baseURL
	}

	apiKey := os.Getenv(cfg.Provider.APIKeyEnv)
	if apiKey == "" && cfg.Provider.BaseURL == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required (or set --base-url for a local endpoint)\n", cfg.Provider.APIKeyEnv)
		return 2
	}

	p, err := buildProvider(cfg, apiKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store := core.NewStore(cfg.Chat.SystemPrompt)
	srv := server.New(store, p, cfg, version, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	return 0
}

// buildProvider assembles the OpenAI provider from config values.
func buildProvider(cfg *core.Config, apiKey string) (*provider.OpenAI, error) {
	opts := []provider.OpenAIOption{
		provider.WithModel(cfg.Provider.Model),
		provider.WithMaxRetries(cfg.Provider.MaxRetries),
	}
	if apiKey != "" {
		opts = append(opts, provider.WithAPIKey(apiKey))
	}
	if cfg.Provider.BaseURL != "" {
		opts = append(opts, provider.WithBaseURL(cfg.Provider.BaseURL))
	}
	if cfg.Provider.Timeout != "" {
		d, err := time.ParseDuration(cfg.Provider.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid provider timeout %q: %w", cfg.Provider.Timeout, err)
		}
		opts = append(opts, provider.WithTimeout(d))
	}
	return provider.NewOpenAI(opts...), nil
}
