// ABOUTME: Standalone entry point for the QuestOS MCP server with stdio transport
// ABOUTME: Same tools as "questos mcp", for clients that launch a dedicated binary
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/harper/questos/internal/config"
	"github.com/harper/questos/internal/core"
	"github.com/harper/questos/internal/llm"
	"github.com/harper/questos/internal/logging"
	"github.com/harper/questos/internal/mcp"
	"github.com/harper/questos/internal/storage"
)

// Version information (set by goreleaser)
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	opts := &mcp.Options{Logger: logger.Named("mcp"), ErrorLimit: cfg.ErrorLimit}
	if cfg.HasOpenAI() {
		client, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
			APIKey:      cfg.OpenAIKey,
			ChatModel:   cfg.ChatModel,
			Timeout:     cfg.Timeout,
			MaxRetries:  cfg.MaxRetries,
			RetryDelay:  cfg.RetryDelay,
			Temperature: 0.4,
		})
		if err != nil {
			logger.Warn("plan drafting disabled", zap.Error(err))
		} else {
			client.SetLogger(logger.Named("llm"))
			opts.Drafter = core.NewDrafter(client, logger.Named("drafter"))
		}
	} else {
		logger.Warn("OPENAI_API_KEY not set, draft_plan tool disabled")
	}

	server := mcp.NewServer(mcp.NewHandlers(store, opts), version)

	logger.Info("QuestOS MCP server starting on stdio", zap.String("db", cfg.DBPath))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
