// ABOUTME: MCP command starts the Model Context Protocol server
// ABOUTME: Lets LLM agents validate, import and work the plan over stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harper/questos/internal/core"
	"github.com/harper/questos/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs QuestOS as an MCP (Model Context Protocol) server, so agents like
Claude can validate and import plans, read today's quests and mark
them done over stdio. Logs go to stderr.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  questos mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "questos": {
  #       "command": "questos",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	handlers := newMCPHandlers(a)
	server := mcp.NewServer(handlers, versionInfo.Version)

	if !quiet {
		a.logger.Info("QuestOS MCP server starting on stdio", zap.String("db", a.cfg.DBPath))
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			a.logger.Info("shutdown signal received")
		}
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}

// newMCPHandlers builds handlers, enabling draft_plan when an OpenAI key is configured
func newMCPHandlers(a *app) *mcp.Handlers {
	opts := &mcp.Options{
		Logger:     a.logger.Named("mcp"),
		ErrorLimit: a.cfg.ErrorLimit,
	}

	if a.cfg.HasOpenAI() {
		completer, err := newCompleter(a.cfg, a.logger)
		if err != nil {
			a.logger.Warn("plan drafting disabled", zap.Error(err))
		} else {
			opts.Drafter = core.NewDrafter(completer, a.logger.Named("drafter"))
		}
	}

	return mcp.NewHandlers(a.store, opts)
}
