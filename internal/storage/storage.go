// ABOUTME: Opens the plan store described by the loaded configuration
// ABOUTME: Shared by the CLI commands and the MCP server
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harper/questos/internal/config"
	"github.com/harper/questos/internal/storage/sqlite"
)

// Open opens (creating and migrating if needed) the SQLite plan store at cfg.DBPath
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sqlite.Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := sqlite.NewStorageWithPath(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan store at %s: %w", cfg.DBPath, err)
	}
	store.SetLogger(logger.Named("storage"))

	logger.Debug("plan store opened", zap.String("path", cfg.DBPath))
	return store, nil
}
