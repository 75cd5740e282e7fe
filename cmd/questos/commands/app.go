// ABOUTME: Per-invocation wiring of configuration, logging and the plan store
// ABOUTME: Every data command opens the store through openApp and closes it when done
package commands

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harper/questos/internal/config"
	"github.com/harper/questos/internal/logging"
	"github.com/harper/questos/internal/models"
	"github.com/harper/questos/internal/storage"
	"github.com/harper/questos/internal/storage/sqlite"
)

// app bundles what a command needs to talk to the plan store
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *sqlite.Storage
}

// loadConfig reads .env and the environment, then applies the --db override
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

// newLogger builds the stderr logger honoring --verbose and --quiet
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(logging.Verbosity(cfg.LogLevel, verbose, quiet), cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return logger, nil
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	return &app{cfg: cfg, logger: logger, store: store}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing storage", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// questDay resolves an optional --date flag to a calendar day
func (a *app) questDay(ctx context.Context, date string) (string, error) {
	if date != "" {
		if !isISODate(date) {
			return "", fmt.Errorf("--date must be YYYY-MM-DD, got %q", date)
		}
		return date, nil
	}
	settings, err := a.store.GetAppSettings(ctx)
	if err != nil {
		return "", fmt.Errorf("getting settings: %w", err)
	}
	return models.QuestDay(now(), settings.RolloverHour), nil
}

// withApp opens the store for the duration of fn
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
