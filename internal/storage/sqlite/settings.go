// ABOUTME: App settings read and write on top of the key/value app_settings table
// ABOUTME: Missing or malformed values fall back to the defaults
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harper/questos/internal/models"
)

// Setting keys in app_settings
const (
	SettingStrictness           = "strictness"
	SettingRolloverHour         = "rollover_hour"
	SettingNotificationsEnabled = "notifications_enabled"
)

// GetAppSettings loads all settings concurrently and applies defaults
func (s *Storage) GetAppSettings(ctx context.Context) (models.AppSettings, error) {
	settings := models.DefaultSettings
	store := NewSettingsStore(s.db.conn)

	var strictness, rollover, notifications string
	g, gctx := errgroup.WithContext(ctx)
	for key, dst := range map[string]*string{
		SettingStrictness:           &strictness,
		SettingRolloverHour:         &rollover,
		SettingNotificationsEnabled: &notifications,
	} {
		g.Go(func() error {
			value, _, err := store.Get(gctx, key)
			if err != nil {
				return fmt.Errorf("failed to read setting %s: %w", key, err)
			}
			*dst = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return settings, err
	}

	if v, err := models.ParseStrictness(strictness); err == nil {
		settings.Strictness = v
	}
	if h, err := strconv.Atoi(rollover); err == nil {
		settings.RolloverHour = models.ClampHour(h)
	}
	settings.NotificationsEnabled = notifications == "1"

	return settings, nil
}

// SetStrictness stores the strictness level
func (s *Storage) SetStrictness(ctx context.Context, strictness string) error {
	v, err := models.ParseStrictness(strictness)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.setSetting(ctx, SettingStrictness, string(v))
}

// SetRolloverHour stores the rollover hour clamped to 0..23
func (s *Storage) SetRolloverHour(ctx context.Context, hour int) error {
	return s.setSetting(ctx, SettingRolloverHour, strconv.Itoa(models.ClampHour(hour)))
}

// SetNotificationsEnabled stores the notification toggle as "1" or "0"
func (s *Storage) SetNotificationsEnabled(ctx context.Context, enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}
	return s.setSetting(ctx, SettingNotificationsEnabled, value)
}

func (s *Storage) setSetting(ctx context.Context, key, value string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.timestamp()
		if err := NewSettingsStore(tx).Set(ctx, key, value, formatTime(now)); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
		event, err := s.newEvent(models.EventSettingsUpdated, "app_settings", key, map[string]string{
			"key":   key,
			"value": value,
		})
		if err != nil {
			return err
		}
		return NewEventStore(tx).Insert(ctx, event)
	})
	if err != nil {
		return err
	}
	s.logger.Debug("setting updated", zap.String("key", key), zap.String("value", value))
	return nil
}
