// ABOUTME: Tests for logger construction
// ABOUTME: Covers level parsing, formats and flag precedence
package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level  string
		format string
		want   zap.AtomicLevel
	}{
		{"debug", "console", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"INFO", "json", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"warn", "", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"error", "JSON", zap.NewAtomicLevelAt(zap.ErrorLevel)},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.True(t, logger.Core().Enabled(tt.want.Level()))
			if tt.want.Level() > zap.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want.Level()-1))
			}
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("loud", "console")
	assert.ErrorContains(t, err, "invalid log level")

	_, err = New("info", "xml")
	assert.ErrorContains(t, err, "invalid log format")
}

func TestVerbosity(t *testing.T) {
	assert.Equal(t, "debug", Verbosity("info", true, false))
	assert.Equal(t, "error", Verbosity("info", false, true))
	assert.Equal(t, "warn", Verbosity("warn", false, false))
}
