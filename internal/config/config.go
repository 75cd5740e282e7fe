// ABOUTME: Centralized configuration for the questos CLI and MCP server
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/harper/questos/internal/models"
)

// AppName names the data directory and the default Charm database
const AppName = "questos"

// Config holds all configuration for the plan store
type Config struct {
	// Storage settings
	DBPath string

	// Logging settings
	LogLevel  string
	LogFormat string

	// Import settings
	ImportSource string
	ErrorLimit   int

	// Charm settings
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// OpenAI settings
	OpenAIKey  string
	ChatModel  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultDataDir returns the data directory following the XDG spec
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return filepath.Join(dataHome, AppName)
}

// DefaultDBPath returns the default database file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), AppName+".db")
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:       getEnv("QUESTOS_DB_PATH", DefaultDBPath()),
		LogLevel:     strings.ToLower(getEnv("QUESTOS_LOG_LEVEL", "info")),
		LogFormat:    strings.ToLower(getEnv("QUESTOS_LOG_FORMAT", "console")),
		ImportSource: getEnv("QUESTOS_IMPORT_SOURCE", models.ImportSourcePaste),
		ErrorLimit:   getEnvInt("QUESTOS_ERROR_LIMIT", 8),
		CharmHost:    getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:  getEnv("CHARM_DB", AppName),
		AutoSync:     getEnvBool("CHARM_AUTO_SYNC", true),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		ChatModel:    getEnv("QUESTOS_OPENAI_MODEL", "gpt-4o-mini"),
		Timeout:      getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:   getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:   getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges and closed sets
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("QUESTOS_DB_PATH must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("QUESTOS_LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("QUESTOS_LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	if c.ErrorLimit < 1 {
		return fmt.Errorf("QUESTOS_ERROR_LIMIT must be positive, got %d", c.ErrorLimit)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("OPENAI_TIMEOUT must be positive, got %v", c.Timeout)
	}
	return nil
}

// HasOpenAI reports whether plan drafting can be enabled
func (c *Config) HasOpenAI() bool {
	return c.OpenAIKey != ""
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
