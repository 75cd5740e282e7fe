// ABOUTME: Charm KV client for backing up the exported plan CSV
// ABOUTME: Keeps a latest snapshot plus timestamped history, synced over SSH key auth
package charm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/harper/questos/internal/util"
)

// Key layout
const (
	PlanPrefix = "plan:"
	LatestKey  = PlanPrefix + "latest"
)

// snapshotLayout sorts lexically in time order
const snapshotLayout = "20060102T150405.000000000Z"

// ErrNoBackup is returned by Pull when nothing has been pushed yet
var ErrNoBackup = errors.New("no plan backup found")

// Config holds charm client configuration
type Config struct {
	Host       string
	DBName     string
	AutoSync   bool
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConfig returns default configuration for the charm client
func DefaultConfig() *Config {
	return &Config{
		Host:       "cloud.charm.sh",
		DBName:     "questos",
		AutoSync:   true,
		MaxRetries: 2,
		RetryDelay: time.Second,
	}
}

// Store is the subset of the charm KV the backup client uses
type Store interface {
	Set(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Keys() ([][]byte, error)
	Sync() error
	Close() error
}

// Snapshot is one backed up plan export
type Snapshot struct {
	Key       string    `json:"key"`
	CSV       string    `json:"csv"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

// Client wraps charm KV for plan backups
type Client struct {
	kv     Store
	config *Config
	logger *zap.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewClient opens the charm KV database named by cfg
func NewClient(ctx context.Context, cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	// the charm client reads its server from the environment
	if cfg.Host != "" {
		if err := os.Setenv("CHARM_HOST", cfg.Host); err != nil {
			return nil, fmt.Errorf("failed to set CHARM_HOST: %w", err)
		}
	}

	db, err := kv.OpenWithDefaults(cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := NewClientWithStore(db, cfg, logger)
	if cfg.AutoSync {
		if err := c.Sync(ctx); err != nil {
			c.logger.Warn("initial charm sync failed", zap.Error(err))
		}
	}
	return c, nil
}

// NewClientWithStore wraps an already open store
func NewClientWithStore(store Store, cfg *Config, logger *zap.Logger) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		kv:     store,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Close closes the KV database
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv != nil {
		err := c.kv.Close()
		c.kv = nil
		return err
	}
	return nil
}

// ID returns the charm user ID
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

// AuthorizedKeys returns the SSH keys linked to the charm account
func (c *Client) AuthorizedKeys() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.AuthorizedKeys()
}

// Host returns the configured charm server
func (c *Client) Host() string {
	return c.config.Host
}

// Sync pushes and pulls pending changes, retrying transient failures
func (c *Client) Sync(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv == nil {
		return fmt.Errorf("charm client is closed")
	}
	return util.Retry(ctx, c.config.MaxRetries, c.config.RetryDelay, func(ctx context.Context, attempt int) error {
		return c.kv.Sync()
	})
}

// Push stores csv as the latest backup and as a timestamped snapshot
func (c *Client) Push(ctx context.Context, csv string, rows int) (*Snapshot, error) {
	at := c.now().UTC()
	snap := &Snapshot{
		Key:       SnapshotKey(at),
		CSV:       csv,
		Rows:      rows,
		CreatedAt: at,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	c.mu.Lock()
	if c.kv == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("charm client is closed")
	}
	for _, key := range []string{snap.Key, LatestKey} {
		if err := c.kv.Set([]byte(key), data); err != nil {
			c.mu.Unlock()
			return nil, fmt.Errorf("failed to set key %s: %w", key, err)
		}
	}
	c.mu.Unlock()

	c.logger.Info("plan backup pushed", zap.String("key", snap.Key), zap.Int("rows", rows))

	if c.config.AutoSync {
		if err := c.Sync(ctx); err != nil {
			return snap, fmt.Errorf("backup saved locally but sync failed: %w", err)
		}
	}
	return snap, nil
}

// Pull returns the latest backup
func (c *Client) Pull(ctx context.Context) (*Snapshot, error) {
	return c.Get(ctx, LatestKey)
}

// Get returns the snapshot stored under key
func (c *Client) Get(ctx context.Context, key string) (*Snapshot, error) {
	if c.config.AutoSync {
		if err := c.Sync(ctx); err != nil {
			c.logger.Warn("charm sync before read failed", zap.Error(err))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv == nil {
		return nil, fmt.Errorf("charm client is closed")
	}
	data, err := c.kv.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNoBackup
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	if data == nil {
		return nil, ErrNoBackup
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", key, err)
	}
	return &snap, nil
}

// List returns the timestamped snapshot keys, newest first
func (c *Client) List(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv == nil {
		return nil, fmt.Errorf("charm client is closed")
	}
	keys, err := c.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	result := []string{}
	for _, key := range keys {
		k := string(key)
		if strings.HasPrefix(k, PlanPrefix) && k != LatestKey {
			result = append(result, k)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(result)))
	return result, nil
}

// SnapshotKey generates the history key for a backup taken at t
func SnapshotKey(t time.Time) string {
	return PlanPrefix + t.UTC().Format(snapshotLayout)
}

// SnapshotTime parses the timestamp out of a history key
func SnapshotTime(key string) (time.Time, bool) {
	t, err := time.Parse(snapshotLayout, strings.TrimPrefix(key, PlanPrefix))
	return t, err == nil
}
