// ABOUTME: SQLite database connection and lifecycle management
// ABOUTME: Uses modernc.org/sqlite and applies embedded goose migrations on open
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/harper/questos/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SchemaVersion is the version recorded in the db_initialized event
const SchemaVersion = 1

// Querier is satisfied by both *sql.DB and *sql.Tx
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps a SQLite database connection
type DB struct {
	conn *sql.DB
	path string
}

// Open opens or creates a SQLite database at the given path and migrates it
func Open(ctx context.Context, path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := path + "?_pragma=foreign_keys(ON)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return initDB(ctx, conn, path)
}

// OpenInMemory creates a migrated in-memory SQLite database (for testing)
func OpenInMemory(ctx context.Context) (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// every pooled connection would otherwise get its own empty database
	conn.SetMaxOpenConns(1)

	return initDB(ctx, conn, ":memory:")
}

func initDB(ctx context.Context, conn *sql.DB, path string) (*DB, error) {
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn, path: path}

	fresh, err := db.migrate(ctx)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	if fresh {
		if err := db.recordInitialized(ctx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to record initialization: %w", err)
		}
	}

	return db, nil
}

// migrate applies pending migrations and reports whether the base schema was just created
func (db *DB) migrate(ctx context.Context) (bool, error) {
	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return false, err
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db.conn, migrations)
	if err != nil {
		return false, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return false, err
	}

	for _, r := range results {
		if r.Source != nil && r.Source.Version == 1 {
			return true, nil
		}
	}
	return false, nil
}

func (db *DB) recordInitialized(ctx context.Context) error {
	payload, err := json.Marshal(map[string]int{"version": SchemaVersion})
	if err != nil {
		return err
	}
	return NewEventStore(db.conn).Insert(ctx, &models.EventLogEntry{
		ID:          newID("evt"),
		EventType:   models.EventDBInitialized,
		EntityType:  "system",
		PayloadJSON: string(payload),
		CreatedAt:   time.Now().UTC(),
	})
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Conn returns the underlying sql.DB connection for advanced usage
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// BeginTx starts a transaction on the underlying connection
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.conn.BeginTx(ctx, nil)
}
