// Package sqlite implements core.Storage on a single SQLite table
// using the pure Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/introspection"
	_ "modernc.org/sqlite"

	"github.com/aretw0/jotter/pkg/core"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Config holds the configuration for the SQLite storage.
// ReadOnly is enforced by the adapter, not the connection.
type Config struct {
	Path     string
	ReadOnly bool
	Logger   *slog.Logger
}

// Storage implements core.Storage on top of database/sql.
type Storage struct {
	config Config
	db     *sql.DB
}

// Open opens (or creates) the database file.
func Open(config Config) (*Storage, error) {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	if !config.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", config.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection serializes writers
	db.SetMaxOpenConns(1)

	return &Storage{config: config, db: db}, nil
}

// Initialize creates the key-value table.
func (s *Storage) Initialize(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if s.config.ReadOnly {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Get reads the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	s.config.Logger.Debug("key written", "key", key, "bytes", len(value))
	return nil
}

// Delete removes key. A missing key is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	return s.db.Close()
}

// StorageState exposes internal state for observability.
type StorageState struct {
	Path       string `json:"path"`
	ReadOnly   bool   `json:"read_only"`
	OpenConns  int    `json:"open_connections"`
	InUseConns int    `json:"in_use_connections"`
	WaitCount  int64  `json:"wait_count"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	stats := s.db.Stats()
	return StorageState{
		Path:       s.config.Path,
		ReadOnly:   s.config.ReadOnly,
		OpenConns:  stats.OpenConnections,
		InUseConns: stats.InUse,
		WaitCount:  stats.WaitCount,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "sqlite"
}

var _ core.Storage = (*Storage)(nil)
var _ core.Initializer = (*Storage)(nil)
var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
