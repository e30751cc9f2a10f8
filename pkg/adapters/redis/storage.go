// Package redis implements core.Storage on a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/introspection"
	goredis "github.com/redis/go-redis/v9"

	"github.com/aretw0/jotter/pkg/core"
)

// DefaultPrefix namespaces every key written by jotter.
const DefaultPrefix = "jotter:"

// Config holds the configuration for the Redis storage.
type Config struct {
	URL      string
	Prefix   string
	ReadOnly bool
	Logger   *slog.Logger
}

// Storage implements core.Storage with GET/SET/DEL.
type Storage struct {
	config Config
	client *goredis.Client
}

// New parses the URL and builds a client. No connection is made until
// Initialize or the first command.
func New(config Config) (*Storage, error) {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Prefix == "" {
		config.Prefix = DefaultPrefix
	}

	opt, err := goredis.ParseURL(config.URL)
	if err != nil {
		config.Logger.Warn("failed to parse redis url, using it as address", "url", config.URL, "error", err)
		opt = &goredis.Options{Addr: config.URL}
	}
	return NewWithClient(goredis.NewClient(opt), config), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, config Config) *Storage {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Prefix == "" {
		config.Prefix = DefaultPrefix
	}
	return &Storage{config: config, client: client}
}

// Initialize verifies the server is reachable.
func (s *Storage) Initialize(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

// Get reads the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.config.Prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Set writes value under key without expiry.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := s.client.Set(ctx, s.config.Prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	s.config.Logger.Debug("key written", "key", key, "bytes", len(value))
	return nil
}

// Delete removes key.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := s.client.Del(ctx, s.config.Prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close closes the client.
func (s *Storage) Close() error {
	return s.client.Close()
}

// StorageState exposes internal state for observability.
type StorageState struct {
	Addr       string `json:"addr"`
	DB         int    `json:"db"`
	Prefix     string `json:"prefix"`
	ReadOnly   bool   `json:"read_only"`
	TotalConns uint32 `json:"total_connections"`
	IdleConns  uint32 `json:"idle_connections"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	opts := s.client.Options()
	stats := s.client.PoolStats()
	return StorageState{
		Addr:       opts.Addr,
		DB:         opts.DB,
		Prefix:     s.config.Prefix,
		ReadOnly:   s.config.ReadOnly,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "redis"
}

var _ core.Storage = (*Storage)(nil)
var _ core.Initializer = (*Storage)(nil)
var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
