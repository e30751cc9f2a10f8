package jotter

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/jotter/internal/platform"
	"github.com/aretw0/jotter/pkg/core"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Notebook is a hydrated store bound to its storage.
type Notebook = platform.Notebook

// Note is a public alias for the domain entity.
type Note = core.Note

// NoteUpdate is a public alias for partial updates.
type NoteUpdate = core.NoteUpdate

// State is a public alias for the store snapshot.
type State = core.State

// S3Config configures the s3 adapter.
type S3Config = platform.S3Config

// Adapter names.
const (
	AdapterFS     = platform.AdapterFS
	AdapterMemory = platform.AdapterMemory
	AdapterSQLite = platform.AdapterSQLite
	AdapterRedis  = platform.AdapterRedis
	AdapterS3     = platform.AdapterS3
)

// --- Configuration ---

// Option defines a functional option for configuring jotter.
type Option = platform.Option

// WithLogger sets the logger for the store and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStorage injects a custom storage adapter.
func WithStorage(storage core.Storage) Option {
	return platform.WithStorage(storage)
}

// WithAdapter selects the storage adapter by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithRemote injects the source used by Refresh.
func WithRemote(remote core.RemoteSource) Option {
	return platform.WithRemote(remote)
}

// WithRemoteURL points Refresh at an HTTP endpoint.
func WithRemoteURL(url string) Option {
	return platform.WithRemoteURL(url)
}

// WithRemoteTimeout bounds each remote request.
func WithRemoteTimeout(d time.Duration) Option {
	return platform.WithRemoteTimeout(d)
}

// WithRemoteRetries sets how many times a failed fetch is retried.
func WithRemoteRetries(n uint) Option {
	return platform.WithRemoteRetries(n)
}

// WithOffline disables the remote source.
func WithOffline(offline bool) Option {
	return platform.WithOffline(offline)
}

// WithRemoteLimit caps how many remote records a refresh keeps.
func WithRemoteLimit(n int) Option {
	return platform.WithRemoteLimit(n)
}

// WithStorageKey overrides the key holding the snapshot.
func WithStorageKey(key string) Option {
	return platform.WithStorageKey(key)
}

// WithCodec selects the snapshot encoding ("json" or "yaml").
func WithCodec(name string) Option {
	return platform.WithCodec(name)
}

// WithPersistErrorHandler receives storage write failures.
func WithPersistErrorHandler(fn func(error)) Option {
	return platform.WithPersistErrorHandler(fn)
}

// WithWatcherErrorHandler receives failures of the fs watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithMustExist requires the data directory to exist already.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithRedisPrefix namespaces the keys of the redis adapter.
func WithRedisPrefix(prefix string) Option {
	return platform.WithRedisPrefix(prefix)
}

// WithS3 configures the s3 adapter.
func WithS3(cfg S3Config) Option {
	return platform.WithS3(cfg)
}

// --- Factory ---

// New opens the storage at uri, builds the store and hydrates it.
func New(ctx context.Context, uri string, opts ...Option) (*Notebook, error) {
	return platform.New(ctx, uri, opts...)
}

// Init builds and initializes a storage adapter without a store.
func Init(ctx context.Context, uri string, opts ...Option) (core.Storage, error) {
	return platform.Init(ctx, uri, opts...)
}

// --- Safety & Utils ---

// ResolveDataPath determines the actual data path based on safety rules.
func ResolveDataPath(userPath string, forceTemp bool) string {
	return platform.ResolveDataPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot looks upwards for a .jotter directory or a jotter.yaml file.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// DefaultDataPath resolves the data directory for startDir.
func DefaultDataPath(startDir string) string {
	return platform.DefaultDataPath(startDir)
}
