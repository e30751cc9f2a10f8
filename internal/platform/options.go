package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/jotter/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterMemory = "memory"
	AdapterSQLite = "sqlite"
	AdapterRedis  = "redis"
	AdapterS3     = "s3"
)

// S3Config carries the connection settings of the s3 adapter.
// The bucket itself is the uri passed to New or Init.
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	UsePathStyle    bool
}

// options holds the internal configuration for a notebook.
type options struct {
	storage core.Storage
	remote  core.RemoteSource
	logger  *slog.Logger
	adapter string
	config  map[string]interface{}
	s3      S3Config
}

// Option defines a functional option for configuring jotter.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		adapter: AdapterFS,
		config:  make(map[string]interface{}),
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for the store and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorage injects a storage adapter. The adapter name is then ignored.
func WithStorage(storage core.Storage) Option {
	return func(o *options) {
		o.storage = storage
	}
}

// WithAdapter selects the storage adapter by name. Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		if name != "" {
			o.adapter = name
		}
	}
}

// WithRemote injects the source used by Refresh.
func WithRemote(remote core.RemoteSource) Option {
	return func(o *options) {
		o.remote = remote
	}
}

// WithRemoteURL points Refresh at an HTTP endpoint serving a JSON array of records.
func WithRemoteURL(url string) Option {
	return func(o *options) {
		o.config["remote_url"] = url
	}
}

// WithRemoteTimeout bounds each remote request. Zero means no timeout.
func WithRemoteTimeout(d time.Duration) Option {
	return func(o *options) {
		o.config["remote_timeout"] = d
	}
}

// WithRemoteRetries sets how many times a failed fetch is retried.
func WithRemoteRetries(n uint) Option {
	return func(o *options) {
		o.config["remote_retries"] = n
	}
}

// WithOffline disables the remote source; Refresh then fails with core.ErrNoRemote.
func WithOffline(offline bool) Option {
	return func(o *options) {
		o.config["offline"] = offline
	}
}

// WithRemoteLimit caps how many remote records a refresh keeps.
func WithRemoteLimit(n int) Option {
	return func(o *options) {
		o.config["remote_limit"] = n
	}
}

// WithStorageKey overrides the key holding the snapshot.
func WithStorageKey(key string) Option {
	return func(o *options) {
		o.config["storage_key"] = key
	}
}

// WithCodec selects the snapshot encoding ("json" or "yaml").
func WithCodec(name string) Option {
	return func(o *options) {
		o.config["codec"] = name
	}
}

// WithPersistErrorHandler receives storage write failures, which are otherwise only logged.
func WithPersistErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["persist_error_handler"] = fn
	}
}

// WithWatcherErrorHandler receives failures of the fs watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithMustExist requires the fs data directory to exist already.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithForceTemp forces the data path into a temporary directory.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithReadOnly makes every storage write return core.ErrReadOnly.
// Read-only mode also bypasses the dev sandbox.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
// By default (true) local data paths are re-rooted into a temporary directory.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

// WithRedisPrefix namespaces the keys of the redis adapter.
func WithRedisPrefix(prefix string) Option {
	return func(o *options) {
		o.config["redis_prefix"] = prefix
	}
}

// WithS3 configures the s3 adapter.
func WithS3(cfg S3Config) Option {
	return func(o *options) {
		o.s3 = cfg
	}
}

func (o *options) bool(key string) bool {
	v, _ := o.config[key].(bool)
	return v
}

func (o *options) string(key string) string {
	v, _ := o.config[key].(string)
	return v
}
