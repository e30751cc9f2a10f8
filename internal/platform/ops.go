package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/jotter/pkg/adapters/fs"
	"github.com/aretw0/jotter/pkg/adapters/memory"
	"github.com/aretw0/jotter/pkg/adapters/redis"
	"github.com/aretw0/jotter/pkg/adapters/s3"
	"github.com/aretw0/jotter/pkg/adapters/sqlite"
	"github.com/aretw0/jotter/pkg/core"
)

// Init builds and initializes the storage selected by the options.
// The uri is adapter-specific: a directory for fs, a database file for
// sqlite, a connection URL for redis and a bucket name for s3.
func Init(ctx context.Context, uri string, opts ...Option) (core.Storage, error) {
	return initStorage(ctx, uri, applyOptions(opts))
}

func initStorage(ctx context.Context, uri string, o *options) (core.Storage, error) {
	if o.storage != nil {
		return o.storage, nil
	}

	var (
		storage core.Storage
		err     error
	)
	switch o.adapter {
	case AdapterFS:
		storage = initFS(uri, o)
	case AdapterMemory:
		storage = memory.NewStorage()
	case AdapterSQLite:
		storage, err = initSQLite(uri, o)
	case AdapterRedis:
		storage, err = redis.New(redis.Config{
			URL:      uri,
			Prefix:   o.string("redis_prefix"),
			ReadOnly: o.bool("read_only"),
			Logger:   o.logger,
		})
	case AdapterS3:
		storage, err = s3.New(ctx, s3.Config{
			Endpoint:        o.s3.Endpoint,
			Region:          o.s3.Region,
			AccessKeyID:     o.s3.AccessKeyID,
			SecretAccessKey: o.s3.SecretAccessKey,
			Bucket:          uri,
			Prefix:          o.s3.Prefix,
			UsePathStyle:    o.s3.UsePathStyle,
			ReadOnly:        o.bool("read_only"),
			Logger:          o.logger,
		})
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", o.adapter, err)
	}

	if initializer, ok := storage.(core.Initializer); ok {
		if err := initializer.Initialize(ctx); err != nil {
			closeStorage(storage)
			return nil, err
		}
	}
	return storage, nil
}

// resolveLocalPath applies the dev sandbox to local paths.
func resolveLocalPath(path string, o *options) string {
	devSafety := true
	if v, ok := o.config["dev_safety"].(bool); ok {
		devSafety = v
	}
	readOnly := o.bool("read_only")
	bypass := readOnly || !devSafety

	useTemp := o.bool("temp_dir") || (IsDevRun() && !bypass)
	resolved := ResolveDataPath(path, useTemp)

	if o.logger != nil && IsDevRun() {
		switch {
		case readOnly:
			o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
		case bypass:
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
		default:
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolved)
		}
	}
	if o.logger != nil && useTemp && resolved != path {
		o.logger.Warn("data path re-rooted", "original_path", path, "resolved_path", resolved)
	}
	return resolved
}

func initFS(path string, o *options) *fs.Storage {
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))
	return fs.NewStorage(fs.Config{
		Path:         resolveLocalPath(path, o),
		MustExist:    o.bool("must_exist"),
		ReadOnly:     o.bool("read_only"),
		Logger:       o.logger,
		ErrorHandler: errorHandler,
	})
}

func initSQLite(path string, o *options) (*sqlite.Storage, error) {
	if path == "" {
		path = "jotter.db"
	}
	return sqlite.Open(sqlite.Config{
		Path:     resolveLocalPath(path, o),
		ReadOnly: o.bool("read_only"),
		Logger:   o.logger,
	})
}

func closeStorage(storage core.Storage) {
	if c, ok := storage.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			slog.Default().Debug("failed to close storage", "error", err)
		}
	}
}
