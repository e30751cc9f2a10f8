// Package fs implements core.Storage on the local filesystem.
// Every key is one file inside a data directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/jotter/pkg/core"
)

// FileExt is the extension of every file holding a key.
const FileExt = ".kv"

// Storage implements core.Storage using the filesystem.
type Storage struct {
	Path   string
	config Config

	mu            sync.RWMutex
	watcherActive bool
	lastEvent     *time.Time
}

// Config holds the configuration for the filesystem storage.
type Config struct {
	Path         string
	MustExist    bool
	ReadOnly     bool
	Logger       *slog.Logger
	ErrorHandler func(error) // receives watcher failures
}

// NewStorage creates a new filesystem-backed storage.
func NewStorage(config Config) *Storage {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Storage{
		Path:   config.Path,
		config: config,
	}
}

// Initialize ensures the data directory is ready.
func (s *Storage) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			if s.config.ReadOnly {
				// nothing to read yet; Get will report ErrNotFound
				return nil
			}
			return fmt.Errorf("data path does not exist: %s", s.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", s.Path)
		}
		return nil
	}

	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Get reads the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	data, err := os.ReadFile(s.filename(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", core.ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), nil
}

// Set writes value under key atomically.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	if err := writeFileAtomic(s.filename(key), []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	s.config.Logger.Debug("key written", "key", key, "bytes", len(value))
	return nil
}

// Delete removes the file holding key. A missing file is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}

	if err := os.Remove(s.filename(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if key, ok := keyFromFilename(e.Name()); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// filename maps a key to its file. Keys are query-escaped so that
// separators like ':' and '/' never reach the filesystem.
func (s *Storage) filename(key string) string {
	return filepath.Join(s.Path, url.QueryEscape(key)+FileExt)
}

// keyFromFilename reverses filename. Temp files and foreign files are rejected.
func keyFromFilename(name string) (string, bool) {
	if strings.HasPrefix(name, TempFilePrefix) || !strings.HasSuffix(name, FileExt) {
		return "", false
	}
	key, err := url.QueryUnescape(strings.TrimSuffix(name, FileExt))
	if err != nil {
		return "", false
	}
	return key, true
}

var _ core.Storage = (*Storage)(nil)
var _ core.Initializer = (*Storage)(nil)
var _ core.Watchable = (*Storage)(nil)
