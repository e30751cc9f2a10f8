package core

import "context"

// Storage defines the contract for the persistent key-value store.
// Adhering to this interface keeps the store independent of the
// underlying mechanism (Filesystem, SQLite, Redis, S3, memory).
type Storage interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Initializer is implemented by storages that need setup before use
// (e.g., create directories, create tables).
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Watchable is implemented by storages that can report external changes.
type Watchable interface {
	// Watch emits an Event for every change to a key matching pattern.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// RemoteSource defines the read-only contract for the remote notes endpoint.
type RemoteSource interface {
	// Fetch returns the records in the order the source served them.
	Fetch(ctx context.Context) ([]RemoteNote, error)
}
