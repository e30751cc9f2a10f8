package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/jotter/pkg/adapters/remote"
	"github.com/aretw0/jotter/pkg/core"
)

// Notebook is a hydrated store together with the storage it writes to.
type Notebook struct {
	*core.Store
	storage core.Storage
	owned   bool // built by New rather than injected with WithStorage
}

// Storage returns the underlying storage adapter.
func (n *Notebook) Storage() core.Storage {
	return n.storage
}

// Watch reports external changes to the storage when the adapter supports it.
func (n *Notebook) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	w, ok := n.storage.(core.Watchable)
	if !ok {
		return nil, fmt.Errorf("storage does not support watching")
	}
	return w.Watch(ctx, pattern)
}

// Close flushes pending writes and closes subscriptions. The storage is
// released only when New built it; a storage passed with WithStorage stays
// open for its owner.
func (n *Notebook) Close(ctx context.Context) error {
	err := n.Store.Close(ctx)
	if !n.owned {
		return err
	}
	if c, ok := n.storage.(interface{ Close() error }); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}

// New opens the storage, builds the store and hydrates it.
//
//	nb, err := jotter.New(ctx, "./.jotter/jotter.db", jotter.WithAdapter("sqlite"))
func New(ctx context.Context, uri string, opts ...Option) (*Notebook, error) {
	o := applyOptions(opts)

	owned := o.storage == nil

	storage, err := initStorage(ctx, uri, o)
	if err != nil {
		return nil, err
	}
	release := func() {
		if owned {
			closeStorage(storage)
		}
	}

	store, err := newStore(storage, o)
	if err != nil {
		release()
		return nil, err
	}
	if err := store.Hydrate(ctx); err != nil {
		release()
		return nil, err
	}

	return &Notebook{Store: store, storage: storage, owned: owned}, nil
}

func newStore(storage core.Storage, o *options) (*core.Store, error) {
	codec, err := core.CodecByName(o.string("codec"))
	if err != nil {
		return nil, err
	}

	var storeOpts []core.StoreOption
	storeOpts = append(storeOpts, core.WithCodec(codec))
	if o.logger != nil {
		storeOpts = append(storeOpts, core.WithStoreLogger(o.logger))
	}
	if key := o.string("storage_key"); key != "" {
		storeOpts = append(storeOpts, core.WithStorageKey(key))
	}
	if limit, ok := o.config["remote_limit"].(int); ok && limit > 0 {
		storeOpts = append(storeOpts, core.WithRemoteLimit(limit))
	}
	if fn, ok := o.config["persist_error_handler"].(func(error)); ok {
		storeOpts = append(storeOpts, core.WithPersistErrorHandler(fn))
	}

	return core.NewStore(storage, buildRemote(o), storeOpts...), nil
}

func buildRemote(o *options) core.RemoteSource {
	if o.bool("offline") {
		return nil
	}
	if o.remote != nil {
		return o.remote
	}

	timeout, _ := o.config["remote_timeout"].(time.Duration)
	retries, _ := o.config["remote_retries"].(uint)
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return remote.NewClient(remote.Config{
		URL:     o.string("remote_url"),
		Timeout: timeout,
		Retries: retries,
		Logger:  logger,
	})
}
