package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/lifecycle"
)

// persister writes snapshots to storage in the background.
// Every write carries the sequence number of the commit that produced it;
// a write older than the last one applied is dropped, so storage always ends
// up holding the latest commit no matter how the goroutines are scheduled.
type persister struct {
	storage Storage
	key     string
	logger  *slog.Logger
	onError func(error)

	mu      sync.Mutex // serializes storage calls
	applied uint64
	wg      sync.WaitGroup
}

// schedule starts an asynchronous write of snapshot for commit seq.
func (p *persister) schedule(ctx context.Context, seq uint64, snapshot string) {
	p.wg.Add(1)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer p.wg.Done()
		p.write(ctx, seq, snapshot)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		p.report(fmt.Errorf("persist panic: %w", err))
	}))
}

func (p *persister) write(ctx context.Context, seq uint64, snapshot string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq <= p.applied {
		p.logger.Debug("snapshot superseded, skipping write", "seq", seq, "applied", p.applied)
		return
	}
	if err := p.storage.Set(ctx, p.key, snapshot); err != nil {
		p.report(fmt.Errorf("failed to persist notes: %w", err))
		return
	}
	p.applied = seq
	p.logger.Debug("snapshot persisted", "key", p.key, "seq", seq, "bytes", len(snapshot))
}

// remove deletes the snapshot synchronously for commit seq.
// Pending writes from earlier commits are dropped even if the delete fails.
func (p *persister) remove(ctx context.Context, seq uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq < p.applied {
		// a later commit already wrote its snapshot
		return nil
	}
	p.applied = seq
	if err := p.storage.Delete(ctx, p.key); err != nil {
		err = fmt.Errorf("failed to delete snapshot: %w", err)
		p.report(err)
		return err
	}
	return nil
}

// wait blocks until every scheduled write has returned.
func (p *persister) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *persister) report(err error) {
	p.logger.Warn("storage write failed", "key", p.key, "error", err)
	if p.onError != nil {
		p.onError(err)
	}
}
