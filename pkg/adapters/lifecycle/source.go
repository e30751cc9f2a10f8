// Package lifecycle exposes store and storage events as a lifecycle.Source.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/jotter/pkg/core"
)

type eventSource struct {
	events    <-chan core.Event
	subscribe func() (<-chan core.Event, func())
	keep      map[core.EventType]bool
	out       chan lifecycle.Event
}

// NewSource bridges a core.Event channel to lifecycle.Event. When types
// are given, only those event types are forwarded.
func NewSource(events <-chan core.Event, types ...core.EventType) lifecycle.Source {
	var keep map[core.EventType]bool
	if len(types) > 0 {
		keep = make(map[core.EventType]bool, len(types))
		for _, t := range types {
			keep[t] = true
		}
	}
	return &eventSource{
		events: events,
		keep:   keep,
		out:    make(chan lifecycle.Event),
	}
}

// NewStoreSource forwards the commit events of store. It subscribes on
// Start and unsubscribes when the source stops.
func NewStoreSource(store *core.Store, types ...core.EventType) lifecycle.Source {
	src := NewSource(nil, types...).(*eventSource)
	src.subscribe = func() (<-chan core.Event, func()) {
		return store.Subscribe(0)
	}
	return src
}

func (s *eventSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *eventSource) Start(ctx context.Context) error {
	events := s.events
	stop := func() {}
	if s.subscribe != nil {
		events, stop = s.subscribe()
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				if s.keep != nil && !s.keep[e.Type] {
					continue
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
