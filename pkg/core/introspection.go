package core

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	StorageKey    string `json:"storage_key"`
	StorageType   string `json:"storage_type"`
	Notes         int    `json:"notes"`
	LocalNotes    int    `json:"local_notes"`
	Loading       bool   `json:"loading"`
	Error         string `json:"error,omitempty"`
	Hydrated      bool   `json:"hydrated"`
	Commits       uint64 `json:"commits"`
	Subscribers   int    `json:"subscribers"`
	RemoteLimit   int    `json:"remote_limit"`
	RemoteEnabled bool   `json:"remote_enabled"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	st := StoreState{
		StorageKey:    s.key,
		StorageType:   "storage",
		Notes:         len(s.state.Notes),
		Loading:       s.state.Loading,
		Error:         s.state.Error,
		Hydrated:      s.hydrated.Load(),
		Commits:       s.seq,
		RemoteLimit:   s.limit,
		RemoteEnabled: s.remote != nil,
	}
	for _, n := range s.state.Notes {
		if n.IsLocal {
			st.LocalNotes++
		}
	}
	s.mu.RUnlock()

	// Try to get component type if storage implements introspection.Component
	if comp, ok := s.storage.(introspection.Component); ok {
		st.StorageType = comp.ComponentType()
	}

	s.subMu.Lock()
	st.Subscribers = len(s.subs)
	s.subMu.Unlock()

	return st
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
