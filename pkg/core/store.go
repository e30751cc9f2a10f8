package core

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultStorageKey is the single key holding the serialized notes.
	DefaultStorageKey = "notes:v1"
	// DefaultRemoteLimit caps how many remote records a refresh keeps.
	DefaultRemoteLimit = 20
)

// ErrNoRemote is returned by Refresh when the store has no remote source.
var ErrNoRemote = errors.New("no remote source configured")

// Store is the single authoritative holder of note state.
// It hydrates from Storage once, writes every committed change back to it,
// and merges remote notes on Refresh.
type Store struct {
	mu    sync.RWMutex
	state State
	seq   uint64

	storage Storage
	remote  RemoteSource
	codec   Codec
	ids     IDSource
	limit   int
	key     string
	logger  *slog.Logger
	onError func(error)

	hydrateOnce sync.Once
	hydrated    atomic.Bool
	persist     *persister

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
	closed  bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger for the store.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStorageKey overrides the key the snapshot is stored under.
func WithStorageKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithRemoteLimit caps the number of remote records kept per refresh.
// Zero or negative values mean the default (20).
func WithRemoteLimit(limit int) StoreOption {
	return func(s *Store) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// WithIDSource replaces the clock-based id source.
func WithIDSource(ids IDSource) StoreOption {
	return func(s *Store) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithCodec sets the snapshot encoding.
func WithCodec(c Codec) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithPersistErrorHandler registers a callback for storage failures.
// Failures never reach the mutating caller; this is the only way to observe them.
func WithPersistErrorHandler(fn func(error)) StoreOption {
	return func(s *Store) {
		s.onError = fn
	}
}

// NewStore creates a Store. remote may be nil, in which case Refresh fails.
// The store starts empty; call Hydrate to load the persisted snapshot.
func NewStore(storage Storage, remote RemoteSource, opts ...StoreOption) *Store {
	s := &Store{
		state:   State{Notes: []Note{}},
		storage: storage,
		remote:  remote,
		codec:   JSONCodec{},
		ids:     NewClockIDs(nil),
		limit:   DefaultRemoteLimit,
		key:     DefaultStorageKey,
		logger:  slog.New(slog.DiscardHandler),
		subs:    make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.persist = &persister{
		storage: storage,
		key:     s.key,
		logger:  s.logger,
		onError: s.onError,
	}
	return s
}

// Hydrate loads the persisted snapshot into memory. Only the first call does
// any work. A missing, unreadable or unparseable snapshot leaves the notes as
// they are; those failures are logged, never returned.
func (s *Store) Hydrate(ctx context.Context) error {
	s.hydrateOnce.Do(func() {
		defer s.hydrated.Store(true)

		raw, err := s.storage.Get(ctx, s.key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				s.logger.Debug("no snapshot stored", "key", s.key)
			} else {
				s.logger.Warn("failed to read snapshot", "key", s.key, "error", err)
			}
			return
		}

		notes, err := s.codec.Decode(raw)
		if err != nil {
			s.logger.Warn("failed to parse snapshot", "key", s.key, "error", err)
			return
		}

		s.mu.Lock()
		s.state.Notes = notes
		s.mu.Unlock()
		s.logger.Debug("store hydrated", "key", s.key, "notes", len(notes))
	})
	return nil
}

// Hydrated reports whether hydration has completed.
func (s *Store) Hydrated() bool {
	return s.hydrated.Load()
}

// Add creates a local note and puts it first.
// Callers are expected to reject blank titles beforehand; the store does not.
func (s *Store) Add(title, body string) Note {
	note := Note{
		ID:      s.ids.NextID(),
		Title:   strings.TrimSpace(title),
		Body:    body,
		IsLocal: true,
	}

	s.mu.Lock()
	next := make([]Note, 0, len(s.state.Notes)+1)
	next = append(next, note)
	next = append(next, s.state.Notes...)
	seq, notes := s.replaceLocked(next)
	s.mu.Unlock()

	s.committed(seq, notes, EventCreate, note.ID)
	return note
}

// Update applies the non-nil fields of u to the note with the given id.
// Nothing happens when no note matches.
func (s *Store) Update(id int64, u NoteUpdate) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	next := cloneNotes(s.state.Notes)
	n := next[idx]
	if u.Title != nil {
		n.Title = *u.Title
	}
	if u.Body != nil {
		n.Body = *u.Body
	}
	next[idx] = n
	seq, notes := s.replaceLocked(next)
	s.mu.Unlock()

	s.committed(seq, notes, EventModify, id)
}

// Remove drops the note with the given id. Nothing happens when absent.
func (s *Store) Remove(id int64) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	next := make([]Note, 0, len(s.state.Notes)-1)
	next = append(next, s.state.Notes[:idx]...)
	next = append(next, s.state.Notes[idx+1:]...)
	seq, notes := s.replaceLocked(next)
	s.mu.Unlock()

	s.committed(seq, notes, EventDelete, id)
}

// Refresh fetches remote notes and merges them behind the local ones,
// dropping remote notes from earlier refreshes. On failure the notes stay as
// they are and the error text is kept in State.Error until the next attempt.
// Overlapping calls are not coordinated: the last one to finish wins.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()
	s.publish(EventStatus, "")

	records, err := s.fetch(ctx)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Unknown error"
		}
		s.mu.Lock()
		s.state.Error = msg
		s.state.Loading = false
		s.mu.Unlock()

		s.logger.Warn("refresh failed", "error", err)
		s.publish(EventStatus, "")
		return err
	}

	if len(records) > s.limit {
		records = records[:s.limit]
	}
	remote := make([]Note, 0, len(records))
	for _, r := range records {
		remote = append(remote, r.ToNote())
	}

	s.mu.Lock()
	next := make([]Note, 0, len(s.state.Notes)+len(remote))
	for _, n := range s.state.Notes {
		if n.IsLocal {
			next = append(next, n)
		}
	}
	next = append(next, remote...)
	seq, notes := s.replaceLocked(next)
	s.state.Loading = false
	s.mu.Unlock()

	s.logger.Debug("refresh merged", "remote", len(remote), "total", len(notes))
	s.committed(seq, notes, EventRefresh, 0)
	return nil
}

func (s *Store) fetch(ctx context.Context) ([]RemoteNote, error) {
	if s.remote == nil {
		return nil, ErrNoRemote
	}
	return s.remote.Fetch(ctx)
}

// ClearAll deletes the stored snapshot and empties the notes.
// Loading and Error are left alone. A failed delete is logged and ignored.
func (s *Store) ClearAll(ctx context.Context) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.state.Notes = []Note{}
	s.mu.Unlock()

	_ = s.persist.remove(ctx, seq)
	s.publish(EventClear, "")
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	st.Notes = cloneNotes(s.state.Notes)
	return st
}

// Notes returns a copy of the current notes.
func (s *Store) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNotes(s.state.Notes)
}

// Get returns the note with the given id.
func (s *Store) Get(id int64) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexLocked(id); idx >= 0 {
		return s.state.Notes[idx], true
	}
	return Note{}, false
}

// Subscribe registers for commit events. Events are dropped for a
// subscriber whose buffer is full. The returned func unsubscribes.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 100
	}
	ch := make(chan Event, buffer)

	s.subMu.Lock()
	defer s.subMu.Unlock()

	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// Flush waits until every scheduled storage write has finished.
func (s *Store) Flush(ctx context.Context) error {
	return s.persist.wait(ctx)
}

// Close flushes pending writes and closes every subscription.
func (s *Store) Close(ctx context.Context) error {
	err := s.Flush(ctx)

	s.subMu.Lock()
	defer s.subMu.Unlock()
	if !s.closed {
		s.closed = true
		for id, ch := range s.subs {
			delete(s.subs, id)
			close(ch)
		}
	}
	return err
}

// replaceLocked swaps in next and returns the commit sequence number along
// with a private copy for encoding. s.mu must be held.
func (s *Store) replaceLocked(next []Note) (uint64, []Note) {
	s.state.Notes = next
	s.seq++
	return s.seq, cloneNotes(next)
}

func (s *Store) indexLocked(id int64) int {
	for i, n := range s.state.Notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// committed is the on-commit hook. It schedules the write without waiting
// for it, then notifies subscribers. Nothing is written before hydration.
func (s *Store) committed(seq uint64, notes []Note, evType EventType, id int64) {
	if s.hydrated.Load() {
		snapshot, err := s.codec.Encode(notes)
		if err != nil {
			s.persist.report(err)
		} else {
			s.persist.schedule(context.Background(), seq, snapshot)
		}
	}

	var ref string
	if id != 0 {
		ref = strconv.FormatInt(id, 10)
	}
	s.publish(evType, ref)
}

func (s *Store) publish(evType EventType, id string) {
	ev := Event{Type: evType, ID: id, Timestamp: time.Now().Unix()}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
