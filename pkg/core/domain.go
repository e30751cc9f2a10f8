// Package core holds the notes domain: the Note entity, the storage and
// remote ports, and the Store that owns the authoritative list of notes.
package core

// Note is the central entity of the domain.
// Notes are value snapshots: the store replaces entries, it never edits one in place.
type Note struct {
	ID      int64  `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Body    string `json:"body" yaml:"body"`
	IsLocal bool   `json:"isLocal,omitempty" yaml:"isLocal,omitempty"`
}

// NoteUpdate is a partial update. Nil fields are left untouched.
type NoteUpdate struct {
	Title *string
	Body  *string
}

// RemoteNote is a record as served by the remote source.
type RemoteNote struct {
	UserID int64  `json:"userId"`
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// ToNote maps a remote record to a Note. Remote notes are never local.
func (r RemoteNote) ToNote() Note {
	return Note{ID: r.ID, Title: r.Title, Body: r.Body}
}

// State is a snapshot of the store. Error is empty when the last refresh
// succeeded or none has run yet.
type State struct {
	Notes   []Note `json:"notes"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// EventType represents the type of change committed by the store.
type EventType string

const (
	EventCreate  EventType = "CREATE"
	EventModify  EventType = "MODIFY"
	EventDelete  EventType = "DELETE"
	EventRefresh EventType = "REFRESH"
	EventClear   EventType = "CLEAR"
	EventStatus  EventType = "STATUS"
)

// Event represents a committed change.
// ID is the affected note, or a storage key for adapter events.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer (and lifecycle.Event).
func (e Event) String() string {
	if e.ID == "" {
		return string(e.Type)
	}
	return string(e.Type) + " " + e.ID
}

func cloneNotes(notes []Note) []Note {
	if notes == nil {
		return []Note{}
	}
	out := make([]Note, len(notes))
	copy(out, notes)
	return out
}
