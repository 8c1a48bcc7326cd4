package core

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// ChangeFunc observes a new collection value after a mutation.
type ChangeFunc func(records []NoteRecord)

// Session holds the application state of one editing session: the flat note
// collection and the current selection. Every mutation replaces the collection
// with a new value and then notifies observers exactly once.
type Session struct {
	publish   sync.Mutex // orders observer notifications; taken before mu
	mu        sync.RWMutex
	records   []NoteRecord
	selected  string
	observers []ChangeFunc

	clock  Clock
	newID  IDGenerator
	logger *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionClock sets the time source used for CreatedAt/UpdatedAt.
func WithSessionClock(clock Clock) SessionOption {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithSessionIDGenerator sets the generator for new record ids.
func WithSessionIDGenerator(gen IDGenerator) SessionOption {
	return func(s *Session) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithSessionLogger sets the logger for the session.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates an empty session.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		clock:  time.Now,
		newID:  NewID,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers an observer called after every mutation.
func (s *Session) OnChange(fn ChangeFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Records returns a copy of the current collection.
func (s *Session) Records() []NoteRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CloneRecords(s.records)
}

// Get returns the record with the given id.
func (s *Session) Get(id string) (NoteRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FindNote(s.records, id)
}

// Tree materializes the current collection.
func (s *Session) Tree() []*NoteTreeItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Materialize(s.records)
}

// Selected returns the selected note id, or "" when nothing is selected.
func (s *Session) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Select marks id as the selected note. Unknown ids clear the selection.
func (s *Session) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := FindNote(s.records, id); !ok {
		id = ""
	}
	s.selected = id
}

// Create adds a new note under parentID ("" for a root), selects it and returns its id.
// Expanding the parent happens in the same state change. An unknown parent fails
// with ErrNotFound and leaves the session untouched.
func (s *Session) Create(parentID string) (string, error) {
	id := s.newID()
	var err error
	s.commit(func(records []NoteRecord) ([]NoteRecord, bool) {
		if parentID != "" {
			if _, ok := FindNote(records, parentID); !ok {
				err = fmt.Errorf("parent %s: %w", parentID, ErrNotFound)
				return records, false
			}
		}
		s.selected = id
		return CreateNote(records, id, parentID, s.now()), true
	})
	if err != nil {
		return "", err
	}
	s.logger.Debug("note created", "id", id, "parent", parentID)
	return id, nil
}

// Update merges patch into the note with the given id. Unknown ids are ignored.
func (s *Session) Update(id string, patch Patch) bool {
	var found bool
	s.commit(func(records []NoteRecord) ([]NoteRecord, bool) {
		var next []NoteRecord
		next, found = UpdateNote(records, id, patch, s.now())
		return next, found
	})
	return found
}

// ToggleExpand flips the expanded flag of a note. Unknown ids are ignored.
func (s *Session) ToggleExpand(id string) bool {
	var found bool
	s.commit(func(records []NoteRecord) ([]NoteRecord, bool) {
		var next []NoteRecord
		next, found = ToggleExpand(records, id, s.now())
		return next, found
	})
	return found
}

// Delete removes a note together with its descendants and returns how many
// records were removed. A selection inside the removed set is cleared.
func (s *Session) Delete(id string) int {
	var removed map[string]struct{}
	s.commit(func(records []NoteRecord) ([]NoteRecord, bool) {
		var next []NoteRecord
		next, removed = DeleteNote(records, id)
		if _, ok := removed[s.selected]; ok {
			s.selected = ""
		}
		return next, len(removed) > 0
	})
	if len(removed) > 0 {
		s.logger.Debug("note deleted", "id", id, "removed", len(removed))
	}
	return len(removed)
}

// Replace swaps in a whole collection, selects its first record and notifies
// observers. Used by import.
func (s *Session) Replace(records []NoteRecord) {
	s.commit(func([]NoteRecord) ([]NoteRecord, bool) {
		next := CloneRecords(records)
		s.selected = ""
		if len(next) > 0 {
			s.selected = next[0].ID
		}
		return next, true
	})
}

// Reset swaps in a whole collection without notifying observers. Used for the
// initial load, which must not schedule a write of what was just read.
func (s *Session) Reset(records []NoteRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = CloneRecords(records)
	if _, ok := FindNote(s.records, s.selected); !ok {
		s.selected = ""
	}
}

// commit applies fn under the write lock and, when it reports a change,
// publishes the new collection to observers outside the lock. Observers must
// not mutate the session.
func (s *Session) commit(fn func(records []NoteRecord) ([]NoteRecord, bool)) {
	s.publish.Lock()
	defer s.publish.Unlock()

	s.mu.Lock()
	next, changed := fn(s.records)
	if !changed {
		s.mu.Unlock()
		return
	}
	s.records = next
	observers := append([]ChangeFunc(nil), s.observers...)
	snapshot := CloneRecords(next)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(CloneRecords(snapshot))
	}
}

func (s *Session) now() int64 {
	return Millis(s.clock())
}
