package core

import "context"

// Fixed namespace keys of the local cache.
const (
	KeyNotes         = "grove.notes"
	KeyStorageConfig = "grove.storage-config"
)

// Cache is the always-available local key-value store backing the session.
// Adhering to this interface keeps the core independent of the storage
// mechanism (files, bbolt, SQL, memory).
type Cache interface {
	// Get returns the value stored under key. The flag is false when the key has
	// never been written.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases the underlying storage.
	Close() error
}

// Watchable is implemented by caches that can report writes made by other processes.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// Remote is a remote document store holding the whole collection.
type Remote interface {
	// Load fetches the remote collection.
	Load(ctx context.Context) ([]NoteRecord, error)

	// Save replaces the remote collection.
	Save(ctx context.Context, records []NoteRecord) error
}

// EventType represents the type of change observed in a cache.
type EventType string

const (
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a cache key.
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return string(e.Type) + " " + e.Key
}
