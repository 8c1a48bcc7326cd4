package syncer

import (
	"time"

	"github.com/aretw0/introspection"
)

// Status is the sync health reported to the user.
type Status string

const (
	// StatusIdle means no remote is configured or nothing has been written yet.
	StatusIdle Status = "idle"
	// StatusSyncing means a write is in flight.
	StatusSyncing Status = "syncing"
	// StatusSaved means the last write succeeded.
	StatusSaved Status = "saved"
	// StatusError means the last write failed. The local cache still holds the data.
	StatusError Status = "error"
)

// SyncState is a snapshot of the scheduler.
type SyncState struct {
	Status        Status    `json:"status"`
	RemoteEnabled bool      `json:"remote_enabled"`
	Pending       bool      `json:"pending"`
	LastSyncedAt  time.Time `json:"last_synced_at,omitzero"`
	Error         string    `json:"error,omitempty"`
	LoadError     string    `json:"load_error,omitempty"`
	Writes        int       `json:"writes"`
}

// State implements introspection.Introspectable.
func (s *Scheduler) State() any {
	return s.Snapshot()
}

// ComponentType implements introspection.Component.
func (s *Scheduler) ComponentType() string {
	return "syncer"
}

var _ introspection.Introspectable = (*Scheduler)(nil)
var _ introspection.Component = (*Scheduler)(nil)
