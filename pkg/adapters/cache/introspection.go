package cache

import (
	"github.com/aretw0/introspection"
)

// State is the observable state shared by every cache variant.
type State struct {
	Kind          string `json:"kind"`
	Path          string `json:"path,omitempty"`
	Keys          int    `json:"keys"`
	Writes        int    `json:"writes,omitempty"`
	WatcherActive bool   `json:"watcher_active,omitempty"`
}

// State implements introspection.Introspectable.
func (f *File) State() any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	keys := 0
	if entries, err := readDirKeys(f.Path); err == nil {
		keys = entries
	}
	return State{Kind: "file", Path: f.Path, Keys: keys, Writes: f.writes, WatcherActive: f.watcherActive}
}

// ComponentType implements introspection.Component.
func (f *File) ComponentType() string { return "cache" }

// State implements introspection.Introspectable.
func (b *Bolt) State() any {
	return State{Kind: "bolt", Path: b.Path, Keys: b.keys()}
}

// ComponentType implements introspection.Component.
func (b *Bolt) ComponentType() string { return "cache" }

// State implements introspection.Introspectable. Credentials in the DSN are not exposed.
func (p *Postgres) State() any {
	return State{Kind: "postgres", Path: p.tableName}
}

// ComponentType implements introspection.Component.
func (p *Postgres) ComponentType() string { return "cache" }

// State implements introspection.Introspectable.
func (m *Memory) State() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return State{Kind: "memory", Keys: len(m.values)}
}

// ComponentType implements introspection.Component.
func (m *Memory) ComponentType() string { return "cache" }

var (
	_ introspection.Component = (*File)(nil)
	_ introspection.Component = (*Bolt)(nil)
	_ introspection.Component = (*Postgres)(nil)
	_ introspection.Component = (*Memory)(nil)
)
