package core

import (
	"github.com/aretw0/introspection"
)

// SessionState exposes internal state for observability.
type SessionState struct {
	Notes    int    `json:"notes"`
	Roots    int    `json:"roots"`
	Visible  int    `json:"visible"`
	Selected string `json:"selected,omitempty"`
	Issues   int    `json:"hierarchy_issues"`
}

// State implements introspection.Introspectable.
func (s *Session) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roots := Materialize(s.records)
	visible := 0
	Walk(roots, func(*NoteTreeItem) bool {
		visible++
		return true
	})

	return SessionState{
		Notes:    len(s.records),
		Roots:    len(roots),
		Visible:  visible,
		Selected: s.selected,
		Issues:   len(CheckHierarchy(s.records)),
	}
}

// ComponentType implements introspection.Component.
func (s *Session) ComponentType() string {
	return "session"
}

var _ introspection.Introspectable = (*Session)(nil)
var _ introspection.Component = (*Session)(nil)
