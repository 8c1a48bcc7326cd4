// Package lifecycle turns cache events into session-level changes on the
// lifecycle event model.
package lifecycle

import (
	"context"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/grove/pkg/core"
)

// ChangeKind names what a cache change affects.
type ChangeKind string

const (
	// ChangeNotes means the note collection was rewritten.
	ChangeNotes ChangeKind = "notes"
	// ChangeConfig means the remote storage config was rewritten.
	ChangeConfig ChangeKind = "config"
)

// Change is a cache change a running session should react to. It satisfies
// lifecycle.Event.
type Change struct {
	Kind    ChangeKind
	Deleted bool
	At      time.Time
}

func (c Change) String() string {
	if c.Deleted {
		return string(c.Kind) + " removed"
	}
	return string(c.Kind) + " changed"
}

// Classify maps a cache event onto a Change. Keys grove does not own are
// dropped.
func Classify(e core.Event) (Change, bool) {
	var kind ChangeKind
	switch e.Key {
	case core.KeyNotes:
		kind = ChangeNotes
	case core.KeyStorageConfig:
		kind = ChangeConfig
	default:
		return Change{}, false
	}
	return Change{Kind: kind, Deleted: e.Type == core.EventDelete, At: time.Unix(e.Timestamp, 0)}, true
}

type changeSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source emitting a Change for every cache
// event on a grove key. The output channel closes when events closes or the
// Start context ends.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &changeSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *changeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				change, keep := Classify(e)
				if !keep {
					continue
				}
				select {
				case s.out <- change:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
