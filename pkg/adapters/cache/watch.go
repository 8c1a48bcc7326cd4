package cache

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/grove/pkg/core"
)

// Watch reports writes to cache keys, including those made by other processes.
// The channel is closed when ctx is cancelled or the watcher fails.
func (f *File) Watch(ctx context.Context) (<-chan core.Event, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(f.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", f.Path, err)
	}

	events := make(chan core.Event)
	f.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer f.setWatcherActive(false)
		defer watcher.Close()
		return f.watchLoop(ctx, watcher, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		f.config.Logger.Error("cache watcher stopped", "error", err)
	}))

	return events, nil
}

func (f *File) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, events chan<- core.Event) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if f.config.Logger.Enabled(ctx, slog.LevelDebug) {
				f.config.Logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			e, keep := mapEvent(event)
			if !keep {
				continue
			}
			f.config.Logger.Debug("cache event", "key", e.Key, "type", e.Type)
			select {
			case events <- e:
			case <-ctx.Done():
				return nil
			}

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			f.config.Logger.Error("fsnotify error", "error", wErr)
		}
	}
}

func mapEvent(event fsnotify.Event) (core.Event, bool) {
	key, ok := keyOf(event.Name)
	if !ok {
		return core.Event{}, false
	}
	var eType core.EventType
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		eType = core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		eType = core.EventDelete
	default:
		return core.Event{}, false
	}
	return core.Event{Type: eType, Key: key, Timestamp: time.Now().Unix()}, true
}

var _ core.Watchable = (*File)(nil)
