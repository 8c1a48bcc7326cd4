package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/introspection"

	"github.com/aretw0/grove/pkg/adapters/remote"
	"github.com/aretw0/grove/pkg/core"
	"github.com/aretw0/grove/pkg/snapshot"
	"github.com/aretw0/grove/pkg/storage"
	"github.com/aretw0/grove/pkg/syncer"
)

// App bundles the components of one editing session.
type App struct {
	Session   *core.Session
	Scheduler *syncer.Scheduler
	Storage   *storage.Adapter
	Gateway   *snapshot.Gateway
	Cache     core.Cache
	Loaded    storage.LoadResult

	logger *slog.Logger
}

// Remote returns the storage config in use.
func (a *App) Remote() core.StorageConfig {
	return a.Scheduler.Config()
}

// SetRemote validates and stores cfg, then switches the scheduler to it. An
// empty endpoint returns to local-only mode. A missing dialect is detected
// from the endpoint.
func (a *App) SetRemote(ctx context.Context, cfg core.StorageConfig) error {
	if cfg.RemoteEnabled() {
		if cfg.Dialect == "" {
			cfg.Dialect = remote.DetectDialect(cfg.Endpoint)
		}
		if _, err := remote.New(cfg, nil, nil); err != nil {
			return err
		}
	} else {
		cfg = core.StorageConfig{}
	}
	if err := a.Storage.SaveConfig(ctx, cfg); err != nil {
		return fmt.Errorf("save storage config: %w", err)
	}
	a.Scheduler.SetConfig(cfg)
	a.logger.Info("remote configured", "endpoint", cfg.Endpoint, "dialect", cfg.Dialect)
	return nil
}

// Sync writes the current collection to every backend now.
func (a *App) Sync(ctx context.Context) error {
	a.Scheduler.Notify(a.Session.Records())
	return a.Scheduler.Flush(ctx)
}

// Reload replaces the session with the local cache contents without
// scheduling a write. Used after another process changed the cache.
func (a *App) Reload(ctx context.Context) error {
	records, found, err := a.Storage.LoadLocal(ctx)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	a.Session.Reset(records)
	return nil
}

// Watch reports cache changes when the cache supports it.
func (a *App) Watch(ctx context.Context) (<-chan core.Event, error) {
	w, ok := a.Cache.(core.Watchable)
	if !ok {
		return nil, fmt.Errorf("cache %T does not support watching", a.Cache)
	}
	return w.Watch(ctx)
}

// Close flushes a pending remote write and releases the cache.
func (a *App) Close(ctx context.Context) error {
	flushErr := a.Scheduler.Flush(ctx)
	_ = a.Scheduler.Close()
	return errors.Join(flushErr, a.Cache.Close())
}

// AppState is the combined observable state of an App.
type AppState struct {
	Session core.SessionState  `json:"session"`
	Sync    syncer.SyncState   `json:"sync"`
	Remote  core.StorageConfig `json:"remote"`
	Source  storage.Source     `json:"loaded_from"`
	Cache   any                `json:"cache,omitempty"`
}

// State implements introspection.Introspectable.
func (a *App) State() any {
	state := AppState{
		Session: a.Session.State().(core.SessionState),
		Sync:    a.Scheduler.Snapshot(),
		Remote:  a.Remote().Redacted(),
		Source:  a.Loaded.Source,
	}
	if intro, ok := a.Cache.(introspection.Introspectable); ok {
		state.Cache = intro.State()
	}
	return state
}

// ComponentType implements introspection.Component.
func (a *App) ComponentType() string {
	return "app"
}

var _ introspection.Introspectable = (*App)(nil)
