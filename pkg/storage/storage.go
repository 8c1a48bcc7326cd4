// Package storage persists the note collection to the local cache and, when
// configured, to a remote store. The local write always happens first so a
// remote failure never loses data.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/grove/pkg/adapters/remote"
	"github.com/aretw0/grove/pkg/core"
)

// Source tells where a loaded collection came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	SourceSeed   Source = "seed"
)

// LoadResult is the outcome of Load. Err carries a non-fatal problem met on
// the way (remote failure, corrupt cache); Records is always usable.
type LoadResult struct {
	Records []core.NoteRecord
	Source  Source
	Err     error
}

// RemoteFactory builds the remote client for a config. Tests swap it to
// inject failures.
type RemoteFactory func(cfg core.StorageConfig) (remote.Client, error)

// Adapter is the persistence backend adapter.
type Adapter struct {
	cache     core.Cache
	newRemote RemoteFactory
	seed      func() []core.NoteRecord
	logger    *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithHTTPClient sets the HTTP client used by the remote dialects.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Adapter) {
		a.newRemote = func(cfg core.StorageConfig) (remote.Client, error) {
			return remote.New(cfg, client, a.logger)
		}
	}
}

// WithRemoteFactory replaces how remote clients are built.
func WithRemoteFactory(factory RemoteFactory) Option {
	return func(a *Adapter) {
		if factory != nil {
			a.newRemote = factory
		}
	}
}

// WithSeed sets the collection used when nothing has been cached yet.
// A nil function means an empty collection.
func WithSeed(seed func() []core.NoteRecord) Option {
	return func(a *Adapter) {
		a.seed = seed
	}
}

// New creates an adapter over cache.
func New(cache core.Cache, opts ...Option) *Adapter {
	a := &Adapter{
		cache:  cache,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		seed: func() []core.NoteRecord {
			return core.SeedNotes(nil, nil)
		},
	}
	a.newRemote = func(cfg core.StorageConfig) (remote.Client, error) {
		return remote.New(cfg, nil, a.logger)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Cache returns the local cache.
func (a *Adapter) Cache() core.Cache {
	return a.cache
}

// Load returns the collection to start a session with. A configured remote is
// tried first and, on success, refreshes the local cache. Any remote failure
// falls back to the local cache with Err set. A missing or corrupt local cache
// falls back to the seed collection.
func (a *Adapter) Load(ctx context.Context, cfg core.StorageConfig) LoadResult {
	var loadErr error
	if cfg.RemoteEnabled() {
		records, err := a.loadRemote(ctx, cfg)
		if err == nil {
			if err := a.SaveLocal(ctx, records); err != nil {
				a.logger.Warn("local refresh after remote load failed", "error", err)
			}
			return LoadResult{Records: records, Source: SourceRemote}
		}
		a.logger.Warn("remote load failed, using local cache", "endpoint", cfg.Endpoint, "error", err)
		loadErr = err
	}

	records, found, err := a.LoadLocal(ctx)
	switch {
	case err != nil:
		a.logger.Warn("local cache unreadable, using seed", "error", err)
		return LoadResult{Records: a.seedRecords(), Source: SourceSeed, Err: errors.Join(loadErr, err)}
	case !found:
		return LoadResult{Records: a.seedRecords(), Source: SourceSeed, Err: loadErr}
	default:
		return LoadResult{Records: records, Source: SourceLocal, Err: loadErr}
	}
}

func (a *Adapter) loadRemote(ctx context.Context, cfg core.StorageConfig) ([]core.NoteRecord, error) {
	client, err := a.newRemote(cfg)
	if err != nil {
		return nil, &core.RemoteError{Op: "load", Kind: core.ErrRemoteUnreachable, Err: err}
	}
	return client.Load(ctx)
}

// LoadLocal reads the cached collection. found is false when the cache has
// never been written. Undecodable data is reported as core.ErrLocalCorrupt.
func (a *Adapter) LoadLocal(ctx context.Context) (records []core.NoteRecord, found bool, err error) {
	data, found, err := a.cache.Get(ctx, core.KeyNotes)
	if err != nil || !found {
		return nil, found, err
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, true, fmt.Errorf("%w: %v", core.ErrLocalCorrupt, err)
	}
	if records == nil {
		return nil, true, fmt.Errorf("%w: notes key holds null", core.ErrLocalCorrupt)
	}
	return records, true, nil
}

// Save writes records to the local cache and then, when cfg has an endpoint,
// to the remote. A local failure stops before the remote is attempted.
func (a *Adapter) Save(ctx context.Context, records []core.NoteRecord, cfg core.StorageConfig) error {
	if err := a.SaveLocal(ctx, records); err != nil {
		return err
	}
	return a.SaveRemote(ctx, records, cfg)
}

// SaveRemote writes records to the remote only. It does nothing when cfg has
// no endpoint. The local cache is left alone, so a slow remote write can
// never replace newer local data.
func (a *Adapter) SaveRemote(ctx context.Context, records []core.NoteRecord, cfg core.StorageConfig) error {
	if !cfg.RemoteEnabled() {
		return nil
	}
	client, err := a.newRemote(cfg)
	if err != nil {
		return &core.RemoteError{Op: "save", Kind: core.ErrRemoteUnreachable, Err: err}
	}
	if err := client.Save(ctx, records); err != nil {
		return err
	}
	a.logger.Debug("remote saved", "endpoint", cfg.Endpoint, "dialect", client.Dialect(), "notes", len(records))
	return nil
}

// SaveLocal writes records to the local cache only.
func (a *Adapter) SaveLocal(ctx context.Context, records []core.NoteRecord) error {
	if records == nil {
		records = []core.NoteRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	if err := a.cache.Put(ctx, core.KeyNotes, data); err != nil {
		return fmt.Errorf("write local cache: %w", err)
	}
	return nil
}

// LoadConfig reads the stored StorageConfig. A config saved without a dialect
// gets one from remote.DetectDialect and is written back.
func (a *Adapter) LoadConfig(ctx context.Context) (core.StorageConfig, error) {
	var cfg core.StorageConfig
	data, found, err := a.cache.Get(ctx, core.KeyStorageConfig)
	if err != nil || !found {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return core.StorageConfig{}, fmt.Errorf("%w: storage config: %v", core.ErrLocalCorrupt, err)
	}
	if cfg.RemoteEnabled() && cfg.Dialect == "" {
		cfg.Dialect = remote.DetectDialect(cfg.Endpoint)
		a.logger.Info("storage config migrated", "dialect", cfg.Dialect)
		if err := a.SaveConfig(ctx, cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// SaveConfig stores cfg. An empty endpoint switches to local-only mode.
func (a *Adapter) SaveConfig(ctx context.Context, cfg core.StorageConfig) error {
	if cfg.Dialect != "" && !cfg.Dialect.Valid() {
		return fmt.Errorf("unknown remote dialect %q", cfg.Dialect)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return a.cache.Put(ctx, core.KeyStorageConfig, data)
}

func (a *Adapter) seedRecords() []core.NoteRecord {
	if a.seed == nil {
		return []core.NoteRecord{}
	}
	return a.seed()
}
