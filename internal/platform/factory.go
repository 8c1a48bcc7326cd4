package platform

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/grove/pkg/core"
	"github.com/aretw0/grove/pkg/snapshot"
	"github.com/aretw0/grove/pkg/storage"
	"github.com/aretw0/grove/pkg/syncer"
)

// Open builds a ready application over the cache at dsn and runs the initial
// load. Load problems are not fatal: they are logged and kept in the sync state.
//
//	app, err := platform.Open(ctx, "~/.cache/grove", platform.WithDebounce(time.Second))
func Open(ctx context.Context, dsn string, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c, err := initCache(dsn, o)
	if err != nil {
		return nil, err
	}

	seed := func() []core.NoteRecord { return core.SeedNotes(o.clock, o.newID) }
	if o.seedSet {
		seed = o.seed
	}
	storageOpts := []storage.Option{storage.WithLogger(o.logger), storage.WithSeed(seed)}
	if o.httpClient != nil {
		storageOpts = append(storageOpts, storage.WithHTTPClient(o.httpClient))
	}
	adapter := storage.New(c, storageOpts...)

	cfg, err := adapter.LoadConfig(ctx)
	if err != nil {
		o.logger.Warn("storage config unreadable, running local-only", "error", err)
		cfg = core.StorageConfig{}
	}

	session := core.NewSession(
		core.WithSessionClock(o.clock),
		core.WithSessionIDGenerator(o.newID),
		core.WithSessionLogger(o.logger),
	)
	scheduler := syncer.New(adapter,
		syncer.WithDebounce(o.debounce),
		syncer.WithLogger(o.logger),
		syncer.WithClock(o.clock),
		syncer.WithConfig(cfg),
		syncer.WithContext(context.WithoutCancel(ctx)),
	)

	result := scheduler.Load(ctx)
	if result.Err != nil {
		o.logger.Warn("initial load degraded", "source", result.Source, "error", result.Err)
	}
	for _, issue := range core.CheckHierarchy(result.Records) {
		o.logger.Warn("hierarchy issue", "id", issue.ID, "kind", issue.Kind)
	}
	session.Reset(result.Records)
	scheduler.Attach(session)

	return &App{
		Session:   session,
		Scheduler: scheduler,
		Storage:   adapter,
		Gateway:   snapshot.NewGateway(session, o.logger),
		Cache:     c,
		Loaded:    result,
		logger:    o.logger,
	}, nil
}
