// Package syncer debounces collection changes into persistence writes and
// tracks the resulting sync status.
package syncer

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/grove/pkg/core"
	"github.com/aretw0/grove/pkg/storage"
)

// DefaultDebounce is the quiet window before a remote write.
const DefaultDebounce = time.Second

// Backend is the persistence the scheduler drives. *storage.Adapter implements it.
type Backend interface {
	Load(ctx context.Context, cfg core.StorageConfig) storage.LoadResult
	SaveLocal(ctx context.Context, records []core.NoteRecord) error
	SaveRemote(ctx context.Context, records []core.NoteRecord, cfg core.StorageConfig) error
}

// StatusFunc observes status changes.
type StatusFunc func(SyncState)

// Scheduler writes every change to the local cache at once and, when a remote
// is configured, collapses bursts of changes into one trailing write per quiet
// window. Only the latest collection is ever written remotely. The local
// cache is written only from Notify, so it always holds the latest change.
type Scheduler struct {
	backend  Backend
	debounce time.Duration
	clock    core.Clock
	logger   *slog.Logger
	ctx      context.Context

	mu        sync.Mutex
	cfg       core.StorageConfig
	state     SyncState
	pending   []core.NoteRecord
	hasChange bool
	timer     *time.Timer
	gen       uint64
	closed    bool
	listeners []StatusFunc
	inflight  int
	drained   chan struct{}
	tail      chan struct{} // closed when the last claimed write finishes
}

// job is a claimed remote write. It runs after prev is closed and closes done.
type job struct {
	records []core.NoteRecord
	cfg     core.StorageConfig
	prev    chan struct{}
	done    chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDebounce sets the quiet window. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source for LastSyncedAt.
func WithClock(clock core.Clock) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithConfig sets the initial storage config.
func WithConfig(cfg core.StorageConfig) Option {
	return func(s *Scheduler) {
		s.cfg = cfg
	}
}

// WithContext sets the context writes armed by the timer run under.
func WithContext(ctx context.Context) Option {
	return func(s *Scheduler) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

// New creates a scheduler over backend.
func New(backend Backend, opts ...Option) *Scheduler {
	s := &Scheduler{
		backend:  backend,
		debounce: DefaultDebounce,
		clock:    time.Now,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		ctx:      context.Background(),
		drained:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = SyncState{Status: StatusIdle, RemoteEnabled: s.cfg.RemoteEnabled()}
	return s
}

// Attach subscribes the scheduler to every change of session.
func (s *Scheduler) Attach(session *core.Session) {
	session.OnChange(s.Notify)
}

// OnStatus registers a listener called after every status change.
func (s *Scheduler) OnStatus(fn StatusFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns the current state.
func (s *Scheduler) Snapshot() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state
	state.Pending = s.hasChange
	return state
}

// Config returns the storage config in use.
func (s *Scheduler) Config() core.StorageConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// SetConfig switches the storage config. Clearing the endpoint cancels a
// pending remote write and returns to idle.
func (s *Scheduler) SetConfig(cfg core.StorageConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.state.RemoteEnabled = cfg.RemoteEnabled()
	if !cfg.RemoteEnabled() {
		s.cancelLocked()
		s.state.Status = StatusIdle
		s.state.Error = ""
	}
	state, listeners := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("storage config changed", "endpoint", cfg.Redacted().Endpoint, "dialect", cfg.Dialect)
	emit(listeners, state)
}

// Load runs the one-shot initial load with the current config. A non-fatal
// load problem is kept in LoadError.
func (s *Scheduler) Load(ctx context.Context) storage.LoadResult {
	cfg := s.Config()
	result := s.backend.Load(ctx, cfg)

	s.mu.Lock()
	s.state.LoadError = ""
	if result.Err != nil {
		s.state.LoadError = result.Err.Error()
	}
	if result.Source == storage.SourceRemote {
		s.state.LastSyncedAt = s.clock()
	}
	state, listeners := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("notes loaded", "source", result.Source, "notes", len(result.Records))
	emit(listeners, state)
	return result
}

// Notify records a collection change. The local cache is written at once; a
// remote write is armed for the end of the debounce window, replacing any
// write armed earlier.
func (s *Scheduler) Notify(records []core.NoteRecord) {
	if err := s.backend.SaveLocal(s.ctx, records); err != nil {
		s.logger.Error("local cache write failed", "error", err)
		s.mu.Lock()
		s.state.Status = StatusError
		s.state.Error = err.Error()
		state, listeners := s.snapshotLocked()
		s.mu.Unlock()
		emit(listeners, state)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.cfg.RemoteEnabled() {
		return
	}
	s.cancelLocked()
	s.pending = core.CloneRecords(records)
	s.hasChange = true
	gen := s.gen
	s.timer = time.AfterFunc(s.debounce, func() { s.fire(gen) })
}

// Flush starts a pending write immediately and waits for every in-flight
// write to finish. It returns the error of the write it started, if any.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	j, ok := s.takeLocked()
	s.mu.Unlock()

	var err error
	if ok {
		err = s.write(ctx, j)
	}
	if waitErr := s.wait(ctx); waitErr != nil {
		return waitErr
	}
	return err
}

// Close stops the timer. A pending remote write is dropped while the local
// cache keeps the collection from the latest Notify. Call Flush first to
// push it to the remote.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cancelLocked()
	return nil
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}
	j, ok := s.takeLocked()
	s.mu.Unlock()
	if ok {
		_ = s.write(s.ctx, j)
	}
}

// takeLocked claims the pending write, queues it behind the previously
// claimed one and counts it as in flight.
func (s *Scheduler) takeLocked() (job, bool) {
	if !s.hasChange {
		return job{}, false
	}
	j := job{records: s.pending, cfg: s.cfg, prev: s.tail, done: make(chan struct{})}
	s.tail = j.done
	s.cancelLocked()
	s.inflight++
	return j, true
}

// cancelLocked drops the armed timer and the pending payload.
func (s *Scheduler) cancelLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.hasChange = false
}

// write runs j once every earlier claimed write has finished. Writes reach the
// remote in the order they were claimed, so the latest collection lands last.
func (s *Scheduler) write(ctx context.Context, j job) error {
	defer s.done()
	defer close(j.done)
	if j.prev != nil {
		<-j.prev
	}

	records, cfg := j.records, j.cfg
	s.setStatus(StatusSyncing, nil)
	err := s.backend.SaveRemote(ctx, records, cfg)
	if err != nil {
		s.logger.Warn("sync failed", "status", StatusError, "endpoint", cfg.Endpoint, "error", err)
		s.setStatus(StatusError, err)
		return err
	}
	s.logger.Debug("sync saved", "status", StatusSaved, "notes", len(records))
	s.setStatus(StatusSaved, nil)
	return nil
}

func (s *Scheduler) setStatus(status Status, err error) {
	s.mu.Lock()
	s.state.Status = status
	switch status {
	case StatusSaved:
		s.state.Error = ""
		s.state.LastSyncedAt = s.clock()
		s.state.Writes++
	case StatusError:
		s.state.Error = err.Error()
	}
	state, listeners := s.snapshotLocked()
	s.mu.Unlock()
	emit(listeners, state)
}

func (s *Scheduler) done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if s.inflight == 0 {
		close(s.drained)
		s.drained = make(chan struct{})
	}
}

func (s *Scheduler) wait(ctx context.Context) error {
	s.mu.Lock()
	if s.inflight == 0 {
		s.mu.Unlock()
		return nil
	}
	drained := s.drained
	s.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) snapshotLocked() (SyncState, []StatusFunc) {
	state := s.state
	state.Pending = s.hasChange
	return state, append([]StatusFunc(nil), s.listeners...)
}

func emit(listeners []StatusFunc, state SyncState) {
	for _, fn := range listeners {
		fn(state)
	}
}
