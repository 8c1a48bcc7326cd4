package syncer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/grove/pkg/adapters/cache"
	"github.com/aretw0/grove/pkg/adapters/remote"
	"github.com/aretw0/grove/pkg/core"
	"github.com/aretw0/grove/pkg/storage"
	"github.com/aretw0/grove/pkg/syncer"
)

const window = 20 * time.Millisecond

var remoteCfg = core.StorageConfig{Endpoint: "https://notes.example.com", Dialect: core.DialectPlain}

// fakeBackend records every write and fails remote saves while failRemote is
// set. A non-nil gate holds every remote save until it is closed; started
// receives one value per remote save that began.
type fakeBackend struct {
	mu         sync.Mutex
	local      [][]core.NoteRecord
	remote     [][]core.NoteRecord
	failRemote error
	failLocal  error
	load       storage.LoadResult
	gate       chan struct{}
	started    chan struct{}
}

func (f *fakeBackend) Load(context.Context, core.StorageConfig) storage.LoadResult {
	return f.load
}

func (f *fakeBackend) SaveLocal(_ context.Context, records []core.NoteRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLocal != nil {
		return f.failLocal
	}
	f.local = append(f.local, records)
	return nil
}

func (f *fakeBackend) SaveRemote(_ context.Context, records []core.NoteRecord, _ core.StorageConfig) error {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRemote != nil {
		return f.failRemote
	}
	f.remote = append(f.remote, records)
	return nil
}

func (f *fakeBackend) counts() (local, remote int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.local), len(f.remote)
}

func (f *fakeBackend) lastRemote() []core.NoteRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.remote) == 0 {
		return nil
	}
	return f.remote[len(f.remote)-1]
}

func (f *fakeBackend) lastLocal() []core.NoteRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.local) == 0 {
		return nil
	}
	return f.local[len(f.local)-1]
}

func (f *fakeBackend) remoteSizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sizes := make([]int, 0, len(f.remote))
	for _, r := range f.remote {
		sizes = append(sizes, len(r))
	}
	return sizes
}

func records(ids ...string) []core.NoteRecord {
	out := make([]core.NoteRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.NoteRecord{ID: id})
	}
	return out
}

func TestNotifyLocalOnlyStaysIdle(t *testing.T) {
	backend := &fakeBackend{}
	s := syncer.New(backend, syncer.WithDebounce(window))
	defer s.Close()

	s.Notify(records("a"))
	s.Notify(records("a", "b"))
	time.Sleep(3 * window)

	local, remote := backend.counts()
	assert.Equal(t, 2, local, "local cache is written on every change")
	assert.Zero(t, remote)
	assert.Equal(t, syncer.StatusIdle, s.Snapshot().Status)
}

func TestDebounceCollapsesBursts(t *testing.T) {
	backend := &fakeBackend{}
	s := syncer.New(backend, syncer.WithDebounce(window), syncer.WithConfig(remoteCfg))
	defer s.Close()

	var mu sync.Mutex
	var statuses []syncer.Status
	s.OnStatus(func(state syncer.SyncState) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, state.Status)
	})

	s.Notify(records("a"))
	s.Notify(records("a", "b"))
	s.Notify(records("a", "b", "c"))
	assert.True(t, s.Snapshot().Pending)

	require.Eventually(t, func() bool {
		return s.Snapshot().Status == syncer.StatusSaved
	}, time.Second, window/4)
	require.NoError(t, s.Flush(context.Background()))

	_, remote := backend.counts()
	assert.Equal(t, 1, remote, "only the final state of a burst is written remotely")
	assert.Len(t, backend.lastRemote(), 3)
	assert.False(t, s.Snapshot().Pending)
	assert.False(t, s.Snapshot().LastSyncedAt.IsZero())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []syncer.Status{syncer.StatusSyncing, syncer.StatusSaved}, statuses)
}

func TestRemoteFailureSurfaces(t *testing.T) {
	backend := &fakeBackend{failRemote: &core.RemoteError{Op: "save", StatusCode: 500, Kind: core.ErrRemoteRejected}}
	s := syncer.New(backend, syncer.WithDebounce(window), syncer.WithConfig(remoteCfg))
	defer s.Close()

	s.Notify(records("a"))
	err := s.Flush(context.Background())
	require.ErrorIs(t, err, core.ErrRemoteRejected)

	state := s.Snapshot()
	assert.Equal(t, syncer.StatusError, state.Status)
	assert.Contains(t, state.Error, "500")

	local, _ := backend.counts()
	assert.Equal(t, 1, local, "only notify writes the local cache")

	// No retry on a timer: nothing happens until the next change.
	time.Sleep(3 * window)
	_, remote := backend.counts()
	assert.Zero(t, remote)

	backend.mu.Lock()
	backend.failRemote = nil
	backend.mu.Unlock()
	s.Notify(records("a", "b"))
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, syncer.StatusSaved, s.Snapshot().Status)
	assert.Empty(t, s.Snapshot().Error)
}

func TestLocalFailureSetsError(t *testing.T) {
	backend := &fakeBackend{failLocal: errors.New("disk full")}
	s := syncer.New(backend)
	defer s.Close()

	s.Notify(records("a"))
	state := s.Snapshot()
	assert.Equal(t, syncer.StatusError, state.Status)
	assert.Equal(t, "disk full", state.Error)
}

func TestFlushWithoutPendingIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	s := syncer.New(backend, syncer.WithConfig(remoteCfg))
	require.NoError(t, s.Flush(context.Background()))
	_, remote := backend.counts()
	assert.Zero(t, remote)
}

func TestSetConfigClearCancelsPending(t *testing.T) {
	backend := &fakeBackend{}
	s := syncer.New(backend, syncer.WithDebounce(window), syncer.WithConfig(remoteCfg))
	defer s.Close()

	s.Notify(records("a"))
	s.SetConfig(core.StorageConfig{})
	time.Sleep(3 * window)

	_, remote := backend.counts()
	assert.Zero(t, remote)
	state := s.Snapshot()
	assert.Equal(t, syncer.StatusIdle, state.Status)
	assert.False(t, state.RemoteEnabled)
}

func TestCloseDropsTimer(t *testing.T) {
	backend := &fakeBackend{}
	s := syncer.New(backend, syncer.WithDebounce(window), syncer.WithConfig(remoteCfg))

	s.Notify(records("a"))
	require.NoError(t, s.Close())
	time.Sleep(3 * window)

	_, remote := backend.counts()
	assert.Zero(t, remote)
}

func TestLoadRecordsLoadError(t *testing.T) {
	backend := &fakeBackend{load: storage.LoadResult{
		Records: records("a"),
		Source:  storage.SourceLocal,
		Err:     &core.RemoteError{Op: "load", Kind: core.ErrRemoteUnreachable},
	}}
	s := syncer.New(backend, syncer.WithConfig(remoteCfg))

	result := s.Load(context.Background())
	assert.Len(t, result.Records, 1)
	assert.Contains(t, s.Snapshot().LoadError, "unreachable")
}

func TestSessionIntegration(t *testing.T) {
	ctx := context.Background()
	adapter := storage.New(cache.NewMemory())
	s := syncer.New(adapter, syncer.WithDebounce(window))
	session := core.NewSession()
	s.Attach(session)

	a, err := session.Create("")
	require.NoError(t, err)
	_, err = session.Create(a)
	require.NoError(t, err)

	local, found, err := adapter.LoadLocal(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, session.Records(), local)
}

func TestSlowRemoteNeverRollsBackLocal(t *testing.T) {
	backend := &fakeBackend{gate: make(chan struct{}), started: make(chan struct{}, 8)}
	s := syncer.New(backend, syncer.WithDebounce(window), syncer.WithConfig(remoteCfg))
	defer s.Close()

	s.Notify(records("a"))
	select {
	case <-backend.started:
	case <-time.After(time.Second):
		t.Fatal("first remote write did not start")
	}

	// Armed and fired while the first write still holds the remote.
	s.Notify(records("a", "b"))
	require.Eventually(t, func() bool {
		return !s.Snapshot().Pending
	}, time.Second, window/4)

	s.Notify(records("a", "b", "c"))
	assert.Len(t, backend.lastLocal(), 3, "local cache holds the latest change")

	close(backend.gate)
	require.NoError(t, s.Flush(context.Background()))

	assert.Len(t, backend.lastLocal(), 3, "queued remote writes leave the local cache alone")
	local, _ := backend.counts()
	assert.Equal(t, 3, local)
	assert.Equal(t, []int{1, 2, 3}, backend.remoteSizes(), "remote writes run in change order")
	assert.Equal(t, syncer.StatusSaved, s.Snapshot().Status)
}

func TestCloseDuringSlowRemoteKeepsLatestLocal(t *testing.T) {
	ctx := context.Background()
	gate := make(chan struct{})
	started := make(chan struct{}, 8)
	c := cache.NewMemory()
	adapter := storage.New(c, storage.WithRemoteFactory(func(core.StorageConfig) (remote.Client, error) {
		return &blockingRemote{gate: gate, started: started}, nil
	}))
	s := syncer.New(adapter, syncer.WithDebounce(window), syncer.WithConfig(remoteCfg))

	s.Notify(records("v3"))
	<-started
	s.Notify(records("v4"))
	require.Eventually(t, func() bool {
		return !s.Snapshot().Pending
	}, time.Second, window/4)
	s.Notify(records("v5"))
	require.NoError(t, s.Close())
	close(gate)
	require.NoError(t, s.Flush(ctx))

	local, found, err := adapter.LoadLocal(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, records("v5"), local)
}

// blockingRemote holds every save until gate is closed.
type blockingRemote struct {
	gate    chan struct{}
	started chan struct{}
}

func (r *blockingRemote) Load(context.Context) ([]core.NoteRecord, error) { return nil, nil }

func (r *blockingRemote) Save(ctx context.Context, _ []core.NoteRecord) error {
	r.started <- struct{}{}
	select {
	case <-r.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *blockingRemote) Dialect() core.Dialect { return core.DialectPlain }
