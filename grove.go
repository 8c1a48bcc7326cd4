package grove

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/grove/internal/platform"
	"github.com/aretw0/grove/pkg/core"
)

// --- Types ---

// App bundles the components of one editing session.
type App = platform.App

// AppState is the observable state reported by App.State.
type AppState = platform.AppState

// NoteRecord is the persisted unit of the hierarchy.
type NoteRecord = core.NoteRecord

// NoteTreeItem is a note placed in the materialized tree.
type NoteTreeItem = core.NoteTreeItem

// Patch carries the fields of an update.
type Patch = core.Patch

// StorageConfig binds the remote store.
type StorageConfig = core.StorageConfig

// Dialect names a remote store's conventions.
type Dialect = core.Dialect

const (
	DialectEnvelope = core.DialectEnvelope
	DialectPlain    = core.DialectPlain
)

// --- Configuration ---

// Option defines a functional option for configuring grove.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithCache injects a ready cache instead of building one from the DSN.
func WithCache(cache core.Cache) Option {
	return platform.WithCache(cache)
}

// WithHTTPClient sets the client used for the remote store.
func WithHTTPClient(client *http.Client) Option {
	return platform.WithHTTPClient(client)
}

// WithDebounce sets the quiet window before a remote write.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithClock sets the time source.
func WithClock(clock core.Clock) Option {
	return platform.WithClock(clock)
}

// WithIDGenerator sets the generator for new note ids.
func WithIDGenerator(gen core.IDGenerator) Option {
	return platform.WithIDGenerator(gen)
}

// WithSeed sets the collection used when the cache is empty.
func WithSeed(seed func() []NoteRecord) Option {
	return platform.WithSeed(seed)
}

// WithForceTemp forces the cache into a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist requires a file cache directory to exist already.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithDevSafety controls the `go run`/`go test` cache sandbox.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// Open builds an application over the cache at dsn and loads the notes.
func Open(ctx context.Context, dsn string, opts ...Option) (*App, error) {
	return platform.Open(ctx, dsn, opts...)
}

// Materialize builds the visible tree from a flat collection.
func Materialize(records []NoteRecord) []*NoteTreeItem {
	return core.Materialize(records)
}

// Walk visits items depth-first in display order. Returning false skips the
// item's children.
func Walk(items []*NoteTreeItem, fn func(item *NoteTreeItem) bool) {
	core.Walk(items, fn)
}

// HierarchyIssue describes a record the tree cannot place.
type HierarchyIssue = core.HierarchyIssue

// CheckHierarchy reports orphans, cycles and duplicate ids.
func CheckHierarchy(records []NoteRecord) []HierarchyIssue {
	return core.CheckHierarchy(records)
}
