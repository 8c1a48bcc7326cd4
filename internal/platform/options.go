package platform

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/grove/pkg/core"
)

// options holds the internal configuration for a grove application.
type options struct {
	cache      core.Cache
	logger     *slog.Logger
	httpClient *http.Client
	debounce   time.Duration
	clock      core.Clock
	newID      core.IDGenerator
	seed       func() []core.NoteRecord
	seedSet    bool
	config     map[string]interface{}
}

// Option defines a functional option for configuring grove.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		clock:  time.Now,
		newID:  core.NewID,
		config: make(map[string]interface{}),
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCache injects a ready cache (e.g. memory, a test double). The DSN passed
// to Open is then ignored.
func WithCache(cache core.Cache) Option {
	return func(o *options) {
		o.cache = cache
	}
}

// WithHTTPClient sets the client used for the remote store.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithDebounce sets the quiet window before a remote write. Zero means the default (1s).
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithClock sets the time source for note timestamps and sync status.
func WithClock(clock core.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithIDGenerator sets the generator for new note ids.
func WithIDGenerator(gen core.IDGenerator) Option {
	return func(o *options) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithSeed sets the collection used when the cache is empty. nil means start empty.
func WithSeed(seed func() []core.NoteRecord) Option {
	return func(o *options) {
		o.seed = seed
		o.seedSet = true
	}
}

// WithForceTemp forces the cache into a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist requires a file cache directory to exist already.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true) path-based caches are re-rooted into a temporary directory.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}
