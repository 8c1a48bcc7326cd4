package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/aretw0/grove/pkg/core"
)

var errInvalidInput = errors.New("invalid input")

// Factory builds a cache from a DSN.
type Factory func(dsn string, logger *slog.Logger) (core.Cache, error)

var registry = struct {
	mu        sync.RWMutex
	factories map[string]Factory
}{factories: map[string]Factory{}}

// RegisterFactory makes a cache variant available under scheme. Registered
// factories take precedence over the built-in schemes.
func RegisterFactory(scheme string, factory Factory) {
	scheme = normalizeScheme(scheme)
	if scheme == "" || factory == nil {
		return
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.factories[scheme] = factory
}

func lookupFactory(scheme string) (Factory, bool) {
	scheme = normalizeScheme(scheme)
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	factory, ok := registry.factories[scheme]
	return factory, ok
}

func normalizeScheme(scheme string) string {
	return strings.ToLower(strings.TrimSpace(scheme))
}

// BuildFromDSN selects a cache variant by the DSN scheme:
//
//	/path/to/dir, file:///path/to/dir  -> File
//	bolt:///path/to/grove.db            -> Bolt
//	postgres://user@host/db             -> Postgres
//	memory://                           -> Memory
func BuildFromDSN(dsn string, logger *slog.Logger) (core.Cache, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("%w: empty dsn", core.ErrInvalidDSN)
	}
	_, rest, hasScheme := strings.Cut(dsn, "://")
	if !hasScheme {
		return NewFile(FileConfig{Path: dsn, Logger: logger})
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidDSN, err)
	}
	scheme := normalizeScheme(parsed.Scheme)
	if factory, ok := lookupFactory(scheme); ok {
		return factory(dsn, logger)
	}
	switch scheme {
	case "file":
		path, err := dsnPath(parsed, rest)
		if err != nil {
			return nil, err
		}
		return NewFile(FileConfig{Path: path, Logger: logger})
	case "bolt", "bbolt":
		path, err := dsnPath(parsed, rest)
		if err != nil {
			return nil, err
		}
		return NewBolt(BoltConfig{Path: path, Logger: logger})
	case "postgres", "postgresql":
		return NewPostgres(dsn, logger)
	case "memory", "mem", "inmem":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported cache scheme %q", core.ErrInvalidDSN, scheme)
	}
}

func dsnPath(parsed *url.URL, rest string) (string, error) {
	path := strings.TrimSpace(parsed.Path)
	if parsed.Host != "" {
		// Relative form: bolt://data/grove.db
		path = parsed.Host + path
	}
	if path == "" {
		path = strings.TrimSpace(rest)
	}
	if path == "" {
		return "", fmt.Errorf("%w: missing path", core.ErrInvalidDSN)
	}
	return path, nil
}
