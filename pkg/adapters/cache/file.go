package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const fileExt = ".json"

// FileConfig holds the configuration for the file cache.
type FileConfig struct {
	Path      string // directory holding one file per key
	MustExist bool   // fail instead of creating a missing directory
	Logger    *slog.Logger
}

// File implements core.Cache as one JSON file per key inside a directory.
// Writes go through a temp file and a rename so readers never see a torn value.
type File struct {
	Path   string
	config FileConfig

	mu            sync.RWMutex
	writes        int
	watcherActive bool
}

// NewFile creates a file-backed cache rooted at config.Path.
func NewFile(config FileConfig) (*File, error) {
	path := strings.TrimSpace(config.Path)
	if path == "" {
		return nil, fmt.Errorf("%w: file cache path is required", errInvalidInput)
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("cache path %s is not a directory", path)
	case errors.Is(err, os.ErrNotExist) && config.MustExist:
		return nil, fmt.Errorf("cache path %s does not exist", path)
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		config.Logger.Debug("cache directory created", "path", path)
	case err != nil:
		return nil, fmt.Errorf("failed to stat cache path: %w", err)
	}
	config.Path = path
	return &File{Path: path, config: config}, nil
}

// Get reads the file stored for key.
func (f *File) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	name, err := f.filename(key)
	if err != nil {
		return nil, false, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

// Put replaces the file stored for key.
func (f *File) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := f.filename(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := commitKey(key, name, value, 0o644); err != nil {
		return err
	}
	f.writes++
	f.config.Logger.Debug("cache key written", "key", key, "bytes", len(value))
	return nil
}

// Close is a no-op; the file cache holds no handles between calls.
func (f *File) Close() error {
	return nil
}

func (f *File) filename(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: invalid cache key %q", errInvalidInput, key)
	}
	return filepath.Join(f.Path, key+fileExt), nil
}

// keyOf maps a file name inside the cache directory back to its key.
func keyOf(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, TempFilePrefix) || !strings.HasSuffix(base, fileExt) {
		return "", false
	}
	return strings.TrimSuffix(base, fileExt), true
}

func (f *File) setWatcherActive(active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watcherActive = active
}

func readDirKeys(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, entry := range entries {
		if _, ok := keyOf(entry.Name()); ok && !entry.IsDir() {
			n++
		}
	}
	return n, nil
}
