package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketCache = []byte("grove")

// BoltConfig holds the configuration for the bbolt cache.
type BoltConfig struct {
	Path    string
	Timeout time.Duration // lock acquisition timeout; defaults to 2s
	Logger  *slog.Logger
}

// Bolt implements core.Cache on a single bbolt database file.
type Bolt struct {
	Path   string
	db     *bolt.DB
	logger *slog.Logger
}

// NewBolt opens (or creates) the database at config.Path.
func NewBolt(config BoltConfig) (*Bolt, error) {
	path := strings.TrimSpace(config.Path)
	if path == "" {
		return nil, fmt.Errorf("%w: bolt cache path is required", errInvalidInput)
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: config.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt cache: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCache)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Bolt{Path: path, db: db, logger: logger}, nil
}

// Get returns the value stored under key.
func (b *Bolt) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var value []byte
	var found bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketCache)
		if bucket == nil {
			return nil
		}
		if data := bucket.Get([]byte(key)); data != nil {
			// Values are only valid for the life of the transaction.
			value = append([]byte{}, data...)
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

// Put replaces the value stored under key.
func (b *Bolt) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketCache)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), value)
	})
	if err != nil {
		return err
	}
	b.logger.Debug("cache key written", "key", key, "bytes", len(value))
	return nil
}

// Close releases the database file lock.
func (b *Bolt) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *Bolt) keys() int {
	n := 0
	_ = b.db.View(func(tx *bolt.Tx) error {
		if bucket := tx.Bucket(bucketCache); bucket != nil {
			n = bucket.Stats().KeyN
		}
		return nil
	})
	return n
}
