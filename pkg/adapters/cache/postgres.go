package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

const (
	postgresTableName        = "grove_cache"
	postgresOperationTimeout = 5 * time.Second
)

type sqlOpenFunc func(driverName, dsn string) (*sql.DB, error)

// Postgres implements core.Cache as a key/value table. The connection and the
// table are created lazily on first use; a failed setup is retried by the
// next call.
type Postgres struct {
	dsn       string
	tableName string
	openDB    sqlOpenFunc
	logger    *slog.Logger

	mu sync.Mutex
	db *sql.DB
}

// NewPostgres creates a cache bound to dsn. No connection is made until the first call.
func NewPostgres(dsn string, logger *slog.Logger) (*Postgres, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", errInvalidInput)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Postgres{
		dsn:       dsn,
		tableName: postgresTableName,
		openDB:    sql.Open,
		logger:    logger,
	}, nil
}

// Get returns the value stored under key.
func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	db, err := p.ensureReady(ctx)
	if err != nil {
		return nil, false, err
	}
	ctx, cancel := context.WithTimeout(ctx, postgresOperationTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT value FROM %s WHERE cache_key = $1", postgresQuoteIdentifier(p.tableName))
	var payload string
	err = db.QueryRowContext(ctx, query, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(payload), true, nil
}

// Put upserts the value stored under key.
func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	db, err := p.ensureReady(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, postgresOperationTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO %s (cache_key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (cache_key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, postgresQuoteIdentifier(p.tableName))
	if _, err := db.ExecContext(ctx, query, key, string(value)); err != nil {
		return err
	}
	p.logger.Debug("cache key written", "key", key, "bytes", len(value))
	return nil
}

// Close closes the connection pool if one was opened.
func (p *Postgres) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

// ensureReady opens the pool and creates the table once. Until that succeeds
// every call tries again, so a database that was briefly down is picked up.
func (p *Postgres) ensureReady(ctx context.Context) (*sql.DB, error) {
	if p == nil {
		return nil, errInvalidInput
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db != nil {
		return p.db, nil
	}

	db, err := p.openDB("postgres", p.dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres cache: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, postgresOperationTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			cache_key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, postgresQuoteIdentifier(p.tableName))
	if _, err := db.ExecContext(ctx, query); err != nil {
		_ = db.Close()
		p.logger.Warn("postgres cache setup failed", "error", err)
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	p.db = db
	return db, nil
}

func postgresQuoteIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "\"\""
	}
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}
