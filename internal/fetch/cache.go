package fetch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultCacheTTL is how long a fetched document stays fresh. Disclosure
// pages change at most daily, so an hour comfortably covers one session.
const DefaultCacheTTL = 1 * time.Hour

// Cache wraps a Fetcher with a sqlite-backed document store. It is purely a
// transport-level convenience: a cache failure is logged and bypassed, never
// surfaced to an adapter.
type Cache struct {
	db   *sql.DB
	next Fetcher
	ttl  time.Duration
}

// NewCache opens (or creates) the cache database at dbPath and wraps next.
func NewCache(dbPath string, next Fetcher, ttl time.Duration) (*Cache, error) {
	if dbPath == "" {
		return nil, errors.New("cache path is required")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS documents (
		url        TEXT PRIMARY KEY,
		body       BLOB NOT NULL,
		fetched_at TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Cache{db: db, next: next, ttl: ttl}, nil
}

// Get implements Fetcher. Fresh cached documents are served locally; misses
// and stale entries fall through to the wrapped fetcher and are stored on
// success.
func (c *Cache) Get(ctx context.Context, url string) ([]byte, error) {
	if body, ok := c.lookup(ctx, url); ok {
		slog.Debug("serving document from cache", "url", url)
		return body, nil
	}

	body, err := c.next.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	c.store(ctx, url, body)
	return body, nil
}

func (c *Cache) lookup(ctx context.Context, url string) ([]byte, bool) {
	var body []byte
	var fetchedAt time.Time
	err := c.db.QueryRowContext(ctx,
		"SELECT body, fetched_at FROM documents WHERE url = ?", url,
	).Scan(&body, &fetchedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("cache lookup failed, bypassing", "url", url, "error", err)
		}
		return nil, false
	}
	if time.Since(fetchedAt) > c.ttl {
		return nil, false
	}
	return body, true
}

func (c *Cache) store(ctx context.Context, url string, body []byte) {
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO documents (url, body, fetched_at) VALUES (?, ?, ?)",
		url, body, time.Now())
	if err != nil {
		slog.Warn("cache store failed", "url", url, "error", err)
	}
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}
