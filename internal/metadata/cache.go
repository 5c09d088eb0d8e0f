// Package metadata caches rendered metadata pages in SQLite so repeated runs
// skip the browser for pages seen recently.
package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/browser"
)

// Cache provides SQLite-backed caching of rendered page fragments.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	log *slog.Logger
}

// NewCache creates a cache whose entries live for ttl.
func NewCache(db *sql.DB, ttl time.Duration, log *slog.Logger) *Cache {
	return &Cache{db: db, ttl: ttl, log: log.With("component", "cache")}
}

// Get retrieves the fragments rendered for url.
// Returns false if not found or expired.
func (c *Cache) Get(ctx context.Context, url string) (browser.Fragments, bool) {
	var frags browser.Fragments
	var expiresAt time.Time

	err := c.db.QueryRowContext(ctx,
		"SELECT head, body, expires_at FROM rendered_pages WHERE url = ?", url,
	).Scan(&frags.Head, &frags.Body, &expiresAt)

	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.log.Warn("cache read failed", "url", url, "error", err)
		}
		return browser.Fragments{}, false
	}
	if time.Now().After(expiresAt) {
		return browser.Fragments{}, false
	}
	return frags, true
}

// Put stores the fragments rendered for url, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, url string, frags browser.Fragments) error {
	now := time.Now()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO rendered_pages (url, head, body, rendered_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
		   head = excluded.head,
		   body = excluded.body,
		   rendered_at = excluded.rendered_at,
		   expires_at = excluded.expires_at`,
		url, frags.Head, frags.Body, now, now.Add(c.ttl),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Delete removes a cached page.
func (c *Cache) Delete(ctx context.Context, url string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM rendered_pages WHERE url = ?", url)
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Prune removes all expired entries.
// Returns the number of entries removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx,
		"DELETE FROM rendered_pages WHERE expires_at < ?", time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	return result.RowsAffected()
}
