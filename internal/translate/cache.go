// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Cache persists translations in a SQLite database so repeated runs over
// the same document skip the network. Entries key on provider, target
// language, and a hash of the source text.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the cache database at path, creating parent
// directories and the schema as needed.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS translations (
		provider    TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		source_hash TEXT NOT NULL,
		translated  TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		PRIMARY KEY (provider, target_lang, source_hash)
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) get(ctx context.Context, provider, targetLang, hash string) (string, bool) {
	var translated string
	err := c.db.QueryRowContext(ctx,
		`SELECT translated FROM translations WHERE provider = ? AND target_lang = ? AND source_hash = ?`,
		provider, targetLang, hash).Scan(&translated)
	if err != nil {
		return "", false
	}
	return translated, true
}

func (c *Cache) put(ctx context.Context, provider, targetLang, hash, translated string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translations (provider, target_lang, source_hash, translated, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		provider, targetLang, hash, translated, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Cached decorates a Provider with the cache: hits skip the inner
// provider entirely, misses are stored after a successful call.
type Cached struct {
	inner Provider
	cache *Cache
}

// WithCache wraps p so its translations persist in c.
func WithCache(p Provider, c *Cache) *Cached {
	return &Cached{inner: p, cache: c}
}

// Name returns the inner provider's name; cache keys and logs refer to
// the backend actually doing the work.
func (c *Cached) Name() string { return c.inner.Name() }

// Translate serves from the cache when possible, delegating misses to the
// inner provider. A cache write failure does not fail the translation.
func (c *Cached) Translate(ctx context.Context, text, targetLang string) (string, error) {
	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(text)))

	if translated, ok := c.cache.get(ctx, c.inner.Name(), targetLang, hash); ok {
		return translated, nil
	}

	translated, err := c.inner.Translate(ctx, text, targetLang)
	if err != nil {
		return "", err
	}
	if translated != "" {
		_ = c.cache.put(ctx, c.inner.Name(), targetLang, hash, translated)
	}
	return translated, nil
}
