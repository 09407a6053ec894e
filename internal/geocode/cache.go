package geocode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Cache persists resolved place names keyed by rounded coordinates so
// repeated runs over the same trip never hit the remote geocoder twice.
type Cache struct {
	db   *sql.DB
	path string
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS geocode_cache (
    coord_key TEXT PRIMARY KEY,
    place     TEXT NOT NULL,
    cached_at TEXT NOT NULL
);`

// OpenCache initializes or connects to the coordinate cache database. An
// empty path yields a nil cache, which every method treats as a miss.
func OpenCache(path string) (*Cache, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open geocode cache: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init geocode cache schema: %w", err)
	}
	return &Cache{db: db, path: path}, nil
}

// Lookup returns the cached place for the coordinates if present.
func (c *Cache) Lookup(ctx context.Context, lat, lon float64) (string, bool, error) {
	if c == nil || c.db == nil {
		return "", false, nil
	}
	var place string
	err := c.db.QueryRowContext(ctx,
		`SELECT place FROM geocode_cache WHERE coord_key = ?`, coordKey(lat, lon),
	).Scan(&place)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("geocode cache lookup: %w", err)
	}
	return place, true, nil
}

// Store records a resolved place for the coordinates.
func (c *Cache) Store(ctx context.Context, lat, lon float64, place string) error {
	if c == nil || c.db == nil {
		return nil
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO geocode_cache (coord_key, place, cached_at) VALUES (?, ?, ?)
		 ON CONFLICT(coord_key) DO UPDATE SET place = excluded.place, cached_at = excluded.cached_at`,
		coordKey(lat, lon), place, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("geocode cache store: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// coordKey rounds to five decimal places, roughly one meter of precision.
// Photos taken from the same spot share a cache entry even when the GPS fix
// wobbles below that.
func coordKey(lat, lon float64) string {
	return fmt.Sprintf("%.5f,%.5f", lat, lon)
}
