package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
	"github.com/richiexuetang/ritcher-map/pkg/logger"
)

// SQLiteCache is an embedded cache backend for single-node deployments
// where running Redis is not worth it. The ETag lives in the same row as
// the blob, so pattern invalidation clears both namespaces in one
// statement.
type SQLiteCache struct {
	db     *sql.DB
	ttl    time.Duration
	logger logger.Logger
}

var _ TileCache = (*SQLiteCache)(nil)

func NewSQLiteCache(path string, ttl time.Duration, l logger.Logger) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if ttl == 0 {
		ttl = time.Hour
	}

	c := &SQLiteCache{db: db, ttl: ttl, logger: l}

	if err := c.runMigrations(); err != nil {
		return nil, err
	}

	l.Info("sqlite tile cache initialized", "path", path, "ttl", ttl)

	return c, nil
}

func (c *SQLiteCache) runMigrations() error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.Up(c.db, "migrations")
}

func (c *SQLiteCache) Get(ctx context.Context, key string) (Blob, bool, error) {
	query := `SELECT tile_data, content_type, etag, expires_at
	FROM tile_cache
	WHERE key = ?`

	var blob Blob
	var expiresAt time.Time
	err := c.db.QueryRowContext(ctx, query, key).Scan(&blob.Data, &blob.ContentType, &blob.ETag, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Blob{}, false, nil
		}
		return Blob{}, false, fmt.Errorf("sqlite cache get %s: %w", key, err)
	}

	now := time.Now().UTC()
	if now.After(expiresAt) {
		_, _ = c.db.ExecContext(ctx, `DELETE FROM tile_cache WHERE key = ?`, key)
		return Blob{}, false, nil
	}

	_, err = c.db.ExecContext(ctx, `UPDATE tile_cache SET expires_at = ? WHERE key = ?`, now.Add(c.ttl), key)
	if err != nil {
		c.logger.Warn("failed to refresh cache ttl", "key", key, "error", err)
	}

	return blob, true, nil
}

func (c *SQLiteCache) Set(ctx context.Context, key string, blob Blob, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	query := `INSERT INTO tile_cache (key, tile_data, content_type, etag, expires_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		tile_data = excluded.tile_data,
		content_type = excluded.content_type,
		etag = excluded.etag,
		expires_at = excluded.expires_at`

	_, err := c.db.ExecContext(ctx, query, key, blob.Data, blob.ContentType, blob.ETag, time.Now().UTC().Add(ttl))
	if err != nil {
		return fmt.Errorf("sqlite cache set %s: %w", key, err)
	}

	return nil
}

func (c *SQLiteCache) GetETag(ctx context.Context, key string) (string, error) {
	query := `SELECT etag, expires_at FROM tile_cache WHERE key = ?`

	var etag string
	var expiresAt time.Time
	err := c.db.QueryRowContext(ctx, query, key).Scan(&etag, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", apperror.Newf(apperror.KindNotFound, "etag not cached for %s", key)
		}
		return "", fmt.Errorf("sqlite cache get etag %s: %w", key, err)
	}
	if time.Now().UTC().After(expiresAt) {
		return "", apperror.Newf(apperror.KindNotFound, "etag not cached for %s", key)
	}

	return etag, nil
}

func (c *SQLiteCache) InvalidatePattern(ctx context.Context, prefix string) (int, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM tile_cache WHERE key LIKE ? || '%'`, prefix)
	if err != nil {
		return 0, fmt.Errorf("sqlite cache invalidate %s*: %w", prefix, err)
	}

	removed, _ := res.RowsAffected()
	c.logger.Info("invalidated cache entries", "prefix", prefix, "removed", removed)
	return int(removed), nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
