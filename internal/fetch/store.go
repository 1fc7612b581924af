// Package fetch retrieves raw documents over HTTP and caches them on disk,
// with an index kept in SQLite or Postgres.
package fetch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Store is the cache index: one row per fetched document.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	identifier     TEXT PRIMARY KEY,
	source_url     TEXT NOT NULL,
	blob_path      TEXT NOT NULL,
	content_sha256 TEXT NOT NULL,
	fetched_at     TIMESTAMP NOT NULL
)`

// Open connects the cache index. The driver follows the DSN: postgres DSNs go
// through pgx, anything else is treated as a SQLite file. Placeholders are
// written $1-style, which both drivers accept.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
	}
	logger.Info("cache.store.open", "driver", driver)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache index: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache index: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the index connection gracefully.
func (s *Store) Close() {
	s.logger.Info("cache.store.close")
	if err := s.db.Close(); err != nil {
		s.logger.Error("cache.store.close_failed", "error", err)
	}
}

// HealthCheck pings the index to catch DSN issues early.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.db.PingContext(ctx)
}

// Lookup returns the cached blob path for an identifier, if indexed.
func (s *Store) Lookup(ctx context.Context, identifier string) (string, bool, error) {
	var path string
	err := s.db.QueryRowContext(ctx,
		`SELECT blob_path FROM documents WHERE identifier = $1`, identifier).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup %s: %w", identifier, err)
	}
	return path, true, nil
}

// Save upserts the index row for a freshly fetched document.
func (s *Store) Save(ctx context.Context, identifier, sourceURL, blobPath, sha string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (identifier, source_url, blob_path, content_sha256, fetched_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (identifier) DO UPDATE SET
		   source_url = EXCLUDED.source_url,
		   blob_path = EXCLUDED.blob_path,
		   content_sha256 = EXCLUDED.content_sha256,
		   fetched_at = EXCLUDED.fetched_at`,
		identifier, sourceURL, blobPath, sha, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save %s: %w", identifier, err)
	}
	return nil
}

// Walk visits every index row in identifier order.
func (s *Store) Walk(ctx context.Context, fn func(identifier, blobPath string) error) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identifier, blob_path FROM documents ORDER BY identifier`)
	if err != nil {
		return fmt.Errorf("walk index: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, path string
		if err := rows.Scan(&id, &path); err != nil {
			return fmt.Errorf("scan index row: %w", err)
		}
		if err := fn(id, path); err != nil {
			return err
		}
	}
	return rows.Err()
}
