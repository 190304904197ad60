package turso

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/tursodatabase/go-libsql"
)

// NewDB opens a libsql database. Remote URLs (libsql://, https://) get the
// auth token appended and a pool tuned for Turso's Hrana streams; file: URLs
// get their parent directory created.
func NewDB(ctx context.Context, databaseURL, authToken string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	connStr := databaseURL
	remote := !strings.HasPrefix(databaseURL, "file:")
	if remote {
		if authToken == "" {
			return nil, fmt.Errorf("auth token is required for remote database %s", databaseURL)
		}
		connStr = databaseURL + "?authToken=" + authToken
	} else if err := ensureDir(databaseURL); err != nil {
		return nil, err
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if remote {
		// Turso closes idle streams aggressively, so stale pooled
		// connections surface as "stream not found".
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(0)
		db.SetConnMaxLifetime(5 * time.Minute)
	} else {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ensureDir creates the parent directory of a local database file.
func ensureDir(databaseURL string) error {
	path, _, _ := strings.Cut(strings.TrimPrefix(databaseURL, "file:"), "?")
	if path == "" || strings.Contains(path, ":memory:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// IsStreamError checks if an error is a Turso "stream not found" error.
func IsStreamError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "stream not found")
}

const retryMaxElapsed = 2 * time.Second

// WithRetry runs fn again while it fails with a stream error.
func WithRetry[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxElapsedTime = retryMaxElapsed

	var result T
	err := backoff.Retry(func() error {
		var err error
		result, err = fn()
		if err != nil && !IsStreamError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
	return result, err
}
