// Package sqlite implements the SnapshotStore port on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const (
	busyTimeoutMS = 5000
	readerConns   = 4
)

// DB holds a single-connection writer pool and a small reader pool on the
// same database file. Snapshot writes are serialized through Writer.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// Open opens the snapshot database at path and brings its schema up to date.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := NewDB(ctx, path)
	if err != nil {
		return nil, err
	}

	if _, err := RunMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// NewDB opens path in WAL mode without touching the schema.
func NewDB(ctx context.Context, path string) (*DB, error) {
	return openDB(ctx, fileDSN(path), path)
}

func fileDSN(path string) string {
	return fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		path, busyTimeoutMS,
	)
}

func openDB(ctx context.Context, dsn, path string) (*DB, error) {
	writer, err := openPool(ctx, dsn, 1)
	if err != nil {
		return nil, fmt.Errorf("open writer for %s: %w", path, err)
	}

	reader, err := openPool(ctx, dsn, readerConns)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader for %s: %w", path, err)
	}

	return &DB{Writer: writer, Reader: reader, path: path}, nil
}

func openPool(ctx context.Context, dsn string, maxConns int) (*sql.DB, error) {
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(maxConns)

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return pool, nil
}

// Path returns the database file the pools were opened on.
func (db *DB) Path() string {
	return db.path
}

// Close closes both pools and returns the first error.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}
