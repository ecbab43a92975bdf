package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"testing"
)

// setupTestDB opens a shared in-memory database named after the test and runs
// the snapshot migrations on it. Both pools see the same data via cache=shared.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// No journal_mode pragma: WAL does not apply to in-memory databases.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(%d)",
		url.PathEscape(t.Name()), busyTimeoutMS,
	)

	db, err := openDB(context.Background(), dsn, t.Name())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if _, err := RunMigrations(db); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}
