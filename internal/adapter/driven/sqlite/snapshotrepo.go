package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/ghrepo/internal/domain/model"
	"github.com/ericfisherdev/ghrepo/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SnapshotStore = (*SnapshotRepo)(nil)

// SnapshotRepo is the SQLite implementation of the SnapshotStore port interface.
// The repository is stored in GitHub's wire shape, so a read goes through the
// same decoder as a live fetch.
type SnapshotRepo struct {
	db *DB
}

// NewSnapshotRepo creates a new SnapshotRepo backed by the given DB.
func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save inserts or replaces the snapshot keyed by repository id. A renamed
// repository keeps its row and takes the new full name. Names compare without
// case; a row holding the same name under another id, left behind by a
// deleted or transferred repository, is dropped in the same transaction.
func (r *SnapshotRepo) Save(ctx context.Context, snap model.Snapshot) error {
	const (
		evict  = `DELETE FROM snapshots WHERE full_name = ? AND repo_id <> ?`
		upsert = `
		INSERT INTO snapshots (repo_id, full_name, payload, languages, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(repo_id) DO UPDATE SET
			full_name  = excluded.full_name,
			payload    = excluded.payload,
			languages  = excluded.languages,
			fetched_at = excluded.fetched_at`
	)

	fullName := snap.FullName()
	id := snap.Repository.Basic.ID

	payload, err := json.Marshal(snap.Repository)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", fullName, err)
	}

	langs := snap.Languages
	if langs == nil {
		langs = model.Languages{}
	}
	langPayload, err := json.Marshal(langs)
	if err != nil {
		return fmt.Errorf("encode languages %s: %w", fullName, err)
	}

	fetchedAt := snap.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save %s: %w", fullName, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, evict, fullName, id); err != nil {
		return fmt.Errorf("evict stale snapshot %s: %w", fullName, err)
	}

	_, err = tx.ExecContext(ctx, upsert,
		id,
		fullName,
		string(payload),
		string(langPayload),
		fetchedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", fullName, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot %s: %w", fullName, err)
	}

	return nil
}

// Get retrieves a snapshot by full name, ignoring case. Returns nil, nil if
// it does not exist.
func (r *SnapshotRepo) Get(ctx context.Context, fullName string) (*model.Snapshot, error) {
	const query = `SELECT payload, languages, fetched_at FROM snapshots WHERE full_name = ?`

	snap, err := scanSnapshot(r.db.Reader.QueryRowContext(ctx, query, fullName))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", fullName, err)
	}

	return snap, nil
}

// List returns all snapshots ordered by full name.
func (r *SnapshotRepo) List(ctx context.Context) ([]model.Snapshot, error) {
	const query = `SELECT payload, languages, fetched_at FROM snapshots ORDER BY full_name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []model.Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return snaps, nil
}

// Delete removes a snapshot by full name, ignoring case. Returns
// ErrSnapshotNotFound if it does not exist.
func (r *SnapshotRepo) Delete(ctx context.Context, fullName string) error {
	const query = `DELETE FROM snapshots WHERE full_name = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, fullName)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", fullName, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete snapshot %s: %w", fullName, driven.ErrSnapshotNotFound)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(s scanner) (*model.Snapshot, error) {
	var payload, langPayload, fetchedAt string

	if err := s.Scan(&payload, &langPayload, &fetchedAt); err != nil {
		return nil, err
	}

	var snap model.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap.Repository); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if err := json.Unmarshal([]byte(langPayload), &snap.Languages); err != nil {
		return nil, fmt.Errorf("decode languages: %w", err)
	}

	t, err := parseTime(fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parse fetched_at: %w", err)
	}
	snap.FetchedAt = t

	return &snap, nil
}

// parseTime tries the formats SQLite and older rows may carry.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
