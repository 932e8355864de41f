package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/mandalart/internal/db"
)

// SQLiteSnapshotRepo implements SnapshotRepo using a SQLite database.
type SQLiteSnapshotRepo struct {
	db db.DBTX
}

// NewSQLiteSnapshotRepo creates a new SQLiteSnapshotRepo.
func NewSQLiteSnapshotRepo(conn db.DBTX) *SQLiteSnapshotRepo {
	return &SQLiteSnapshotRepo{db: conn}
}

func (r *SQLiteSnapshotRepo) Get(ctx context.Context, key string) (*Snapshot, error) {
	query := `SELECT session_key, payload, schema_version, revision, current_step, updated_at
		FROM session_snapshots WHERE session_key = ?`
	row := r.db.QueryRowContext(ctx, query, key)
	s, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session snapshot %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning session snapshot: %w", err)
	}
	return s, nil
}

func (r *SQLiteSnapshotRepo) Put(ctx context.Context, s *Snapshot) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = nowUTC()
	}
	query := `INSERT INTO session_snapshots (session_key, payload, schema_version, revision, current_step, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_key) DO UPDATE SET
			payload = excluded.payload,
			schema_version = excluded.schema_version,
			revision = excluded.revision,
			current_step = excluded.current_step,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		s.Key,
		string(s.Payload),
		s.SchemaVersion,
		s.Revision,
		s.CurrentStep,
		formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting session snapshot: %w", err)
	}
	return nil
}

// Delete removes the slot. Deleting a missing slot is not an error.
func (r *SQLiteSnapshotRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_snapshots WHERE session_key = ?`, key); err != nil {
		return fmt.Errorf("deleting session snapshot: %w", err)
	}
	return nil
}

// List returns every snapshot, most recently updated first.
func (r *SQLiteSnapshotRepo) List(ctx context.Context) ([]*Snapshot, error) {
	query := `SELECT session_key, payload, schema_version, revision, current_step, updated_at
		FROM session_snapshots ORDER BY updated_at DESC, session_key`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing session snapshots: %w", err)
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var (
		s         Snapshot
		payload   string
		updatedAt string
	)
	if err := row.Scan(&s.Key, &payload, &s.SchemaVersion, &s.Revision, &s.CurrentStep, &updatedAt); err != nil {
		return nil, err
	}
	s.Payload = []byte(payload)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}
