package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/mandalart/internal/db"
	"github.com/google/uuid"
)

// SQLiteEventRepo implements EventRepo using a SQLite database.
type SQLiteEventRepo struct {
	db db.DBTX
}

// NewSQLiteEventRepo creates a new SQLiteEventRepo.
func NewSQLiteEventRepo(conn db.DBTX) *SQLiteEventRepo {
	return &SQLiteEventRepo{db: conn}
}

func (r *SQLiteEventRepo) Append(ctx context.Context, e *SessionEvent) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = nowUTC()
	}
	query := `INSERT INTO session_events (id, session_key, revision, action, outcome, step, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.Key,
		e.Revision,
		e.Action,
		e.Outcome,
		e.Step,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting session event: %w", err)
	}
	return nil
}

// ListByKey returns the newest limit events for key, oldest first. A
// non-positive limit returns all events.
func (r *SQLiteEventRepo) ListByKey(ctx context.Context, key string, limit int) ([]*SessionEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT id, session_key, revision, action, outcome, step, created_at FROM (
			SELECT * FROM session_events WHERE session_key = ? ORDER BY revision DESC LIMIT ?
		) ORDER BY revision ASC`
	rows, err := r.db.QueryContext(ctx, query, key, limit)
	if err != nil {
		return nil, fmt.Errorf("listing session events: %w", err)
	}
	defer rows.Close()

	var out []*SessionEvent
	for rows.Next() {
		var (
			e         SessionEvent
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Key, &e.Revision, &e.Action, &e.Outcome, &e.Step, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning session event: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *SQLiteEventRepo) DeleteByKey(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_events WHERE session_key = ?`, key); err != nil {
		return fmt.Errorf("deleting session events: %w", err)
	}
	return nil
}
