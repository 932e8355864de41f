package db

import (
	"database/sql"
	"fmt"
)

// migrations are applied in order. Each entry is one schema version; the
// applied count is kept in PRAGMA user_version, so append new entries and
// never edit old ones.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS session_snapshots (
			session_key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			schema_version INTEGER NOT NULL DEFAULT 1,
			revision INTEGER NOT NULL DEFAULT 0,
			current_step TEXT NOT NULL DEFAULT 'QUICK_CONTEXT',
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_session_snapshots_updated ON session_snapshots(updated_at)`,
	},
	{
		`CREATE TABLE IF NOT EXISTS session_events (
			id TEXT PRIMARY KEY,
			session_key TEXT NOT NULL,
			revision INTEGER NOT NULL,
			action TEXT NOT NULL,
			outcome TEXT NOT NULL,
			step TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_session_events_key ON session_events(session_key, revision)`,
	},
}

// SchemaVersion returns the number of migrations applied to conn.
func SchemaVersion(conn *sql.DB) (int, error) {
	var v int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// Migrate applies every migration newer than the stored schema version,
// each in its own transaction.
func Migrate(conn *sql.DB) error {
	current, err := SchemaVersion(conn)
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than this build (%d)", current, len(migrations))
	}

	for v := current; v < len(migrations); v++ {
		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		for _, stmt := range migrations[v] {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d: %w", v+1, err)
			}
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
	}
	return nil
}
