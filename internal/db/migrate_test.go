package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"session_snapshots", "session_events"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	for _, idx := range []string{"idx_session_events_key", "idx_session_snapshots_updated"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_TracksSchemaVersion(t *testing.T) {
	db := openTestDB(t)

	v, err := SchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestMigrate_RejectsNewerSchema(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	err = Migrate(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than this build")
}

func TestOpenDB_BusyTimeout(t *testing.T) {
	db := openTestDB(t)

	var ms int
	require.NoError(t, db.QueryRow(`PRAGMA busy_timeout`).Scan(&ms))
	assert.Equal(t, 5000, ms)
}

func TestOpenDB_FileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mandalart.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)

	// Reopening an up-to-date file leaves the version alone.
	require.NoError(t, Migrate(db))
	v, err := SchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestMigrate_SnapshotDefaults(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO session_snapshots (session_key, payload, updated_at) VALUES ('k', '{}', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)

	var version, revision int
	var step string
	err = db.QueryRow(`SELECT schema_version, revision, current_step FROM session_snapshots WHERE session_key='k'`).
		Scan(&version, &revision, &step)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, 0, revision)
	assert.Equal(t, "QUICK_CONTEXT", step)
}
