package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/mandalart/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRepo_PutAndGet(t *testing.T) {
	repo := NewSQLiteSnapshotRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 9, 30, 0, 123, time.UTC)
	require.NoError(t, repo.Put(ctx, &Snapshot{
		Key:           "ai-mandalart-session",
		Payload:       []byte(`{"currentStep":"GOAL_INPUT"}`),
		SchemaVersion: 1,
		Revision:      3,
		CurrentStep:   "GOAL_INPUT",
		UpdatedAt:     at,
	}))

	got, err := repo.Get(ctx, "ai-mandalart-session")
	require.NoError(t, err)
	assert.Equal(t, `{"currentStep":"GOAL_INPUT"}`, string(got.Payload))
	assert.Equal(t, 1, got.SchemaVersion)
	assert.Equal(t, int64(3), got.Revision)
	assert.Equal(t, "GOAL_INPUT", got.CurrentStep)
	assert.True(t, at.Equal(got.UpdatedAt))
}

func TestSnapshotRepo_PutOverwrites(t *testing.T) {
	repo := NewSQLiteSnapshotRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &Snapshot{Key: "k", Payload: []byte("a"), Revision: 1, CurrentStep: "QUICK_CONTEXT"}))
	require.NoError(t, repo.Put(ctx, &Snapshot{Key: "k", Payload: []byte("b"), Revision: 2, CurrentStep: "GOAL_INPUT"}))

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "b", string(got.Payload))
	assert.Equal(t, int64(2), got.Revision)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSnapshotRepo_GetNotFound(t *testing.T) {
	repo := NewSQLiteSnapshotRepo(testutil.NewTestDB(t))

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotRepo_Delete(t *testing.T) {
	repo := NewSQLiteSnapshotRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &Snapshot{Key: "k", Payload: []byte("{}")}))
	require.NoError(t, repo.Delete(ctx, "k"))
	_, err := repo.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is fine.
	require.NoError(t, repo.Delete(ctx, "k"))
}

func TestSnapshotRepo_ListNewestFirst(t *testing.T) {
	repo := NewSQLiteSnapshotRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Put(ctx, &Snapshot{Key: "old", Payload: []byte("{}"), UpdatedAt: base}))
	require.NoError(t, repo.Put(ctx, &Snapshot{Key: "new", Payload: []byte("{}"), UpdatedAt: base.Add(time.Hour)}))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0].Key)
	assert.Equal(t, "old", all[1].Key)
}
