package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/mandalart/internal/db"
	"github.com/alexanderramin/mandalart/internal/repository"
)

// Storage is the durable slot behind a Store.
type Storage interface {
	// Load returns the snapshot for key or an error wrapping
	// repository.ErrNotFound.
	Load(ctx context.Context, key string) (*repository.Snapshot, error)
	// Commit writes the snapshot and its journal entry atomically.
	Commit(ctx context.Context, snap *repository.Snapshot, ev *repository.SessionEvent) error
	// Clear removes the snapshot and journal for key.
	Clear(ctx context.Context, key string) error
	// History returns the newest limit journal entries, oldest first.
	History(ctx context.Context, key string, limit int) ([]*repository.SessionEvent, error)
}

// SQLStorage implements Storage over the session_snapshots and
// session_events tables.
type SQLStorage struct {
	uow    db.UnitOfWork
	reader db.DBTX
}

// NewSQLStorage creates a Storage backed by database.
func NewSQLStorage(database *sql.DB) *SQLStorage {
	return NewSQLStorageWithUoW(db.NewSQLiteUnitOfWork(database), database)
}

// NewSQLStorageWithUoW creates a Storage that writes through uow and reads
// through reader.
func NewSQLStorageWithUoW(uow db.UnitOfWork, reader db.DBTX) *SQLStorage {
	return &SQLStorage{uow: uow, reader: reader}
}

func (s *SQLStorage) Load(ctx context.Context, key string) (*repository.Snapshot, error) {
	return repository.NewSQLiteSnapshotRepo(s.reader).Get(ctx, key)
}

func (s *SQLStorage) Commit(ctx context.Context, snap *repository.Snapshot, ev *repository.SessionEvent) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteSnapshotRepo(tx).Put(ctx, snap); err != nil {
			return err
		}
		if ev == nil {
			return nil
		}
		if err := repository.NewSQLiteEventRepo(tx).Append(ctx, ev); err != nil {
			return fmt.Errorf("journaling %s: %w", ev.Action, err)
		}
		return nil
	})
}

func (s *SQLStorage) Clear(ctx context.Context, key string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteSnapshotRepo(tx).Delete(ctx, key); err != nil {
			return err
		}
		return repository.NewSQLiteEventRepo(tx).DeleteByKey(ctx, key)
	})
}

func (s *SQLStorage) History(ctx context.Context, key string, limit int) ([]*repository.SessionEvent, error) {
	return repository.NewSQLiteEventRepo(s.reader).ListByKey(ctx, key, limit)
}
