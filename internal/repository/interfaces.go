package repository

import (
	"context"
	"time"
)

// Snapshot is the persisted JSON form of one session slot.
type Snapshot struct {
	Key           string
	Payload       []byte
	SchemaVersion int
	Revision      int64
	CurrentStep   string
	UpdatedAt     time.Time
}

// SessionEvent is one journal entry for an applied mutation.
type SessionEvent struct {
	ID        string
	Key       string
	Revision  int64
	Action    string
	Outcome   string
	Step      string
	CreatedAt time.Time
}

type SnapshotRepo interface {
	Get(ctx context.Context, key string) (*Snapshot, error)
	Put(ctx context.Context, s *Snapshot) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]*Snapshot, error)
}

type EventRepo interface {
	Append(ctx context.Context, e *SessionEvent) error
	ListByKey(ctx context.Context, key string, limit int) ([]*SessionEvent, error)
	DeleteByKey(ctx context.Context, key string) error
}
