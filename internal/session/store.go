package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/repository"
)

// DefaultKey is the storage slot of the single-user session.
const DefaultKey = "ai-mandalart-session"

// KeyFor returns the slot for client id. An empty id maps to DefaultKey.
func KeyFor(id string) string {
	if id == "" {
		return DefaultKey
	}
	return DefaultKey + ":" + id
}

var ErrCorruptSnapshot = errors.New("corrupt session snapshot")

// Option configures a Store.
type Option func(*options)

type options struct {
	strict  bool
	now     func() time.Time
	logger  *slog.Logger
	metrics *Metrics
}

// WithStrictTransitions enforces the step table on SetStep and the other
// step-changing actions.
func WithStrictTransitions() Option {
	return func(o *options) { o.strict = true }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Store owns one session. Dispatch serialises read, compute, persist and
// publish; subscribers are notified in dispatch order with private copies.
type Store struct {
	key     string
	storage Storage
	opts    options

	mu       sync.Mutex
	state    domain.Session
	revision int64
	// version counts every change of state, resets and reloads included,
	// and never goes back. It is what DispatchIf compares.
	version uint64

	// notifyMu is taken before mu is released so notifications leave in
	// the same order the mutations were applied.
	notifyMu sync.Mutex
	subMu    sync.Mutex
	subs     []subscriber
	nextSub  int
}

type subscriber struct {
	id int
	fn func(Change)
}

// Change is one published state. Version orders changes across resets.
type Change struct {
	Version  uint64         `json:"version"`
	Revision int64          `json:"revision"`
	Session  domain.Session `json:"session"`
}

// Open loads the session stored under key. A missing slot yields the
// initial session; a corrupt slot is cleared and also yields it.
func Open(ctx context.Context, storage Storage, key string, opts ...Option) (*Store, error) {
	o := options{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Store{key: key, storage: storage, opts: o}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Key returns the storage slot of the store.
func (s *Store) Key() string { return s.key }

// Strict reports whether step transitions are enforced.
func (s *Store) Strict() bool { return s.opts.strict }

// Snapshot returns a deep copy of the current session.
func (s *Store) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Current returns a deep copy of the session together with its version,
// for use with DispatchIf.
func (s *Store) Current() (domain.Session, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), s.version
}

// Revision returns the number of applied mutations since the last reset.
func (s *Store) Revision() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Reload replaces the in-memory session with the persisted one.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, revision, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.state = state
	s.revision = revision
	s.version++
	return nil
}

func (s *Store) load(ctx context.Context) (domain.Session, int64, error) {
	snap, err := s.storage.Load(ctx, s.key)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NewSession(), 0, nil
	}
	if err != nil {
		return domain.Session{}, 0, fmt.Errorf("loading session %q: %w", s.key, err)
	}
	state, err := Decode(snap.Payload)
	if err != nil {
		s.opts.logger.Warn("discarding unreadable session snapshot",
			"key", s.key,
			"revision", snap.Revision,
			"error", err,
		)
		if clearErr := s.storage.Clear(ctx, s.key); clearErr != nil {
			s.opts.logger.Warn("clearing unreadable session snapshot failed", "key", s.key, "error", clearErr)
		}
		return domain.NewSession(), 0, nil
	}
	return state, snap.Revision, nil
}

// Dispatch applies a to the session. Invariant no-ops are reported through
// the outcome and leave storage untouched; only storage failures return an
// error, in which case the session is unchanged.
func (s *Store) Dispatch(ctx context.Context, a Action) (domain.Session, Outcome, error) {
	return s.dispatch(ctx, a, nil)
}

// DispatchIf applies a only if the session is still at version, as
// returned by Current. Otherwise nothing changes and the outcome is
// OutcomeStale.
func (s *Store) DispatchIf(ctx context.Context, version uint64, a Action) (domain.Session, Outcome, error) {
	return s.dispatch(ctx, a, &version)
}

func (s *Store) dispatch(ctx context.Context, a Action, expect *uint64) (domain.Session, Outcome, error) {
	s.mu.Lock()
	if expect != nil && *expect != s.version {
		current := s.state.Clone()
		s.mu.Unlock()
		s.opts.metrics.observeDispatch(a.Name(), OutcomeStale)
		return current, OutcomeStale, nil
	}
	env := Env{Now: s.opts.now(), Strict: s.opts.strict}
	next, outcome := a.Apply(s.state.Clone(), env)
	if !outcome.Applied() {
		current := s.state.Clone()
		s.mu.Unlock()
		s.opts.metrics.observeDispatch(a.Name(), outcome)
		return current, outcome, nil
	}

	next.SchemaVersion = domain.SchemaVersion
	revision := s.revision + 1
	var err error
	if _, reset := a.(ResetSession); reset {
		revision = 0
		err = s.storage.Clear(ctx, s.key)
	} else {
		err = s.persist(ctx, next, revision, a, env.Now)
	}
	if err != nil {
		current := s.state.Clone()
		s.mu.Unlock()
		s.opts.metrics.observePersistError(a.Name())
		return current, "", fmt.Errorf("%s: %w", a.Name(), err)
	}

	s.state = next
	s.revision = revision
	s.version++
	change := Change{Version: s.version, Revision: revision, Session: next}
	s.notifyMu.Lock()
	s.mu.Unlock()
	s.opts.metrics.observeDispatch(a.Name(), outcome)
	s.publish(change)
	s.notifyMu.Unlock()
	return next.Clone(), outcome, nil
}

func (s *Store) persist(ctx context.Context, next domain.Session, revision int64, a Action, now time.Time) error {
	payload, err := Encode(next)
	if err != nil {
		return err
	}
	return s.storage.Commit(ctx,
		&repository.Snapshot{
			Key:           s.key,
			Payload:       payload,
			SchemaVersion: domain.SchemaVersion,
			Revision:      revision,
			CurrentStep:   string(next.CurrentStep),
			UpdatedAt:     now.UTC(),
		},
		&repository.SessionEvent{
			Key:       s.key,
			Revision:  revision,
			Action:    a.Name(),
			Outcome:   string(OutcomeApplied),
			Step:      string(next.CurrentStep),
			CreatedAt: now.UTC(),
		},
	)
}

// Reset restores the initial session and clears the persisted slot.
func (s *Store) Reset(ctx context.Context) (domain.Session, error) {
	next, _, err := s.Dispatch(ctx, ResetSession{})
	return next, err
}

// History returns the most recent journal entries of this session.
func (s *Store) History(ctx context.Context, limit int) ([]*repository.SessionEvent, error) {
	return s.storage.History(ctx, s.key, limit)
}

// Subscribe registers fn for every applied mutation and returns a function
// that removes it. fn runs on the dispatching goroutine and must not call
// Dispatch on the same store.
func (s *Store) Subscribe(fn func(domain.Session)) func() {
	return s.subscribe(func(c Change) { fn(c.Session) })
}

// Watch registers fn like Subscribe and returns the state it was registered
// against. A change published by a commit that finished before Watch can
// still arrive with a version at or below the returned one.
func (s *Store) Watch(fn func(Change)) (Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := Change{Version: s.version, Revision: s.revision, Session: s.state.Clone()}
	return current, s.subscribe(fn)
}

func (s *Store) subscribe(fn func(Change)) func() {
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.subMu.Unlock()
	s.opts.metrics.subscriberDelta(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					break
				}
			}
			s.subMu.Unlock()
			s.opts.metrics.subscriberDelta(-1)
		})
	}
}

func (s *Store) publish(c Change) {
	s.subMu.Lock()
	subs := append([]subscriber(nil), s.subs...)
	s.subMu.Unlock()
	for _, sub := range subs {
		sub.fn(Change{Version: c.Version, Revision: c.Revision, Session: c.Session.Clone()})
	}
}

// Encode serialises a session for storage.
func Encode(s domain.Session) ([]byte, error) {
	s.SchemaVersion = domain.SchemaVersion
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	return payload, nil
}

// Decode parses a stored session. A payload written by another schema
// version is reported as corrupt.
func Decode(payload []byte) (domain.Session, error) {
	var s domain.Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if s.SchemaVersion != domain.SchemaVersion {
		return domain.Session{}, fmt.Errorf("%w: schema version %d, want %d",
			ErrCorruptSnapshot, s.SchemaVersion, domain.SchemaVersion)
	}
	if !domain.ValidStep(s.CurrentStep) {
		return domain.Session{}, fmt.Errorf("%w: unknown step %q", ErrCorruptSnapshot, s.CurrentStep)
	}
	s.Normalize()
	return s, nil
}
