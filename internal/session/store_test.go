package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/repository"
	"github.com/alexanderramin/mandalart/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T, opts ...Option) (*Store, *SQLStorage) {
	t.Helper()
	storage := NewSQLStorage(testutil.NewTestDB(t))
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	store, err := Open(context.Background(), storage, DefaultKey, opts...)
	require.NoError(t, err)
	return store, storage
}

func mustDispatch(t *testing.T, s *Store, a Action) domain.Session {
	t.Helper()
	next, outcome, err := s.Dispatch(context.Background(), a)
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, outcome, a.Name())
	return next
}

// driveToPillars walks a store through the wizard up to pillar selection.
func driveToPillars(t *testing.T, s *Store) {
	t.Helper()
	mustDispatch(t, s, SetQuickContext{Context: testutil.NewTestQuickContext()})
	mustDispatch(t, s, SetGoal{Goal: "Run a marathon"})
	mustDispatch(t, s, SetArchetype{Archetype: domain.ArchetypeRoutine})
	mustDispatch(t, s, SetStep{Step: domain.StepArchetypeResult})
	mustDispatch(t, s, SetStep{Step: domain.StepInterview})
	mustDispatch(t, s, AddInterviewAnswer{Answer: domain.InterviewAnswer{Question: "Why?", Answer: "Health"}})
	mustDispatch(t, s, SetVibeSummary{Summary: "calm and steady"})
	mustDispatch(t, s, SetSuggestedPillars{Pillars: testutil.NewTestPillars(12)})
	mustDispatch(t, s, SetStep{Step: domain.StepPillarSelection})
}

func TestOpen_MissingSlotYieldsInitial(t *testing.T) {
	store, _ := openTestStore(t)
	assert.Equal(t, domain.NewSession(), store.Snapshot())
	assert.Equal(t, int64(0), store.Revision())
	assert.Equal(t, DefaultKey, store.Key())
}

func TestDispatch_PersistsAndReloads(t *testing.T) {
	store, storage := openTestStore(t)
	driveToPillars(t, store)
	mustDispatch(t, store, TogglePillarSelection{ID: "pillar_2"})
	mustDispatch(t, store, TogglePillarSelection{ID: "custom_1", Pillar: &domain.Pillar{Title: "Sleep"}})

	reopened, err := Open(context.Background(), storage, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, store.Snapshot(), reopened.Snapshot())
	assert.Equal(t, store.Revision(), reopened.Revision())

	snap, err := storage.Load(context.Background(), DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StepPillarSelection), snap.CurrentStep)
	assert.Equal(t, domain.SchemaVersion, snap.SchemaVersion)
}

func TestDispatch_RoundTripEveryReachableState(t *testing.T) {
	store, storage := openTestStore(t)
	check := func() {
		t.Helper()
		snap, err := storage.Load(context.Background(), DefaultKey)
		require.NoError(t, err)
		decoded, err := Decode(snap.Payload)
		require.NoError(t, err)
		assert.Equal(t, store.Snapshot(), decoded)
	}

	driveToPillars(t, store)
	check()
	for _, p := range testutil.NewTestPillars(8) {
		mustDispatch(t, store, TogglePillarSelection{ID: p.ID})
	}
	mustDispatch(t, store, StartActionSelection{})
	check()
	for i := 0; i < domain.PillarCount; i++ {
		mustDispatch(t, store, SetActionSuggestions{Texts: testutil.NewTestActions("P", 12)})
		for _, item := range store.Snapshot().ActionSelection.Suggested[:8] {
			mustDispatch(t, store, ToggleAction{ID: item.ID})
		}
		check()
		mustDispatch(t, store, CompletePillarActions{})
	}
	check()
	assert.Equal(t, domain.StepResult, store.Snapshot().CurrentStep)
}

func TestDispatch_NoopDoesNotPersist(t *testing.T) {
	store, storage := openTestStore(t)

	_, outcome, err := store.Dispatch(context.Background(), SetGoal{Goal: "  "})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, outcome)

	_, err = storage.Load(context.Background(), DefaultKey)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, int64(0), store.Revision())
}

func TestDispatch_StrictStore(t *testing.T) {
	store, _ := openTestStore(t, WithStrictTransitions())
	assert.True(t, store.Strict())

	_, outcome, err := store.Dispatch(context.Background(), SetStep{Step: domain.StepResult})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIllegalTransition, outcome)
	assert.Equal(t, domain.StepQuickContext, store.Snapshot().CurrentStep)
}

func TestDispatch_ArchetypeUsesStoreClock(t *testing.T) {
	store, _ := openTestStore(t)
	s := mustDispatch(t, store, SetArchetype{Archetype: domain.ArchetypeBusiness})
	assert.Equal(t, testNow, s.ProjectInfo.CreatedAt)
}

func TestReset_ClearsStorage(t *testing.T) {
	store, storage := openTestStore(t)
	driveToPillars(t, store)
	mustDispatch(t, store, TogglePillarSelection{ID: "pillar_1"})

	s, err := store.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.NewSession(), s)
	assert.Equal(t, domain.NewSession(), store.Snapshot())
	assert.Equal(t, int64(0), store.Revision())

	_, err = storage.Load(context.Background(), DefaultKey)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	history, err := store.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	reopened, err := Open(context.Background(), storage, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, domain.NewSession(), reopened.Snapshot())

	// Reset of an initial session is still the initial session.
	s, err = store.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.NewSession(), s)
}

func TestOpen_CorruptSlotIsDiscarded(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"currentStep":`,
		"wrong version":   `{"schemaVersion":99,"currentStep":"RESULT"}`,
		"missing version": `{"currentStep":"RESULT"}`,
		"unknown step":    `{"schemaVersion":1,"currentStep":"LIMBO"}`,
		"wrong shape":     `{"schemaVersion":1,"currentStep":"RESULT","selectedPillars":"oops"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			storage := NewSQLStorage(testutil.NewTestDB(t))
			ctx := context.Background()
			require.NoError(t, storage.Commit(ctx, &repository.Snapshot{Key: DefaultKey, Payload: []byte(payload), SchemaVersion: 1}, nil))

			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, nil))
			store, err := Open(ctx, storage, DefaultKey, WithLogger(logger))
			require.NoError(t, err)
			assert.Equal(t, domain.NewSession(), store.Snapshot())
			assert.Contains(t, logs.String(), "level=WARN")
			assert.Contains(t, logs.String(), DefaultKey)

			_, err = storage.Load(ctx, DefaultKey)
			assert.ErrorIs(t, err, repository.ErrNotFound, "corrupt slot should be removed")
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte("garbage"))
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestDispatch_PersistFailureLeavesStateUnchanged(t *testing.T) {
	database := testutil.NewTestDB(t)
	boom := errors.New("disk full")
	uow := &testutil.FailOnNthExecUoW{DB: database}
	storage := NewSQLStorageWithUoW(uow, database)
	store, err := Open(context.Background(), storage, DefaultKey)
	require.NoError(t, err)

	mustDispatch(t, store, SetQuickContext{Context: testutil.NewTestQuickContext()})
	before := store.Snapshot()

	var notified int
	store.Subscribe(func(domain.Session) { notified++ })

	// Fail the journal insert: the snapshot write in the same tx rolls back.
	uow.FailOn = 2
	uow.Err = boom
	current, outcome, err := store.Dispatch(context.Background(), SetGoal{Goal: "g"})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, outcome)
	assert.Equal(t, before, current)
	assert.Equal(t, before, store.Snapshot())
	assert.Equal(t, 0, notified)

	reopened, err := Open(context.Background(), storage, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, before, reopened.Snapshot())
	assert.Equal(t, int64(1), reopened.Revision())

	// Recovery once storage works again.
	uow.FailOn = 0
	mustDispatch(t, store, SetGoal{Goal: "g"})
	assert.Equal(t, 1, notified)
}

func TestSubscribe_NotifiesInOrderWithCopies(t *testing.T) {
	store, _ := openTestStore(t)

	var first, second []domain.Step
	unsub := store.Subscribe(func(s domain.Session) {
		first = append(first, s.CurrentStep)
		s.SuggestedGoals = append(s.SuggestedGoals, "mutated")
	})
	store.Subscribe(func(s domain.Session) {
		second = append(second, s.CurrentStep)
		assert.Empty(t, s.SuggestedGoals, "subscribers must not share snapshots")
	})

	mustDispatch(t, store, SetQuickContext{Context: testutil.NewTestQuickContext()})
	mustDispatch(t, store, EnterDiscoveryMode{})
	_, _, err := store.Dispatch(context.Background(), SetGoal{Goal: ""})
	require.NoError(t, err)

	assert.Equal(t, []domain.Step{domain.StepGoalInput, domain.StepDiscovery}, first)
	assert.Equal(t, first, second)
	assert.Empty(t, store.Snapshot().SuggestedGoals)

	unsub()
	unsub()
	mustDispatch(t, store, BackToGoalInput{})
	assert.Len(t, first, 2)
	assert.Len(t, second, 3)
}

func TestSnapshot_IsImmutable(t *testing.T) {
	store, _ := openTestStore(t)
	driveToPillars(t, store)

	snap := store.Snapshot()
	snap.SuggestedPillars[0].Title = "hacked"
	snap.UserContext.Goal = "hacked"
	assert.Equal(t, "Pillar 1", store.Snapshot().SuggestedPillars[0].Title)
	assert.Equal(t, "Run a marathon", store.Snapshot().Goal())
}

func TestDispatch_ConcurrentTogglesKeepInvariants(t *testing.T) {
	store, storage := openTestStore(t)
	driveToPillars(t, store)

	var mu sync.Mutex
	var observed []domain.Session
	store.Subscribe(func(s domain.Session) {
		mu.Lock()
		observed = append(observed, s)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				id := testutil.NewTestPillars(12)[(g*3+i)%12].ID
				_, _, err := store.Dispatch(context.Background(), TogglePillarSelection{ID: id})
				assert.NoError(t, err)
			}
		}(g)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for _, s := range append(observed, store.Snapshot()) {
		require.LessOrEqual(t, len(s.SelectedPillars), domain.PillarCount)
		for i, p := range s.SelectedPillars {
			require.Equal(t, i+1, p.ColorIndex)
		}
	}

	reopened, err := Open(context.Background(), storage, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, store.Snapshot(), reopened.Snapshot())
}

func TestHistory_JournalsAppliedActions(t *testing.T) {
	store, _ := openTestStore(t)
	mustDispatch(t, store, SetQuickContext{Context: testutil.NewTestQuickContext()})
	mustDispatch(t, store, SetGoal{Goal: "g"})
	_, _, err := store.Dispatch(context.Background(), SetGoal{Goal: ""})
	require.NoError(t, err)

	events, err := store.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "set_quick_context", events[0].Action)
	assert.Equal(t, "set_goal", events[1].Action)
	assert.Equal(t, int64(2), events[1].Revision)
	assert.Equal(t, "GOAL_INPUT", events[1].Step)
}

func TestRegistry_SharesStorePerKey(t *testing.T) {
	storage := NewSQLStorage(testutil.NewTestDB(t))
	reg := NewRegistry(storage)
	ctx := context.Background()

	a, err := reg.Get(ctx, KeyFor("alice"))
	require.NoError(t, err)
	again, err := reg.Get(ctx, KeyFor("alice"))
	require.NoError(t, err)
	b, err := reg.Get(ctx, KeyFor("bob"))
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.NotSame(t, a, b)

	var seen domain.Step
	again.Subscribe(func(s domain.Session) { seen = s.CurrentStep })
	mustDispatch(t, a, SetQuickContext{Context: testutil.NewTestQuickContext()})
	assert.Equal(t, domain.StepGoalInput, seen)
	assert.Equal(t, domain.StepQuickContext, b.Snapshot().CurrentStep)

	assert.Equal(t, []string{"ai-mandalart-session:alice", "ai-mandalart-session:bob"}, reg.Keys())
	assert.Equal(t, DefaultKey, KeyFor(""))
}

func TestMetrics_CountDispatches(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)
	again, err := NewMetrics(reg)
	require.NoError(t, err, "registering twice reuses collectors")

	store, _ := openTestStore(t, WithMetrics(metrics))
	mustDispatch(t, store, SetGoal{Goal: "g"})
	_, _, err = store.Dispatch(context.Background(), SetGoal{Goal: ""})
	require.NoError(t, err)
	unsub := store.Subscribe(func(domain.Session) {})
	unsub()
	again.observeDispatch("set_goal", OutcomeApplied)

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "mandalart_session_dispatch_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			counts[labels["action"]+"/"+labels["outcome"]] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, counts["set_goal/applied"])
	assert.Equal(t, 1.0, counts["set_goal/rejected"])
}
