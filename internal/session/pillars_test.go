package session

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(t *testing.T, s domain.Session, a Action) (domain.Session, Outcome) {
	t.Helper()
	next, outcome := a.Apply(s.Clone(), Env{})
	if !outcome.Applied() {
		return s, outcome
	}
	return next, outcome
}

func selectionView(s domain.Session) []string {
	out := make([]string, len(s.SelectedPillars))
	for i, p := range s.SelectedPillars {
		out[i] = fmt.Sprintf("%s:%d", p.ID, p.ColorIndex)
	}
	return out
}

func TestTogglePillar_ExampleScenario(t *testing.T) {
	s := testutil.NewTestSession(testutil.WithSuggestedPillars(
		domain.Pillar{ID: "p1", Title: "Health"},
		domain.Pillar{ID: "p2", Title: "Career"},
		domain.Pillar{ID: "p3", Title: "Finance"},
	))

	s, outcome := apply(t, s, TogglePillarSelection{ID: "p1"})
	assert.Equal(t, OutcomeApplied, outcome)
	assert.Equal(t, []string{"p1:1"}, selectionView(s))

	s, _ = apply(t, s, TogglePillarSelection{ID: "p2"})
	assert.Equal(t, []string{"p1:1", "p2:2"}, selectionView(s))

	s, _ = apply(t, s, TogglePillarSelection{ID: "p1"})
	assert.Equal(t, []string{"p2:1"}, selectionView(s))
	assert.Equal(t, "Career", s.SelectedPillars[0].Title)

	// The pool is untouched by selection.
	assert.Len(t, s.SuggestedPillars, 3)
	for _, p := range s.SuggestedPillars {
		assert.Zero(t, p.ColorIndex)
	}
}

func TestTogglePillar_NinthSelectIsNoop(t *testing.T) {
	pool := testutil.NewTestPillars(9)
	s := testutil.NewTestSession(testutil.WithSuggestedPillars(pool...))
	for _, p := range pool[:8] {
		var outcome Outcome
		s, outcome = apply(t, s, TogglePillarSelection{ID: p.ID})
		require.Equal(t, OutcomeApplied, outcome)
	}

	before := s.Clone()
	s, outcome := apply(t, s, TogglePillarSelection{ID: pool[8].ID})
	assert.Equal(t, OutcomeSelectionFull, outcome)
	assert.Equal(t, before, s)

	// Custom pillars are subject to the same cap.
	_, outcome = apply(t, s, TogglePillarSelection{ID: "custom_x", Pillar: &domain.Pillar{Title: "Mine"}})
	assert.Equal(t, OutcomeSelectionFull, outcome)
}

func TestTogglePillar_UnknownIDIsNoop(t *testing.T) {
	s := testutil.NewTestSession(testutil.WithSuggestedPillars(testutil.NewTestPillars(3)...))
	before := s.Clone()

	s, outcome := apply(t, s, TogglePillarSelection{ID: "missing"})
	assert.Equal(t, OutcomeNotFound, outcome)
	assert.Equal(t, before, s)
}

func TestTogglePillar_ExplicitCustomPillar(t *testing.T) {
	s := testutil.NewTestSession(
		testutil.WithSuggestedPillars(testutil.NewTestPillars(3)...),
	)
	s, _ = apply(t, s, TogglePillarSelection{ID: "pillar_1"})

	custom := &domain.Pillar{ID: "ignored", Title: "Sleep", Description: "Rest well"}
	s, outcome := apply(t, s, TogglePillarSelection{ID: "custom_1", Pillar: custom})
	require.Equal(t, OutcomeApplied, outcome)
	assert.Equal(t, []string{"pillar_1:1", "custom_1:2"}, selectionView(s))
	assert.Equal(t, "Sleep", s.SelectedPillars[1].Title)

	// Deselecting the custom pillar needs no explicit pillar.
	s, outcome = apply(t, s, TogglePillarSelection{ID: "custom_1"})
	assert.Equal(t, OutcomeApplied, outcome)
	assert.Equal(t, []string{"pillar_1:1"}, selectionView(s))
}

func TestTogglePillar_ExplicitPillarNeedsTitle(t *testing.T) {
	s := testutil.NewTestSession()
	_, outcome := apply(t, s, TogglePillarSelection{ID: "custom_1", Pillar: &domain.Pillar{Title: "  "}})
	assert.Equal(t, OutcomeNotFound, outcome)
}

func TestTogglePillar_PoolEntryWinsOverExplicit(t *testing.T) {
	s := testutil.NewTestSession(testutil.WithSuggestedPillars(domain.Pillar{ID: "p1", Title: "Health"}))
	s, _ = apply(t, s, TogglePillarSelection{ID: "p1", Pillar: &domain.Pillar{Title: "Other"}})
	assert.Equal(t, "Health", s.SelectedPillars[0].Title)
}

func TestTogglePillar_SelectThenDeselectRestoresSelection(t *testing.T) {
	pool := testutil.NewTestPillars(6)
	s := testutil.NewTestSession(testutil.WithSuggestedPillars(pool...))
	for _, id := range []string{"pillar_3", "pillar_1", "pillar_5"} {
		s, _ = apply(t, s, TogglePillarSelection{ID: id})
	}
	before := append([]domain.Pillar{}, s.SelectedPillars...)

	s, _ = apply(t, s, TogglePillarSelection{ID: "pillar_2"})
	s, _ = apply(t, s, TogglePillarSelection{ID: "pillar_2"})
	assert.Equal(t, before, s.SelectedPillars)
}

// TestTogglePillar_Invariants_Random drives random toggle sequences and
// checks capacity and dense colour indexes after every step.
func TestTogglePillar_Invariants_Random(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		poolSize := rng.Intn(12) + 1
		pool := testutil.NewTestPillars(poolSize)
		s := testutil.NewTestSession(testutil.WithSuggestedPillars(pool...))
		var order []string

		for step := 0; step < 60; step++ {
			var a TogglePillarSelection
			switch rng.Intn(10) {
			case 0:
				a = TogglePillarSelection{ID: "ghost"}
			case 1:
				id := fmt.Sprintf("custom_%d", rng.Intn(3))
				a = TogglePillarSelection{ID: id, Pillar: &domain.Pillar{Title: id}}
			default:
				a = TogglePillarSelection{ID: pool[rng.Intn(poolSize)].ID}
			}

			wasSelected := s.IsPillarSelected(a.ID)
			var outcome Outcome
			s, outcome = apply(t, s, a)

			// Reference model of the selection order.
			if outcome.Applied() {
				if wasSelected {
					for i, id := range order {
						if id == a.ID {
							order = append(order[:i], order[i+1:]...)
							break
						}
					}
				} else {
					order = append(order, a.ID)
				}
			}

			require.LessOrEqual(t, len(s.SelectedPillars), domain.PillarCount,
				"trial %d step %d: selection exceeds capacity", trial, step)
			seen := map[string]bool{}
			for i, p := range s.SelectedPillars {
				require.Equal(t, i+1, p.ColorIndex,
					"trial %d step %d: colorIndex must be dense 1..N", trial, step)
				require.False(t, seen[p.ID], "trial %d step %d: duplicate pillar %s", trial, step, p.ID)
				seen[p.ID] = true
				require.Equal(t, order[i], p.ID, "trial %d step %d: selection order drifted", trial, step)
			}
		}
	}
}
