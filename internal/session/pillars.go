package session

import (
	"strings"

	"github.com/alexanderramin/mandalart/internal/domain"
)

// TogglePillarSelection selects or deselects pillar ID. A pillar missing
// from the suggestion pool, such as a user-authored one, can be supplied
// in Pillar.
type TogglePillarSelection struct {
	ID     string         `json:"id"`
	Pillar *domain.Pillar `json:"pillar,omitempty"`
}

func (TogglePillarSelection) Name() string { return "toggle_pillar_selection" }

func (a TogglePillarSelection) Apply(s domain.Session, _ Env) (domain.Session, Outcome) {
	if s.IsPillarSelected(a.ID) {
		kept := make([]domain.Pillar, 0, len(s.SelectedPillars)-1)
		for _, p := range s.SelectedPillars {
			if p.ID != a.ID {
				kept = append(kept, p)
			}
		}
		s.SelectedPillars = reindexPillars(kept)
		return s, OutcomeApplied
	}
	if len(s.SelectedPillars) >= domain.PillarCount {
		return s, OutcomeSelectionFull
	}
	pillar, ok := s.FindSuggestedPillar(a.ID)
	if !ok {
		if a.ID == "" || a.Pillar == nil || strings.TrimSpace(a.Pillar.Title) == "" {
			return s, OutcomeNotFound
		}
		pillar = *a.Pillar
		pillar.ID = a.ID
	}
	pillar.ColorIndex = len(s.SelectedPillars) + 1
	s.SelectedPillars = append(s.SelectedPillars, pillar)
	return s, OutcomeApplied
}

// reindexPillars assigns colorIndex 1..N in slice order.
func reindexPillars(pillars []domain.Pillar) []domain.Pillar {
	for i := range pillars {
		pillars[i].ColorIndex = i + 1
	}
	return pillars
}
