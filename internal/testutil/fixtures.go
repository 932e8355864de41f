package testutil

import (
	"fmt"

	"github.com/alexanderramin/mandalart/internal/domain"
)

// Session options
type SessionOption func(*domain.Session)

func WithStep(step domain.Step) SessionOption {
	return func(s *domain.Session) {
		s.CurrentStep = step
	}
}

func WithGoal(goal string) SessionOption {
	return func(s *domain.Session) {
		s.UserContext = &domain.UserContext{
			Goal:    goal,
			Persona: domain.Persona{IdentityAnswers: []domain.InterviewAnswer{}},
		}
	}
}

func WithArchetype(a domain.Archetype) SessionOption {
	return func(s *domain.Session) {
		s.ProjectInfo = &domain.ProjectInfo{Name: "AI Mandalart", Archetype: a}
	}
}

func WithAnswers(answers ...domain.InterviewAnswer) SessionOption {
	return func(s *domain.Session) {
		if s.UserContext == nil {
			WithGoal("test goal")(s)
		}
		s.UserContext.Persona.IdentityAnswers = append(s.UserContext.Persona.IdentityAnswers, answers...)
	}
}

func WithVibe(vibe string) SessionOption {
	return func(s *domain.Session) {
		if s.UserContext == nil {
			WithGoal("test goal")(s)
		}
		s.UserContext.Persona.VibeSummary = vibe
	}
}

func WithSuggestedPillars(pillars ...domain.Pillar) SessionOption {
	return func(s *domain.Session) {
		s.SuggestedPillars = append([]domain.Pillar{}, pillars...)
	}
}

// WithSelectedPillars selects pillars in order with dense colour indexes.
func WithSelectedPillars(pillars ...domain.Pillar) SessionOption {
	return func(s *domain.Session) {
		s.SelectedPillars = make([]domain.Pillar, len(pillars))
		for i, p := range pillars {
			p.ColorIndex = i + 1
			s.SelectedPillars[i] = p
		}
	}
}

func WithQuickContext(qc domain.QuickContext) SessionOption {
	return func(s *domain.Session) {
		s.QuickContext = &qc
	}
}

func NewTestSession(opts ...SessionOption) domain.Session {
	s := domain.NewSession()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// NewTestPillars returns n pillars with ids pillar_1..pillar_n.
func NewTestPillars(n int) []domain.Pillar {
	out := make([]domain.Pillar, n)
	for i := range out {
		out[i] = domain.Pillar{
			ID:          fmt.Sprintf("pillar_%d", i+1),
			Title:       fmt.Sprintf("Pillar %d", i+1),
			Description: fmt.Sprintf("Description %d", i+1),
		}
	}
	return out
}

// NewTestActions returns n distinct action texts for a pillar.
func NewTestActions(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s action %d", prefix, i+1)
	}
	return out
}

// NewTestMandalart returns a complete 8x8 mandalart for goal.
func NewTestMandalart(goal string) domain.MandalartData {
	m := domain.MandalartData{Core: goal}
	for i, p := range NewTestPillars(domain.PillarCount) {
		m.SubGrids = append(m.SubGrids, domain.SubGrid{
			ID:           fmt.Sprintf("grid_%d", i+1),
			Title:        p.Title,
			OpacityLevel: i + 1,
			ColorIndex:   i + 1,
			Actions:      NewTestActions(p.Title, domain.ActionsPerPillar),
		})
	}
	return m
}

func NewTestQuickContext() domain.QuickContext {
	return domain.QuickContext{
		Nickname:      "tester",
		LifeArea:      "건강",
		CurrentStatus: "직장인",
		GoalStyle:     "도전적",
		YearKeyword:   "성장",
	}
}
