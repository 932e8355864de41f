package session

import (
	"strings"

	"github.com/alexanderramin/mandalart/internal/domain"
)

// ProjectName is recorded on every ProjectInfo.
const ProjectName = "AI Mandalart"

// SetStep moves the wizard to Step. Without strict transitions any known
// step is accepted.
type SetStep struct {
	Step domain.Step `json:"step"`
}

func (SetStep) Name() string { return "set_step" }

func (a SetStep) Apply(s domain.Session, env Env) (domain.Session, Outcome) {
	if !domain.ValidStep(a.Step) {
		return s, OutcomeRejected
	}
	if env.Strict && !CanTransition(s, a.Step) {
		return s, OutcomeIllegalTransition
	}
	s.CurrentStep = a.Step
	return s, OutcomeApplied
}

// SetQuickContext stores the profile and advances to GOAL_INPUT. The
// profile is frozen once the wizard has moved on.
type SetQuickContext struct {
	Context domain.QuickContext `json:"context"`
}

func (SetQuickContext) Name() string { return "set_quick_context" }

func (a SetQuickContext) Apply(s domain.Session, _ Env) (domain.Session, Outcome) {
	if s.CurrentStep != domain.StepQuickContext {
		return s, OutcomeRejected
	}
	qc := a.Context.Canonicalize()
	s.QuickContext = &qc
	s.CurrentStep = domain.StepGoalInput
	return s, OutcomeApplied
}

// SetGoal stores the trimmed goal and makes sure a persona exists.
type SetGoal struct {
	Goal string `json:"goal"`
}

func (SetGoal) Name() string { return "set_goal" }

func (a SetGoal) Apply(s domain.Session, _ Env) (domain.Session, Outcome) {
	goal := strings.TrimSpace(a.Goal)
	if goal == "" {
		return s, OutcomeRejected
	}
	if s.UserContext == nil {
		s.UserContext = &domain.UserContext{
			Persona: domain.Persona{IdentityAnswers: []domain.InterviewAnswer{}},
		}
	}
	s.UserContext.Goal = goal
	return s, OutcomeApplied
}

// SetArchetype records the detected archetype with the store clock time.
type SetArchetype struct {
	Archetype domain.Archetype `json:"archetype"`
}

func (SetArchetype) Name() string { return "set_archetype" }

func (a SetArchetype) Apply(s domain.Session, env Env) (domain.Session, Outcome) {
	if !domain.ValidArchetypes[a.Archetype] {
		return s, OutcomeRejected
	}
	s.ProjectInfo = &domain.ProjectInfo{
		Name:      ProjectName,
		Archetype: a.Archetype,
		CreatedAt: env.Now.UTC(),
	}
	return s, OutcomeApplied
}

// AddInterviewAnswer appends one answer to the persona.
type AddInterviewAnswer struct {
	Answer domain.InterviewAnswer `json:"answer"`
}

func (AddInterviewAnswer) Name() string { return "add_interview_answer" }

func (a AddInterviewAnswer) Apply(s domain.Session, _ Env) (domain.Session, Outcome) {
	if s.UserContext == nil || strings.TrimSpace(a.Answer.Answer) == "" {
		return s, OutcomeRejected
	}
	s.UserContext.Persona.IdentityAnswers = append(s.UserContext.Persona.IdentityAnswers, a.Answer)
	return s, OutcomeApplied
}

// SetVibeSummary stores the persona summary. It needs at least one answer.
type SetVibeSummary struct {
	Summary string `json:"summary"`
}

func (SetVibeSummary) Name() string { return "set_vibe_summary" }

func (a SetVibeSummary) Apply(s domain.Session, _ Env) (domain.Session, Outcome) {
	if s.UserContext == nil || len(s.UserContext.Persona.IdentityAnswers) == 0 {
		return s, OutcomeRejected
	}
	s.UserContext.Persona.VibeSummary = strings.TrimSpace(a.Summary)
	return s, OutcomeApplied
}

// SetSuggestedPillars replaces the suggestion pool. The selection is kept.
type SetSuggestedPillars struct {
	Pillars []domain.Pillar `json:"pillars"`
}

func (SetSuggestedPillars) Name() string { return "set_suggested_pillars" }

func (a SetSuggestedPillars) Apply(s domain.Session, _ Env) (domain.Session, Outcome) {
	pool := make([]domain.Pillar, len(a.Pillars))
	for i, p := range a.Pillars {
		pool[i] = p.Unselected()
	}
	s.SuggestedPillars = pool
	return s, OutcomeApplied
}

// SetMandalart writes the finished grid. It accepts only a complete grid
// and only once per session.
type SetMandalart struct {
	Mandalart domain.MandalartData `json:"mandalart"`
}

func (SetMandalart) Name() string { return "set_mandalart" }

func (a SetMandalart) Apply(s domain.Session, _ Env) (domain.Session, Outcome) {
	if s.Mandalart != nil || a.Mandalart.Validate() != nil {
		return s, OutcomeRejected
	}
	m := domain.MandalartData{Core: a.Mandalart.Core}
	for _, g := range a.Mandalart.SubGrids {
		g.Actions = append([]string{}, g.Actions...)
		m.SubGrids = append(m.SubGrids, g)
	}
	s.Mandalart = &m
	s.ActionSelection = nil
	return s, OutcomeApplied
}

// EnterDiscoveryMode flags the session and jumps to DISCOVERY.
type EnterDiscoveryMode struct{}

func (EnterDiscoveryMode) Name() string { return "enter_discovery_mode" }

func (EnterDiscoveryMode) Apply(s domain.Session, env Env) (domain.Session, Outcome) {
	if env.Strict && !CanTransition(s, domain.StepDiscovery) {
		return s, OutcomeIllegalTransition
	}
	s.IsDiscoveryMode = true
	s.CurrentStep = domain.StepDiscovery
	return s, OutcomeApplied
}

// AddDiscoveryAnswer appends one discovery answer.
type AddDiscoveryAnswer struct {
	Answer domain.InterviewAnswer `json:"answer"`
}

func (AddDiscoveryAnswer) Name() string { return "add_discovery_answer" }

func (a AddDiscoveryAnswer) Apply(s domain.Session, _ Env) (domain.Session, Outcome) {
	if !s.IsDiscoveryMode || strings.TrimSpace(a.Answer.Answer) == "" {
		return s, OutcomeRejected
	}
	s.DiscoveryAnswers = append(s.DiscoveryAnswers, a.Answer)
	return s, OutcomeApplied
}

// SetSuggestedGoals replaces the goals proposed by discovery.
type SetSuggestedGoals struct {
	Goals []string `json:"goals"`
}

func (SetSuggestedGoals) Name() string { return "set_suggested_goals" }

func (a SetSuggestedGoals) Apply(s domain.Session, _ Env) (domain.Session, Outcome) {
	if !s.IsDiscoveryMode {
		return s, OutcomeRejected
	}
	goals := make([]string, 0, len(a.Goals))
	for _, g := range a.Goals {
		if g = strings.TrimSpace(g); g != "" {
			goals = append(goals, g)
		}
	}
	s.SuggestedGoals = goals
	return s, OutcomeApplied
}

// BackToGoalInput returns to goal entry, leaving discovery mode. Prior
// answers are kept so the goal can be refined.
type BackToGoalInput struct{}

func (BackToGoalInput) Name() string { return "back_to_goal_input" }

func (BackToGoalInput) Apply(s domain.Session, env Env) (domain.Session, Outcome) {
	if env.Strict && !CanTransition(s, domain.StepGoalInput) {
		return s, OutcomeIllegalTransition
	}
	s.IsDiscoveryMode = false
	s.CurrentStep = domain.StepGoalInput
	return s, OutcomeApplied
}

// ResetSession restores the initial session. The store also clears the
// persisted slot.
type ResetSession struct{}

func (ResetSession) Name() string { return "reset_session" }

func (ResetSession) Apply(domain.Session, Env) (domain.Session, Outcome) {
	return domain.NewSession(), OutcomeApplied
}
