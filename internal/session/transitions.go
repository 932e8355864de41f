package session

import "github.com/alexanderramin/mandalart/internal/domain"

// forward lists the steps reachable from each step when transitions are
// enforced. GOAL_INPUT back-navigation and self transitions are handled in
// CanTransition.
var forward = map[domain.Step][]domain.Step{
	domain.StepQuickContext:    {domain.StepGoalInput},
	domain.StepGoalInput:       {domain.StepDiscovery, domain.StepArchetypeResult},
	domain.StepDiscovery:       {domain.StepGoalInput},
	domain.StepArchetypeResult: {domain.StepInterview},
	domain.StepInterview:       {domain.StepPillarSelection},
	domain.StepPillarSelection: {domain.StepActionSelection},
	domain.StepActionSelection: {domain.StepGenerating, domain.StepResult},
	domain.StepGenerating:      {domain.StepResult},
	domain.StepResult:          nil,
}

// backNavigable are the steps from which GOAL_INPUT can be revisited.
var backNavigable = map[domain.Step]bool{
	domain.StepDiscovery:       true,
	domain.StepArchetypeResult: true,
	domain.StepInterview:       true,
	domain.StepPillarSelection: true,
	domain.StepActionSelection: true,
}

// CanTransition reports whether s may move to next under the enforced
// step table, including the guards on pillar and action completion.
func CanTransition(s domain.Session, next domain.Step) bool {
	from := s.CurrentStep
	if from == next {
		return true
	}
	if next == domain.StepGoalInput && backNavigable[from] {
		return true
	}
	allowed := false
	for _, step := range forward[from] {
		if step == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}
	switch next {
	case domain.StepActionSelection, domain.StepGenerating:
		return len(s.SelectedPillars) == domain.PillarCount
	case domain.StepResult:
		return s.Mandalart != nil
	case domain.StepArchetypeResult:
		return s.Goal() != ""
	}
	return true
}

// NextSteps lists the steps CanTransition accepts from s, in wizard order.
func NextSteps(s domain.Session) []domain.Step {
	var out []domain.Step
	for _, step := range domain.Steps {
		if step != s.CurrentStep && CanTransition(s, step) {
			out = append(out, step)
		}
	}
	return out
}
