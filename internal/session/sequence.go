package session

import (
	"strings"

	"github.com/alexanderramin/mandalart/internal/domain"
)

// Sequence applies its actions to one copy of the session as a single
// mutation: either every action applies and the result is persisted and
// published once, or the first outcome that is not applied is returned and
// the session is left as it was. ResetSession cannot be part of a sequence.
type Sequence struct {
	Actions []Action
}

// Name joins the names of the steps, e.g. "set_goal+set_archetype".
func (q Sequence) Name() string {
	names := make([]string, len(q.Actions))
	for i, a := range q.Actions {
		names[i] = a.Name()
	}
	return strings.Join(names, "+")
}

func (q Sequence) Apply(s domain.Session, env Env) (domain.Session, Outcome) {
	if len(q.Actions) == 0 {
		return s, OutcomeRejected
	}
	for _, a := range q.Actions {
		if _, reset := a.(ResetSession); reset {
			return s, OutcomeRejected
		}
		var outcome Outcome
		s, outcome = a.Apply(s, env)
		if !outcome.Applied() {
			return s, outcome
		}
	}
	return s, OutcomeApplied
}
