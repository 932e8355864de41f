package session

// Outcome describes what an action did to the session. Anything other
// than OutcomeApplied leaves the session untouched.
type Outcome string

const (
	OutcomeApplied           Outcome = "applied"
	OutcomeSelectionFull     Outcome = "selection_full"
	OutcomeNotFound          Outcome = "not_found"
	OutcomeRejected          Outcome = "rejected"
	OutcomeIllegalTransition Outcome = "illegal_transition"
	// OutcomeStale is reported by DispatchIf when the session changed
	// after the caller read it.
	OutcomeStale Outcome = "stale"
)

// Applied reports whether the session changed.
func (o Outcome) Applied() bool { return o == OutcomeApplied }
