package session

import (
	"time"

	"github.com/alexanderramin/mandalart/internal/domain"
)

// Env carries the store-level inputs a reducer may consult.
type Env struct {
	Now    time.Time
	Strict bool
}

// Action is one session mutation. Apply receives a private copy of the
// current session and returns the next session. When the returned outcome
// is not OutcomeApplied the returned session is discarded.
type Action interface {
	Name() string
	Apply(s domain.Session, env Env) (domain.Session, Outcome)
}
