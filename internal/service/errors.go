package service

import "errors"

var (
	// ErrWrongStep is returned when a use case is invoked from a step that
	// does not offer it.
	ErrWrongStep = errors.New("not available at the current step")

	// ErrMissingContext is returned when the session lacks data the use
	// case builds on, such as the goal or the archetype.
	ErrMissingContext = errors.New("session is missing required context")

	// ErrInvalidInput is returned for malformed user input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNothingToRegenerate is returned when every suggestion is selected.
	ErrNothingToRegenerate = errors.New("nothing to regenerate")

	// ErrSessionChanged is returned when the session was modified, for
	// example reset from another view, while a use case was waiting on a
	// suggestion. Nothing is written; the caller should re-read and retry.
	ErrSessionChanged = errors.New("session changed while the request was running")
)
