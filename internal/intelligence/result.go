package intelligence

import (
	"errors"
	"fmt"
)

// ErrShortResult is returned when a suggestion call yields fewer usable
// items than the caller can build on.
var ErrShortResult = errors.New("suggestion returned too few items")

// ErrUnknownArchetype is returned for archetypes outside the four known ones.
var ErrUnknownArchetype = errors.New("unknown archetype")

// Status classifies how much of a request a suggestion call satisfied.
type Status string

const (
	StatusFull    Status = "full"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Result carries suggestion items together with how many were asked for.
type Result[T any] struct {
	Status    Status `json:"status"`
	Items     []T    `json:"items"`
	Requested int    `json:"requested"`
}

func newResult[T any](items []T, requested int) Result[T] {
	if items == nil {
		items = []T{}
	}
	if len(items) > requested && requested > 0 {
		items = items[:requested]
	}
	status := StatusFull
	switch {
	case len(items) == 0:
		status = StatusFailed
	case len(items) < requested:
		status = StatusPartial
	}
	return Result[T]{Status: status, Items: items, Requested: requested}
}

// Err returns ErrShortResult for a failed result and nil otherwise.
func (r Result[T]) Err() error {
	if r.Status == StatusFailed {
		return fmt.Errorf("%w: got 0 of %d", ErrShortResult, r.Requested)
	}
	return nil
}

// Require returns ErrShortResult unless at least n items are present.
func (r Result[T]) Require(n int) error {
	if len(r.Items) < n {
		return fmt.Errorf("%w: got %d of %d", ErrShortResult, len(r.Items), n)
	}
	return nil
}
