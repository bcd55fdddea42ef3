package pipeline

import "errors"

var (
	// ErrForbidden is returned when a non-administrator attempts a
	// suggestion transition.
	ErrForbidden = errors.New("administrator privilege required")

	// ErrInvalidTransition is returned when a transition is requested from
	// a state that does not allow it.
	ErrInvalidTransition = errors.New("invalid suggestion state transition")

	// ErrNoTopics is returned when no eligible topic remains after seen-
	// and duplicate-filtering.
	ErrNoTopics = errors.New("no eligible topics available")
)
