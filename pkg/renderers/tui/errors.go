package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoChoices is returned when a select widget has nothing to offer.
	ErrNoChoices = errors.New("tui: no choices to select from")
)
