package confirm

import (
	"errors"
	"fmt"
	"strings"
)

// State is the externally supplied lifecycle of the operation behind the
// button.
type State string

const (
	StateDefault State = "default"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

// ErrUnknownState is returned by ParseState for unsupported values.
var ErrUnknownState = errors.New("confirm: unknown transition state")

// ParseState converts raw into a State. The empty string maps to
// StateDefault.
func ParseState(raw string) (State, error) {
	switch State(strings.ToLower(strings.TrimSpace(raw))) {
	case "", StateDefault:
		return StateDefault, nil
	case StateLoading:
		return StateLoading, nil
	case StateSuccess:
		return StateSuccess, nil
	case StateError:
		return StateError, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownState, raw)
	}
}

// Completed reports whether s is success or error.
func (s State) Completed() bool {
	return s == StateSuccess || s == StateError
}

func (s State) String() string { return string(s) }
