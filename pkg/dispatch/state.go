// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"errors"
	"fmt"
)

const (
	// StateIdle indicates no dispatch has started.
	StateIdle State = iota
	// StateResolving indicates the command name is being looked up.
	StateResolving
	// StateReconciling indicates positionals are being matched to declared arguments.
	StateReconciling
	// StateConverting indicates arguments and options are being converted.
	StateConverting
	// StateValidating indicates the external validator is running.
	StateValidating
	// StateInvoking indicates the operation is running.
	StateInvoking
	// StateDone is terminal: the dispatch completed, either by invoking the
	// operation or by rendering help.
	StateDone
	// StateFailed is terminal: the dispatch stopped with an error.
	StateFailed
)

// ErrInvalidState is returned when a State value is not one of the defined dispatch states.
var ErrInvalidState = errors.New("invalid state")

type (
	// State represents the progress of a single dispatch.
	State int32

	// InvalidStateError is returned when a State value is not recognized.
	// It wraps ErrInvalidState for errors.Is() compatibility.
	InvalidStateError struct {
		Value State
	}
)

// String returns a human-readable representation of the dispatch state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateReconciling:
		return "reconciling"
	case StateConverting:
		return "converting"
	case StateValidating:
		return "validating"
	case StateInvoking:
		return "invoking"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Error implements the error interface for InvalidStateError.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state %d (valid: 0=idle, 1=resolving, 2=reconciling, 3=converting, 4=validating, 5=invoking, 6=done, 7=failed)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// Validate returns nil if the State is one of the defined dispatch states,
// or an error wrapping ErrInvalidState if it is not.
func (s State) Validate() error {
	switch s {
	case StateIdle, StateResolving, StateReconciling, StateConverting,
		StateValidating, StateInvoking, StateDone, StateFailed:
		return nil
	default:
		return &InvalidStateError{Value: s}
	}
}

// IsTerminal returns true if the state is a terminal state (Done or Failed).
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// canAdvance reports whether a dispatch in state s may move to next.
// Dispatches only move forward; stages may be skipped.
func (s State) canAdvance(next State) bool {
	return !s.IsTerminal() && next > s && next.Validate() == nil
}
