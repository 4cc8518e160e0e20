// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/invowk/cliframe/pkg/descriptor"
)

const (
	// KindOptions marks violations found in option fields.
	KindOptions ViolationKind = "options"
	// KindArguments marks violations found in positional arguments.
	KindArguments ViolationKind = "arguments"
)

var (
	// ErrCommandNotFound is returned when the invocation names no registered command.
	ErrCommandNotFound = errors.New("command not found")

	// ErrWrongArgumentType is returned when a positional cannot be converted
	// to its parameter type.
	ErrWrongArgumentType = errors.New("argument has wrong type")

	// ErrWrongOptionType is returned when an option value cannot be converted
	// to its field type.
	ErrWrongOptionType = errors.New("option has wrong type")

	// ErrConstraintViolation is returned when the external validator rejects
	// options or arguments.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrHandlerUnavailable is returned when no handler instance can be found
	// or built for a command.
	ErrHandlerUnavailable = errors.New("handler unavailable")

	// ErrInternal is returned for failures that indicate a framework defect
	// rather than bad input or a failing operation.
	ErrInternal = errors.New("internal error")

	// ErrInvalidDescriptor is returned when a descriptor cannot be bound to its handler.
	ErrInvalidDescriptor = descriptor.ErrInvalidDescriptor
)

type (
	// ViolationKind names the group a ConstraintViolationError covers.
	ViolationKind string

	// Violation is one rejected property.
	Violation struct {
		// Path is the option long key or the argument name.
		Path    string
		Message string
	}

	// CommandNotFoundError is returned when no command is registered under Name.
	// It wraps ErrCommandNotFound for errors.Is() compatibility.
	CommandNotFoundError struct {
		Name string
	}

	// WrongArgumentTypeError is returned when a positional cannot be converted.
	// It wraps ErrWrongArgumentType and the conversion error.
	WrongArgumentTypeError struct {
		Name  string
		Type  string
		Value string
		Err   error
	}

	// WrongOptionTypeError is returned when an option value cannot be converted.
	// It wraps ErrWrongOptionType and the conversion error.
	WrongOptionTypeError struct {
		Short string
		Long  string
		// Field is the handler field the option is bound to.
		Field string
		Type  string
		Value string
		Err   error
	}

	// ConstraintViolationError aggregates every violation of one kind.
	// It wraps ErrConstraintViolation for errors.Is() compatibility.
	ConstraintViolationError struct {
		Kind       ViolationKind
		Violations []Violation
	}

	// HandlerUnavailableError is returned when a command's handler identity
	// has neither a registered instance nor a factory.
	HandlerUnavailableError struct {
		Command string
		Handler string
		Err     error
	}

	// InternalError wraps failures that are not part of the dispatch taxonomy.
	InternalError struct {
		Op  string
		Err error
	}
)

// Error implements the error interface.
func (e *CommandNotFoundError) Error() string {
	if e.Name == "" {
		return "command not found"
	}
	return fmt.Sprintf("command not found: %s", e.Name)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *CommandNotFoundError) Unwrap() error {
	return ErrCommandNotFound
}

// Error implements the error interface.
func (e *WrongArgumentTypeError) Error() string {
	return fmt.Sprintf("argument %s has wrong type: expected %s, got %q: %v", e.Name, e.Type, e.Value, e.Err)
}

// Unwrap returns the sentinel and the conversion error.
func (e *WrongArgumentTypeError) Unwrap() []error {
	return []error{ErrWrongArgumentType, e.Err}
}

// Key returns the option as written on the command line, e.g. "-o/--output".
func (e *WrongOptionTypeError) Key() string {
	switch {
	case e.Short != "" && e.Long != "":
		return "-" + e.Short + "/--" + e.Long
	case e.Short != "":
		return "-" + e.Short
	default:
		return "--" + e.Long
	}
}

// Error implements the error interface.
func (e *WrongOptionTypeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("option %s has wrong type: expected %s, got %q: %v", e.Key(), e.Type, e.Value, e.Err)
	}
	return fmt.Sprintf("option %s (field %s) has wrong type: expected %s, got %q: %v", e.Key(), e.Field, e.Type, e.Value, e.Err)
}

// Unwrap returns the sentinel and the conversion error.
func (e *WrongOptionTypeError) Unwrap() []error {
	return []error{ErrWrongOptionType, e.Err}
}

// Error implements the error interface.
func (e *ConstraintViolationError) Error() string {
	var sb strings.Builder
	switch e.Kind {
	case KindOptions:
		sb.WriteString("options validation failed")
	case KindArguments:
		sb.WriteString("argument validation failed")
	default:
		sb.WriteString("validation failed")
	}
	for i, v := range e.Violations {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString("; ")
		}
		sb.WriteString(v.Path)
		sb.WriteString(" ")
		sb.WriteString(v.Message)
	}
	return sb.String()
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *ConstraintViolationError) Unwrap() error {
	return ErrConstraintViolation
}

// Paths returns the violated property paths in report order.
func (e *ConstraintViolationError) Paths() []string {
	paths := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		paths[i] = v.Path
	}
	return paths
}

// Error implements the error interface.
func (e *HandlerUnavailableError) Error() string {
	msg := fmt.Sprintf("no handler for command %s", e.Command)
	if e.Handler != "" {
		msg += fmt.Sprintf(" (handler %s)", e.Handler)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the sentinel and the factory error, if any.
func (e *HandlerUnavailableError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrHandlerUnavailable}
	}
	return []error{ErrHandlerUnavailable, e.Err}
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s: %v", e.Op, e.Err)
}

// Unwrap returns the sentinel and the underlying failure.
func (e *InternalError) Unwrap() []error {
	return []error{ErrInternal, e.Err}
}
