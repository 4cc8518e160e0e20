// SPDX-License-Identifier: MPL-2.0

package convert

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrConversionUnsupported is returned when no converter can handle a
	// (source, target) pair, or the target has no way to be built from text.
	// It signals a configuration problem rather than bad user input.
	ErrConversionUnsupported = errors.New("conversion unsupported")

	// ErrInvalidValue is returned when a converter was found but the value
	// cannot be parsed as the target type.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidConverter is returned when a converter is registered without a
	// determinable identity or capability contract.
	ErrInvalidConverter = errors.New("invalid converter")
)

type (
	// UnsupportedError is returned when a conversion has no applicable converter.
	// It wraps ErrConversionUnsupported for errors.Is() compatibility.
	UnsupportedError struct {
		Source reflect.Type
		Target reflect.Type
		Reason string
	}

	// ValueError is returned when a value cannot be parsed as the target type.
	// It wraps ErrInvalidValue and, when present, the underlying parse error.
	ValueError struct {
		Value  string
		Target reflect.Type
		Reason string
		Err    error
	}

	// InvalidConverterError is returned by Register for converters whose
	// contract cannot be determined. It wraps ErrInvalidConverter.
	InvalidConverterError struct {
		ID     string
		Reason string
	}
)

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	msg := fmt.Sprintf("no suitable converter from %s to %s", typeName(e.Source), typeName(e.Target))
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *UnsupportedError) Unwrap() error {
	return ErrConversionUnsupported
}

// Error implements the error interface.
func (e *ValueError) Error() string {
	msg := fmt.Sprintf("cannot convert %q to %s", e.Value, typeName(e.Target))
	switch {
	case e.Reason != "":
		msg += ": " + e.Reason
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the sentinel and the underlying parse error, if any.
func (e *ValueError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidValue}
	}
	return []error{ErrInvalidValue, e.Err}
}

// Error implements the error interface.
func (e *InvalidConverterError) Error() string {
	if e.ID == "" {
		return "invalid converter: " + e.Reason
	}
	return fmt.Sprintf("invalid converter %q: %s", e.ID, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidConverterError) Unwrap() error {
	return ErrInvalidConverter
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
