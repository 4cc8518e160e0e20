// SPDX-License-Identifier: MPL-2.0

package argv

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"mvdan.cc/sh/v3/shell"
)

const (
	// VerboseKey is the reserved long option that requests verbose output.
	VerboseKey = "verbose"
	// DebugKey is the reserved long option that requests a full diagnostic trace on failure.
	DebugKey = "debug"
	// HelpKey is the reserved long option that requests command usage instead of dispatch.
	HelpKey = "help"

	// flagValue is bound to options given without a value.
	flagValue = "true"
)

// ErrInvalidLine is returned when a command line cannot be split into words.
var ErrInvalidLine = errors.New("invalid command line")

type (
	// Invocation is the structured result of tokenizing one argument vector.
	// It is produced once per process invocation and consumed once by the dispatcher.
	Invocation struct {
		// Command is the trimmed first token, or "" when no arguments were given.
		Command string
		// Short maps single-character option keys to their raw values.
		Short map[string]string
		// Long maps long option keys to their raw values.
		Long map[string]string
		// Positional holds the leftover arguments in encounter order.
		Positional []string
	}

	// InvalidLineError is returned when ParseLine cannot split its input.
	// It wraps ErrInvalidLine for errors.Is() compatibility.
	InvalidLineError struct {
		Line string
		Err  error
	}
)

// Error implements the error interface.
func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("invalid command line %q: %v", e.Line, e.Err)
}

// Unwrap returns both the sentinel and the underlying shell error.
func (e *InvalidLineError) Unwrap() []error {
	return []error{ErrInvalidLine, e.Err}
}

// ReservedKeys returns the long option keys that never take a value.
func ReservedKeys() []string {
	return []string{VerboseKey, DebugKey, HelpKey}
}

// Parse tokenizes args. An empty vector yields an Invocation with an empty
// command, which callers treat as a request for the command summary.
func Parse(args []string) Invocation {
	inv := Invocation{
		Short: make(map[string]string),
		Long:  make(map[string]string),
	}
	if len(args) == 0 {
		return inv
	}
	inv.Command = strings.TrimSpace(args[0])

	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		word := rest[i]
		runes := utf8.RuneCountInString(word)
		switch {
		case strings.HasPrefix(word, "--"):
			key := word[2:]
			if isReserved(key) {
				inv.Long[key] = flagValue
				continue
			}
			value, consumed := optionValue(rest, i)
			if consumed {
				i++
			}
			inv.Long[key] = value

		case strings.HasPrefix(word, "-") && runes == 2:
			value, consumed := optionValue(rest, i)
			if consumed {
				i++
			}
			inv.Short[word[1:]] = value

		case strings.HasPrefix(word, "-") && runes > 2:
			// -abc is -a -b -c; bundled flags never take a value.
			for _, c := range word[1:] {
				inv.Short[string(c)] = flagValue
			}

		default:
			inv.Positional = append(inv.Positional, word)
		}
	}
	return inv
}

// ParseLine splits a shell-quoted command line into words and tokenizes them.
// Parameter expansion is disabled; "$HOME" stays literal.
func ParseLine(line string) (Invocation, error) {
	words, err := shell.Fields(line, func(name string) string { return "$" + name })
	if err != nil {
		return Invocation{}, &InvalidLineError{Line: line, Err: err}
	}
	return Parse(words), nil
}

// optionValue decides whether the token after rest[i] is the option's value.
// It returns the value and whether the lookahead token was consumed.
func optionValue(rest []string, i int) (string, bool) {
	if i+1 >= len(rest) {
		return flagValue, false
	}
	next := rest[i+1]
	if looksLikeOption(next) {
		return flagValue, false
	}
	return next, true
}

// looksLikeOption reports whether a token starts a new option. A dash
// followed by a digit is a negative number, not an option.
func looksLikeOption(token string) bool {
	if !strings.HasPrefix(token, "-") || len(token) < 2 {
		return false
	}
	c := token[1]
	return c < '0' || c > '9'
}

func isReserved(key string) bool {
	return key == VerboseKey || key == DebugKey || key == HelpKey
}

// Help reports whether --help was given.
func (inv Invocation) Help() bool {
	_, ok := inv.Long[HelpKey]
	return ok
}

// Debug reports whether --debug was given.
func (inv Invocation) Debug() bool {
	_, ok := inv.Long[DebugKey]
	return ok
}

// Verbose reports whether --verbose was given.
func (inv Invocation) Verbose() bool {
	_, ok := inv.Long[VerboseKey]
	return ok
}

// IsEmpty reports whether no command was given.
func (inv Invocation) IsEmpty() bool {
	return inv.Command == ""
}

// Option resolves an option value by short key first, then long key.
func (inv Invocation) Option(short, long string) (string, bool) {
	if short != "" {
		if v, ok := inv.Short[short]; ok {
			return v, true
		}
	}
	if long != "" {
		if v, ok := inv.Long[long]; ok {
			return v, true
		}
	}
	return "", false
}

// Clone returns a deep copy so callers can adjust positionals without
// touching the original invocation.
func (inv Invocation) Clone() Invocation {
	return Invocation{
		Command:    inv.Command,
		Short:      maps.Clone(inv.Short),
		Long:       maps.Clone(inv.Long),
		Positional: slices.Clone(inv.Positional),
	}
}
