// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"errors"
	"fmt"
	"go/token"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// commandMethodPrefix marks handler methods that are exposed as commands.
const commandMethodPrefix = "Cmd"

var (
	// ErrInvalidDescriptor is returned when a descriptor is malformed or does
	// not match the handler it is bound to.
	ErrInvalidDescriptor = errors.New("invalid command descriptor")

	// ErrUnsupportedFormat is returned for descriptor files with an unknown format.
	ErrUnsupportedFormat = errors.New("unsupported descriptor format")

	// reservedLongKeys are handled by the framework and cannot name options.
	reservedLongKeys = []string{"help", "debug", "verbose"}
)

type (
	// Command describes one handler operation exposed as a command.
	Command struct {
		// Name is the command name typed by the user, unique within a registry.
		Name string `json:"cmd" toml:"cmd"`
		// Handler identifies the handler type that owns the operation.
		Handler string `json:"handler,omitempty" toml:"handler,omitempty"`
		// Method is the Go method name. Empty means MethodName(Name).
		Method  string     `json:"method,omitempty" toml:"method,omitempty"`
		Summary string     `json:"summary,omitempty" toml:"summary,omitempty"`
		Args    []Argument `json:"args,omitempty" toml:"args,omitempty"`
		Options []Option   `json:"options,omitempty" toml:"options,omitempty"`
	}

	// Argument describes one positional parameter of an operation.
	Argument struct {
		Name string `json:"name" toml:"name"`
		// Position is the zero-based parameter index, not counting a leading
		// context.Context.
		Position int `json:"position" toml:"position"`
		// Type is the Go type of the parameter as printed by reflect, e.g.
		// "int", "time.Duration" or "*big.Int".
		Type string `json:"type" toml:"type"`
		// Default is the literal used when the argument is not supplied.
		Default *string `json:"default,omitempty" toml:"default,omitempty"`
		Summary string  `json:"summary,omitempty" toml:"summary,omitempty"`
		// Constraint is a CUE expression the converted value must satisfy.
		Constraint string `json:"constraint,omitempty" toml:"constraint,omitempty"`
	}

	// Option describes a value injected into a handler field before the call.
	Option struct {
		Short string `json:"short,omitempty" toml:"short,omitempty"`
		// Long defaults to the kebab-case form of Field.
		Long string `json:"long,omitempty" toml:"long,omitempty"`
		// Field is the exported struct field the value is stored in. It
		// defaults to the CamelCase form of Long.
		Field      string `json:"field,omitempty" toml:"field,omitempty"`
		Summary    string `json:"summary,omitempty" toml:"summary,omitempty"`
		Constraint string `json:"constraint,omitempty" toml:"constraint,omitempty"`
	}

	// Set is the root of a descriptor file.
	Set struct {
		Commands []Command `json:"commands" toml:"commands"`
	}

	// InvalidDescriptorError is returned when a descriptor fails validation.
	// It wraps ErrInvalidDescriptor for errors.Is() compatibility.
	InvalidDescriptorError struct {
		Command string
		Field   string
		Reason  string
	}
)

// Error implements the error interface.
func (e *InvalidDescriptorError) Error() string {
	var b strings.Builder
	b.WriteString("invalid command descriptor")
	if e.Command != "" {
		fmt.Fprintf(&b, " %q", e.Command)
	}
	if e.Field != "" {
		b.WriteString(" (" + e.Field + ")")
	}
	b.WriteString(": " + e.Reason)
	return b.String()
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidDescriptorError) Unwrap() error {
	return ErrInvalidDescriptor
}

// MethodName returns the Go method bound to the command.
func (c Command) MethodName() string {
	if c.Method != "" {
		return c.Method
	}
	return MethodName(c.Name)
}

// Arity returns the number of declared arguments.
func (c Command) Arity() int {
	return len(c.Args)
}

// OrderedArgs returns the arguments sorted by position.
func (c Command) OrderedArgs() []Argument {
	args := slices.Clone(c.Args)
	slices.SortStableFunc(args, func(a, b Argument) int { return a.Position - b.Position })
	return args
}

// ArgNamed returns the argument with the given name, or nil.
func (c *Command) ArgNamed(name string) *Argument {
	for i := range c.Args {
		if c.Args[i].Name == name {
			return &c.Args[i]
		}
	}
	return nil
}

// NameArgs renames the arguments in position order. Extra names are ignored.
func (c *Command) NameArgs(names ...string) {
	for i := range c.Args {
		if pos := c.Args[i].Position; pos < len(names) {
			c.Args[i].Name = names[pos]
		}
	}
}

// OptionNamed returns the option with the given long key, or nil.
func (c *Command) OptionNamed(long string) *Option {
	for i := range c.Options {
		if c.Options[i].LongKey() == long {
			return &c.Options[i]
		}
	}
	return nil
}

// SetDefault sets the literal used when the argument is omitted.
func (a *Argument) SetDefault(value string) {
	a.Default = &value
}

// HasDefault reports whether a default literal is declared.
func (a Argument) HasDefault() bool {
	return a.Default != nil
}

// LongKey returns the long option key.
func (o Option) LongKey() string {
	if o.Long != "" {
		return o.Long
	}
	return KebabCase(o.Field)
}

// FieldName returns the handler field the option is stored in.
func (o Option) FieldName() string {
	if o.Field != "" {
		return o.Field
	}
	return CamelCase(o.Long)
}

// Normalize fills derived names, orders the arguments by position and
// collapses empty lists to nil so descriptors from every format compare equal.
func (c Command) Normalize() Command {
	c.Name = strings.TrimSpace(c.Name)
	c.Method = c.MethodName()
	c.Args = c.OrderedArgs()
	if len(c.Args) == 0 {
		c.Args = nil
	}
	if len(c.Options) == 0 {
		c.Options = nil
	} else {
		opts := make([]Option, len(c.Options))
		for i, o := range c.Options {
			o.Long = o.LongKey()
			o.Field = o.FieldName()
			opts[i] = o
		}
		c.Options = opts
	}
	return c
}

// Validate checks the descriptor for structural problems.
func (c Command) Validate() error {
	invalid := func(field, format string, args ...any) error {
		return &InvalidDescriptorError{Command: c.Name, Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	if c.Name == "" {
		return invalid("cmd", "command name is empty")
	}
	if strings.HasPrefix(c.Name, "-") || strings.IndexFunc(c.Name, unicode.IsSpace) >= 0 {
		return invalid("cmd", "command name must not start with '-' or contain whitespace")
	}
	if m := c.MethodName(); !token.IsIdentifier(m) || !token.IsExported(m) {
		return invalid("method", "%q is not an exported Go method name", m)
	}

	names := make(map[string]bool, len(c.Args))
	positions := make([]bool, len(c.Args))
	for _, a := range c.Args {
		switch {
		case a.Name == "":
			return invalid("args", "argument at position %d has no name", a.Position)
		case names[a.Name]:
			return invalid("args", "duplicate argument %q", a.Name)
		case a.Type == "":
			return invalid("args", "argument %q has no type", a.Name)
		case a.Position < 0 || a.Position >= len(c.Args):
			return invalid("args", "argument %q has position %d, want 0..%d", a.Name, a.Position, len(c.Args)-1)
		case positions[a.Position]:
			return invalid("args", "two arguments share position %d", a.Position)
		}
		names[a.Name] = true
		positions[a.Position] = true
	}

	shorts := make(map[string]bool, len(c.Options))
	longs := make(map[string]bool, len(c.Options))
	fields := make(map[string]bool, len(c.Options))
	for _, o := range c.Options {
		long := o.LongKey()
		switch {
		case o.Short == "" && long == "":
			return invalid("options", "option has neither a short nor a long key")
		case o.Short != "" && utf8.RuneCountInString(o.Short) != 1:
			return invalid("options", "short key %q must be a single character", o.Short)
		case o.Short == "-":
			return invalid("options", "short key must not be '-'")
		case strings.HasPrefix(long, "-"):
			return invalid("options", "long key %q must not start with '-'", long)
		case slices.Contains(reservedLongKeys, long):
			return invalid("options", "long key %q is reserved", long)
		case o.Short != "" && shorts[o.Short]:
			return invalid("options", "duplicate short key %q", o.Short)
		case long != "" && longs[long]:
			return invalid("options", "duplicate long key %q", long)
		}
		field := o.FieldName()
		if !token.IsIdentifier(field) || !token.IsExported(field) {
			return invalid("options", "option %q is bound to %q, which is not an exported field name", long, field)
		}
		if fields[field] {
			return invalid("options", "two options bind field %s", field)
		}
		shorts[o.Short], longs[long], fields[field] = true, true, true
	}
	return nil
}

// Validate checks every command and rejects duplicate names.
func (s Set) Validate() error {
	seen := make(map[string]bool, len(s.Commands))
	for _, c := range s.Commands {
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.Name] {
			return &InvalidDescriptorError{Command: c.Name, Field: "cmd", Reason: "command declared twice"}
		}
		seen[c.Name] = true
	}
	return nil
}

// CommandName derives a command name from a method name: CmdListFiles becomes
// "list-files". It reports false for methods without the Cmd prefix.
func CommandName(method string) (string, bool) {
	rest, ok := strings.CutPrefix(method, commandMethodPrefix)
	if !ok || rest == "" {
		return "", false
	}
	if r, _ := utf8.DecodeRuneInString(rest); !unicode.IsUpper(r) {
		return "", false
	}
	return KebabCase(rest), true
}

// MethodName derives the handler method for a command name: "list-files"
// becomes CmdListFiles.
func MethodName(command string) string {
	return commandMethodPrefix + CamelCase(command)
}

// KebabCase converts a Go identifier to lower kebab case. Acronyms stay
// together: HTTPGet becomes "http-get".
func KebabCase(ident string) string {
	runes := []rune(ident)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('-')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// CamelCase converts a kebab- or snake-case name to an exported Go identifier.
func CamelCase(name string) string {
	var b strings.Builder
	for part := range strings.FieldsFuncSeq(name, func(r rune) bool { return r == '-' || r == '_' }) {
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}
	return b.String()
}
