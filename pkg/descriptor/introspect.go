// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// Struct tags read from handler fields.
const (
	TagCLI      = "cli"
	TagHelp     = "help"
	TagValidate = "validate"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// Describer is implemented by handlers that refine their introspected
// descriptors, typically to name arguments, declare defaults and add
// summaries. Describe is called once per command.
type Describer interface {
	Describe(cmd *Command)
}

// HandlerName returns the identity recorded in descriptors for handler
// values of type t: the package-qualified type name, e.g. "files.Handler".
func HandlerName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}

// Introspect derives descriptors from a live handler, which must be a
// pointer to a struct.
//
// Methods named Cmd<Name> become commands; their parameters, after an optional
// leading context.Context, become arguments named arg0, arg1, ... Exported
// fields tagged `cli:"o"` or `cli:"o,long=output"` become options shared by
// every command of the handler; `help` and `validate` tags fill the option
// summary and constraint.
func Introspect(handler any) ([]Command, error) {
	t := reflect.TypeOf(handler)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, &InvalidDescriptorError{Reason: fmt.Sprintf("handler must be a pointer to a struct, got %v", t)}
	}

	options, err := introspectOptions(t.Elem())
	if err != nil {
		return nil, err
	}

	describer, _ := handler.(Describer)
	var cmds []Command
	for i := range t.NumMethod() {
		m := t.Method(i)
		name, ok := CommandName(m.Name)
		if !ok {
			continue
		}
		params, _, err := signature(m.Type, 1)
		if err != nil {
			return nil, &InvalidDescriptorError{Command: name, Field: "method", Reason: m.Name + ": " + err.Error()}
		}

		cmd := Command{
			Name:    name,
			Handler: HandlerName(t),
			Method:  m.Name,
			Options: append([]Option(nil), options...),
		}
		for pos, p := range params {
			cmd.Args = append(cmd.Args, Argument{
				Name:     fmt.Sprintf("arg%d", pos),
				Position: pos,
				Type:     p.String(),
			})
		}
		if describer != nil {
			describer.Describe(&cmd)
		}

		cmd = cmd.Normalize()
		if err := cmd.Validate(); err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func introspectOptions(t reflect.Type) ([]Option, error) {
	var options []Option
	for _, f := range reflect.VisibleFields(t) {
		tag, ok := f.Tag.Lookup(TagCLI)
		if !ok || tag == "-" {
			continue
		}
		if !f.IsExported() {
			return nil, &InvalidDescriptorError{Field: "options", Reason: fmt.Sprintf("field %s is tagged but not exported", f.Name)}
		}
		opt, err := ParseTag(tag)
		if err != nil {
			return nil, &InvalidDescriptorError{Field: "options", Reason: fmt.Sprintf("field %s: %v", f.Name, err)}
		}
		opt.Field = f.Name
		if opt.Long == "" {
			opt.Long = KebabCase(f.Name)
		}
		opt.Summary = f.Tag.Get(TagHelp)
		opt.Constraint = f.Tag.Get(TagValidate)
		options = append(options, opt)
	}
	return options, nil
}

// ParseTag parses a `cli` struct tag of the form `short[,long=key]`.
func ParseTag(tag string) (Option, error) {
	short, rest, _ := strings.Cut(tag, ",")
	opt := Option{Short: strings.TrimSpace(short)}
	for part := range strings.SplitSeq(rest, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok || key != "long" {
			return Option{}, fmt.Errorf("unknown cli tag option %q", part)
		}
		opt.Long = value
	}
	return opt, nil
}

// signature splits a method type into argument parameters, skipping the
// first skip inputs (the receiver for method expressions) and an optional
// context.Context. It accepts operations returning nothing or a single error.
func signature(mt reflect.Type, skip int) (params []reflect.Type, takesContext bool, err error) {
	if mt.IsVariadic() {
		return nil, false, fmt.Errorf("variadic operations are not supported")
	}
	switch {
	case mt.NumOut() == 0:
	case mt.NumOut() == 1 && mt.Out(0) == errorType:
	default:
		return nil, false, fmt.Errorf("operation must return nothing or error, got %s", mt)
	}

	start := skip
	if mt.NumIn() > start && mt.In(start) == contextType {
		takesContext = true
		start++
	}
	for i := start; i < mt.NumIn(); i++ {
		params = append(params, mt.In(i))
	}
	return params, takesContext, nil
}
