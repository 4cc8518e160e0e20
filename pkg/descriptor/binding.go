// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"context"
	"fmt"
	"reflect"
	"slices"
)

type (
	// Binding is the call surface of one descriptor against one handler
	// instance, resolved from the descriptor's declared method and field names.
	Binding struct {
		cmd          Command
		handler      any
		method       reflect.Value
		params       []reflect.Type
		takesContext bool
		returnsError bool
		options      []BoundOption
	}

	// BoundOption is an option descriptor tied to its handler field.
	BoundOption struct {
		Option
		// Type is the declared type of the handler field.
		Type  reflect.Type
		field reflect.Value
	}
)

// Bind resolves cmd against handler, a pointer to a struct. It fails with an
// *InvalidDescriptorError when the method or a field is missing, the operation
// signature is unsupported, or a declared argument type disagrees with the
// parameter type.
func Bind(cmd Command, handler any) (*Binding, error) {
	cmd = cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	invalid := func(field, format string, args ...any) error {
		return &InvalidDescriptorError{Command: cmd.Name, Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	hv := reflect.ValueOf(handler)
	if !hv.IsValid() || hv.Kind() != reflect.Pointer || hv.IsNil() || hv.Elem().Kind() != reflect.Struct {
		return nil, invalid("handler", "handler must be a non-nil pointer to a struct, got %T", handler)
	}

	method := hv.MethodByName(cmd.Method)
	if !method.IsValid() {
		return nil, invalid("method", "%T has no method %s", handler, cmd.Method)
	}
	params, takesContext, err := signature(method.Type(), 0)
	if err != nil {
		return nil, invalid("method", "%s: %v", cmd.Method, err)
	}
	if len(params) != len(cmd.Args) {
		return nil, invalid("args", "%s takes %d arguments, descriptor declares %d", cmd.Method, len(params), len(cmd.Args))
	}
	for i, a := range cmd.Args {
		if a.Type != params[i].String() {
			return nil, invalid("args", "argument %q is declared as %s but %s takes %s", a.Name, a.Type, cmd.Method, params[i])
		}
	}

	b := &Binding{
		cmd:          cmd,
		handler:      handler,
		method:       method,
		params:       params,
		takesContext: takesContext,
		returnsError: method.Type().NumOut() == 1,
	}

	st := hv.Elem()
	for _, o := range cmd.Options {
		sf, ok := st.Type().FieldByName(o.Field)
		if !ok || !sf.IsExported() {
			return nil, invalid("options", "%T has no exported field %s", handler, o.Field)
		}
		fv, err := st.FieldByIndexErr(sf.Index)
		if err != nil {
			return nil, invalid("options", "field %s: %v", o.Field, err)
		}
		if !fv.CanSet() {
			return nil, invalid("options", "field %s cannot be set", o.Field)
		}
		b.options = append(b.options, BoundOption{Option: o, Type: sf.Type, field: fv})
	}
	return b, nil
}

// Command returns the normalized descriptor.
func (b *Binding) Command() Command { return b.cmd }

// Handler returns the bound handler instance.
func (b *Binding) Handler() any { return b.handler }

// Params returns the argument parameter types in position order.
func (b *Binding) Params() []reflect.Type { return slices.Clone(b.params) }

// Options returns the bound options in declaration order.
func (b *Binding) Options() []BoundOption { return slices.Clone(b.options) }

// CheckArgs reports whether args can be passed to the operation: one value
// per parameter, each nil or assignable to the parameter type.
func (b *Binding) CheckArgs(args []any) error {
	if len(args) != len(b.params) {
		return fmt.Errorf("%s: got %d arguments, want %d", b.cmd.Method, len(args), len(b.params))
	}
	for i, a := range args {
		if a == nil {
			continue
		}
		if t := reflect.TypeOf(a); !t.AssignableTo(b.params[i]) {
			return fmt.Errorf("%s: argument %d is %s, want %s", b.cmd.Method, i, t, b.params[i])
		}
	}
	return nil
}

// Call invokes the operation. args must hold one value per parameter; nil
// passes the parameter's zero value. The operation's error is returned as is.
func (b *Binding) Call(ctx context.Context, args []any) error {
	if err := b.CheckArgs(args); err != nil {
		return err
	}

	in := make([]reflect.Value, 0, len(args)+1)
	if b.takesContext {
		in = append(in, reflect.ValueOf(&ctx).Elem())
	}
	for i, a := range args {
		if a == nil {
			in = append(in, reflect.Zero(b.params[i]))
			continue
		}
		in = append(in, reflect.ValueOf(a))
	}

	out := b.method.Call(in)
	if b.returnsError && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}

// Set stores v in the handler field.
func (o BoundOption) Set(v any) error {
	if v == nil {
		o.field.SetZero()
		return nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(o.Type) {
		return fmt.Errorf("option %s: value is %s, want %s", o.LongKey(), rv.Type(), o.Type)
	}
	o.field.Set(rv)
	return nil
}

// Value returns the current field value.
func (o BoundOption) Value() any {
	return o.field.Interface()
}
