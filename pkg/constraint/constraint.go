// SPDX-License-Identifier: MPL-2.0

package constraint

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/invowk/cliframe/pkg/descriptor"
	"github.com/invowk/cliframe/pkg/dispatch"
)

// TagValidate is the struct tag consulted for options whose descriptor
// declares no constraint.
const TagValidate = descriptor.TagValidate

// Validator checks values with CUE. It implements dispatch.Validator and is
// safe for concurrent use.
type Validator struct {
	mu       sync.Mutex
	ctx      *cue.Context
	compiled map[string]cue.Value
}

var _ dispatch.Validator = (*Validator)(nil)

// New returns a validator with an empty expression cache.
func New() *Validator {
	return &Validator{
		ctx:      cuecontext.New(),
		compiled: make(map[string]cue.Value),
	}
}

// ValidateOptions checks every option field of handler that carries a
// constraint. All violations are reported together.
func (v *Validator) ValidateOptions(_ context.Context, cmd descriptor.Command, handler any) error {
	hv := reflect.ValueOf(handler)
	for hv.Kind() == reflect.Pointer && !hv.IsNil() {
		hv = hv.Elem()
	}
	if hv.Kind() != reflect.Struct {
		return &descriptor.InvalidDescriptorError{Command: cmd.Name, Field: "handler", Reason: fmt.Sprintf("cannot read options from %T", handler)}
	}

	var violations []dispatch.Violation
	for _, o := range cmd.Options {
		sf, ok := hv.Type().FieldByName(o.FieldName())
		if !ok {
			return &descriptor.InvalidDescriptorError{Command: cmd.Name, Field: "options", Reason: fmt.Sprintf("%T has no field %s", handler, o.FieldName())}
		}
		expr := o.Constraint
		if expr == "" {
			expr = sf.Tag.Get(TagValidate)
		}
		if strings.TrimSpace(expr) == "" {
			continue
		}
		msg, err := v.check(cmd.Name, expr, hv.FieldByIndex(sf.Index).Interface())
		if err != nil {
			return err
		}
		if msg != "" {
			violations = append(violations, dispatch.Violation{Path: o.LongKey(), Message: msg})
		}
	}
	if len(violations) > 0 {
		return &dispatch.ConstraintViolationError{Kind: dispatch.KindOptions, Violations: violations}
	}
	return nil
}

// ValidateArguments checks each argument that carries a constraint. args are
// in position order; nil marks an absent argument.
func (v *Validator) ValidateArguments(_ context.Context, cmd descriptor.Command, args []any) error {
	var violations []dispatch.Violation
	for i, a := range cmd.OrderedArgs() {
		if strings.TrimSpace(a.Constraint) == "" {
			continue
		}
		var value any
		if i < len(args) {
			value = args[i]
		}
		msg, err := v.check(cmd.Name, a.Constraint, value)
		if err != nil {
			return err
		}
		if msg != "" {
			violations = append(violations, dispatch.Violation{Path: a.Name, Message: msg})
		}
	}
	if len(violations) > 0 {
		return &dispatch.ConstraintViolationError{Kind: dispatch.KindArguments, Violations: violations}
	}
	return nil
}

// Check reports whether value satisfies expr. A non-nil error wrapping
// descriptor.ErrInvalidDescriptor means expr is not a valid CUE expression;
// a violation yields ok=false and the CUE message.
func (v *Validator) Check(expr string, value any) (ok bool, msg string, err error) {
	msg, err = v.check("", expr, value)
	return err == nil && msg == "", msg, err
}

// Compile reports whether expr is a valid CUE constraint expression.
func (v *Validator) Compile(expr string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, err := v.compileLocked("", expr)
	return err
}

func (v *Validator) check(command, expr string, value any) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	c, err := v.compileLocked(command, expr)
	if err != nil {
		return "", err
	}
	encoded := v.ctx.Encode(nullable(value))
	if encoded.Err() != nil {
		return "", &dispatch.InternalError{Op: "encode value for constraint " + expr, Err: encoded.Err()}
	}
	if err := c.Unify(encoded).Validate(cue.Concrete(true)); err != nil {
		return message(err), nil
	}
	return "", nil
}

// compileLocked compiles expr once. v.mu must be held.
func (v *Validator) compileLocked(command, expr string) (cue.Value, error) {
	expr = strings.TrimSpace(expr)
	if c, ok := v.compiled[expr]; ok {
		return c, nil
	}
	c := v.ctx.CompileString(expr, cue.Filename("constraint"))
	if c.Err() != nil {
		return cue.Value{}, &descriptor.InvalidDescriptorError{
			Command: command,
			Field:   "constraint",
			Reason:  fmt.Sprintf("%q: %s", expr, message(c.Err())),
		}
	}
	v.compiled[expr] = c
	return c, nil
}

// nullable maps nil pointers and nil interfaces to nil so they encode as null.
func nullable(value any) any {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return nil
	}
	return value
}

// message joins the messages of every CUE error in err without positions.
func message(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		format, args := e.Msg()
		msgs = append(msgs, fmt.Sprintf(format, args...))
	}
	return strings.Join(msgs, "; ")
}
