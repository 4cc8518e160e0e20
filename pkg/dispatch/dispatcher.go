// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"
	"io"
	"os"
	"reflect"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/invowk/cliframe/internal/help"
	"github.com/invowk/cliframe/pkg/argv"
	"github.com/invowk/cliframe/pkg/convert"
	"github.com/invowk/cliframe/pkg/descriptor"
)

type (
	// Validator checks converted values against externally declared
	// constraints. Errors are returned to the caller unchanged; implementations
	// report rejected values with *ConstraintViolationError.
	Validator interface {
		// ValidateOptions checks the option fields of handler after injection.
		ValidateOptions(ctx context.Context, cmd descriptor.Command, handler any) error
		// ValidateArguments checks the converted arguments in position order.
		// Absent arguments are nil.
		ValidateArguments(ctx context.Context, cmd descriptor.Command, args []any) error
	}

	// HelpRenderer writes the usage of a single command.
	HelpRenderer interface {
		Usage(w io.Writer, cmd descriptor.Command) error
	}

	// Dispatcher turns a tokenized invocation into a call of the registered
	// operation. It runs one dispatch at a time; State reports the progress of
	// the most recent one.
	Dispatcher struct {
		registry  *Registry
		engine    *convert.Engine
		validator Validator
		help      HelpRenderer
		out       io.Writer
		logger    *log.Logger
		state     atomic.Int32
	}
)

// New creates a dispatcher for the commands of registry.
func New(registry *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		engine:   convert.NewEngine(),
		help:     help.New(),
		out:      os.Stdout,
		logger: log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "dispatch",
		}),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.state.Store(int32(StateIdle))
	return d
}

// Registry returns the registry the dispatcher resolves commands in.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Engine returns the conversion engine.
func (d *Dispatcher) Engine() *convert.Engine {
	return d.engine
}

// State returns the state of the most recent dispatch.
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Dispatch resolves inv.Command, converts and injects the invocation's values
// and calls the operation on handler. A nil handler is looked up in the
// registry by the descriptor's handler identity.
//
// With --help the command's usage is written instead and nothing is invoked.
// Errors returned by the operation are returned unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, inv argv.Invocation, handler any) (err error) {
	d.state.Store(int32(StateIdle))
	defer func() {
		if err != nil {
			d.advance(inv.Command, StateFailed)
			d.logger.Debug("dispatch failed", "command", inv.Command, "error", err)
			return
		}
		d.advance(inv.Command, StateDone)
	}()

	d.advance(inv.Command, StateResolving)
	cmd, ok := d.registry.Lookup(inv.Command)
	if !ok {
		return &CommandNotFoundError{Name: inv.Command}
	}
	if inv.Help() {
		if err := d.help.Usage(d.out, cmd); err != nil {
			return &InternalError{Op: "render usage", Err: err}
		}
		return nil
	}

	if handler == nil {
		if handler, err = d.registry.Handler(cmd); err != nil {
			return err
		}
	}
	binding, err := descriptor.Bind(cmd, handler)
	if err != nil {
		return err
	}
	cmd = binding.Command()

	d.advance(cmd.Name, StateReconciling)
	raw := Reconcile(cmd.Args, inv.Positional)

	d.advance(cmd.Name, StateConverting)
	args, err := d.convertArgs(cmd, binding.Params(), raw)
	if err != nil {
		return err
	}
	if err := d.injectOptions(binding, inv); err != nil {
		return err
	}

	if d.validator != nil {
		d.advance(cmd.Name, StateValidating)
		if err := d.validator.ValidateOptions(ctx, cmd, handler); err != nil {
			return err
		}
		if err := d.validator.ValidateArguments(ctx, cmd, args); err != nil {
			return err
		}
	}

	d.advance(cmd.Name, StateInvoking)
	if err := binding.CheckArgs(args); err != nil {
		return &InternalError{Op: "invoke " + cmd.Method, Err: err}
	}
	return binding.Call(ctx, args)
}

// Reconcile matches positional tokens to the declared arguments, which must
// be ordered by position. Tokens beyond the declared arguments are dropped;
// missing trailing arguments take their default, or nil when none is declared.
func Reconcile(args []descriptor.Argument, positional []string) []*string {
	out := make([]*string, len(args))
	for i, a := range args {
		switch {
		case i < len(positional):
			v := positional[i]
			out[i] = &v
		case a.Default != nil:
			v := *a.Default
			out[i] = &v
		}
	}
	return out
}

func (d *Dispatcher) convertArgs(cmd descriptor.Command, params []reflect.Type, raw []*string) ([]any, error) {
	args := make([]any, len(raw))
	for i, r := range raw {
		if r == nil {
			continue
		}
		v, err := d.engine.Convert(*r, params[i])
		if err != nil {
			return nil, &WrongArgumentTypeError{
				Name:  cmd.Args[i].Name,
				Type:  cmd.Args[i].Type,
				Value: *r,
				Err:   err,
			}
		}
		args[i] = v
	}
	return args, nil
}

// injectOptions stores every option present in inv. The short key takes
// precedence over the long key; absent options leave their field untouched.
func (d *Dispatcher) injectOptions(b *descriptor.Binding, inv argv.Invocation) error {
	for _, o := range b.Options() {
		raw, ok := inv.Option(o.Short, o.Long)
		if !ok {
			continue
		}
		v, err := d.engine.Convert(raw, o.Type)
		if err != nil {
			return &WrongOptionTypeError{
				Short: o.Short,
				Long:  o.Long,
				Field: o.FieldName(),
				Type:  o.Type.String(),
				Value: raw,
				Err:   err,
			}
		}
		if err := o.Set(v); err != nil {
			return &InternalError{Op: "inject option " + o.Long, Err: err}
		}
	}
	return nil
}

// advance moves the dispatch forward. Backward moves are ignored.
func (d *Dispatcher) advance(command string, next State) {
	prev := State(d.state.Load())
	if !prev.canAdvance(next) {
		d.logger.Warn("ignoring dispatch state change", "command", command, "from", prev, "to", next)
		return
	}
	d.state.Store(int32(next))
	d.logger.Debug("dispatch state changed", "command", command, "from", prev, "to", next)
}
