// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/invowk/cliframe/pkg/convert"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for state transitions.
func WithLogger(logger *log.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithEngine sets the conversion engine. The default engine has the built-in
// converters registered.
func WithEngine(engine *convert.Engine) Option {
	return func(d *Dispatcher) {
		if engine != nil {
			d.engine = engine
		}
	}
}

// WithValidator enables external validation of options and arguments.
func WithValidator(v Validator) Option {
	return func(d *Dispatcher) {
		d.validator = v
	}
}

// WithHelp sets the renderer used for --help.
func WithHelp(r HelpRenderer) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.help = r
		}
	}
}

// WithOutput sets where help is written. Default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(d *Dispatcher) {
		if w != nil {
			d.out = w
		}
	}
}
