// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/invowk/cliframe/pkg/descriptor"
	"golang.org/x/exp/slices"
)

var errNilHandler = errors.New("factory returned nil")

type (
	// Factory builds a fresh handler instance for one dispatch.
	Factory func() (any, error)

	// Registry owns the command descriptors and the handlers that serve them.
	// It is safe for concurrent use.
	Registry struct {
		mu        sync.RWMutex
		commands  map[string]descriptor.Command
		handlers  map[string]any
		factories map[string]Factory
	}
)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]descriptor.Command),
		handlers:  make(map[string]any),
		factories: make(map[string]Factory),
	}
}

// Register adds descriptors, replacing any registered under the same name.
// Nothing is registered when one of them is invalid.
func (r *Registry) Register(cmds ...descriptor.Command) error {
	normalized := make([]descriptor.Command, len(cmds))
	for i, c := range cmds {
		c = c.Normalize()
		if err := c.Validate(); err != nil {
			return err
		}
		normalized[i] = c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range normalized {
		r.commands[c.Name] = c
	}
	return nil
}

// Load registers every descriptor of src. Later loads override earlier ones.
func (r *Registry) Load(src descriptor.Source) error {
	cmds, err := src.Commands()
	if err != nil {
		return err
	}
	return r.Register(cmds...)
}

// RegisterHandler binds a live handler instance to its identity and registers
// the commands it exposes. Commands already declared for the same handler,
// typically by a descriptor file carrying argument names and defaults, are
// kept.
func (r *Registry) RegisterHandler(handler any) error {
	cmds, err := descriptor.Introspect(handler)
	if err != nil {
		return err
	}
	identity := descriptor.HandlerName(reflect.TypeOf(handler))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[identity] = handler
	for _, c := range cmds {
		if existing, ok := r.commands[c.Name]; ok && existing.Handler == identity {
			continue
		}
		r.commands[c.Name] = c
	}
	return nil
}

// Provide registers a factory for handler identity, used for descriptors
// whose handler has no registered instance.
func (r *Registry) Provide(identity string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.TrimSpace(identity)] = factory
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (descriptor.Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[name]
	return c, ok
}

// Commands returns every registered descriptor sorted by name.
func (r *Registry) Commands() []descriptor.Command {
	r.mu.RLock()
	cmds := make([]descriptor.Command, 0, len(r.commands))
	for _, c := range r.commands {
		cmds = append(cmds, c)
	}
	r.mu.RUnlock()

	slices.SortFunc(cmds, func(a, b descriptor.Command) int {
		return strings.Compare(a.Name, b.Name)
	})
	return cmds
}

// Handler returns the instance serving cmd: the registered instance for its
// handler identity, or a new one from the identity's factory.
func (r *Registry) Handler(cmd descriptor.Command) (any, error) {
	r.mu.RLock()
	h, ok := r.handlers[cmd.Handler]
	factory := r.factories[cmd.Handler]
	r.mu.RUnlock()

	if ok {
		return h, nil
	}
	if factory == nil {
		return nil, &HandlerUnavailableError{Command: cmd.Name, Handler: cmd.Handler}
	}
	h, err := factory()
	if err != nil {
		return nil, &HandlerUnavailableError{Command: cmd.Name, Handler: cmd.Handler, Err: err}
	}
	if h == nil {
		return nil, &HandlerUnavailableError{Command: cmd.Name, Handler: cmd.Handler, Err: errNilHandler}
	}
	return h, nil
}
