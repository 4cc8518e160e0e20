// SPDX-License-Identifier: MPL-2.0

package convert

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

type (
	// Converter turns a value of its source capability into a value of its
	// target capability. The target passed to Convert is the concrete type
	// requested by the caller, with pointer layers removed; the result must be
	// of that type, of a pointer to it, or of a type with the same kind that is
	// convertible to it.
	Converter interface {
		// ID identifies the converter. Registering a second converter with the
		// same ID is a no-op.
		ID() string
		// Capabilities returns the source and target capability types.
		Capabilities() (source, target reflect.Type)
		Convert(source any, target reflect.Type) (any, error)
	}

	// Func adapts a function into a Converter with capabilities S -> T.
	// T names the target capability; the function returns a value of the
	// concrete target it is asked for, which may be any type reaching T.
	Func[S, T any] struct {
		id string
		fn func(source S, target reflect.Type) (any, error)
	}

	// Engine selects and applies the best converter for each conversion.
	// It is safe for concurrent use; registrations invalidate the selection cache.
	Engine struct {
		mu      sync.RWMutex
		regs    []registration
		ids     map[string]struct{}
		ifaces  []reflect.Type
		nextSeq int

		// cache maps cacheKey -> registration.
		cache sync.Map
	}

	registration struct {
		converter Converter
		source    reflect.Type
		target    reflect.Type
		seq       int
	}

	cacheKey struct {
		source reflect.Type
		target reflect.Type
	}
)

// NewFunc returns a Converter that calls fn.
func NewFunc[S, T any](id string, fn func(source S, target reflect.Type) (any, error)) *Func[S, T] {
	return &Func[S, T]{id: id, fn: fn}
}

// ID implements Converter.
func (f *Func[S, T]) ID() string { return f.id }

// Capabilities implements Converter.
func (f *Func[S, T]) Capabilities() (source, target reflect.Type) {
	return reflect.TypeFor[S](), reflect.TypeFor[T]()
}

// Convert implements Converter. Sources of a defined type whose kind matches S
// (for example a named string type) are converted to S first.
func (f *Func[S, T]) Convert(source any, target reflect.Type) (any, error) {
	if s, ok := source.(S); ok {
		return f.fn(s, target)
	}
	want := reflect.TypeFor[S]()
	v := reflect.ValueOf(source)
	if v.IsValid() && want.Kind() != reflect.Interface && v.Kind() == want.Kind() && v.Type().ConvertibleTo(want) {
		return f.fn(v.Convert(want).Interface().(S), target)
	}
	return nil, &UnsupportedError{Source: reflect.TypeOf(source), Target: target, Reason: "converter " + f.id + " expects " + want.String()}
}

// NewEngine returns an engine with the built-in converters registered.
func NewEngine() *Engine {
	e := NewEmptyEngine()
	for _, c := range Builtins() {
		if err := e.Register(c); err != nil {
			panic(fmt.Sprintf("convert: builtin converter %s: %v", c.ID(), err))
		}
	}
	return e
}

// NewEmptyEngine returns an engine with no converters.
func NewEmptyEngine() *Engine {
	return &Engine{ids: make(map[string]struct{})}
}

// Register adds c to the engine. A converter whose ID is already registered is
// ignored. Converters without an ID or with undeterminable capabilities are
// rejected with an *InvalidConverterError.
func (e *Engine) Register(c Converter) error {
	if c == nil {
		return &InvalidConverterError{Reason: "converter is nil"}
	}
	id := c.ID()
	if strings.TrimSpace(id) == "" {
		return &InvalidConverterError{Reason: "converter has no ID"}
	}
	source, target := c.Capabilities()
	if source == nil || target == nil {
		return &InvalidConverterError{ID: id, Reason: "source and target capabilities cannot be determined"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.ids[id]; ok {
		return nil
	}
	e.ids[id] = struct{}{}
	e.regs = append(e.regs, registration{converter: c, source: source, target: target, seq: e.nextSeq})
	e.nextSeq++
	e.rebuildLocked()
	return nil
}

// Unregister removes the converter with the given ID and reports whether it was present.
func (e *Engine) Unregister(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.ids[id]; !ok {
		return false
	}
	delete(e.ids, id)
	for i, reg := range e.regs {
		if reg.converter.ID() == id {
			e.regs = append(e.regs[:i], e.regs[i+1:]...)
			break
		}
	}
	e.rebuildLocked()
	return true
}

// Converters returns the registered converter IDs in registration order.
func (e *Engine) Converters() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, len(e.regs))
	for i, reg := range e.regs {
		ids[i] = reg.converter.ID()
	}
	return ids
}

// Resolve returns the ID of the converter that would handle source -> target.
func (e *Engine) Resolve(source, target reflect.Type) (string, error) {
	if source == nil || target == nil {
		return "", &UnsupportedError{Source: source, Target: target}
	}
	base, _ := indirect(target)
	reg, err := e.resolve(source, base)
	if err != nil {
		return "", err
	}
	return reg.converter.ID(), nil
}

// Convert converts value to target. A nil value converts to nil.
func (e *Engine) Convert(value any, target reflect.Type) (any, error) {
	if value == nil {
		return nil, nil
	}
	if target == nil {
		return nil, &UnsupportedError{Source: reflect.TypeOf(value), Reason: "target type is nil"}
	}

	base, depth := indirect(target)
	reg, err := e.resolve(reflect.TypeOf(value), base)
	if err != nil {
		return nil, err
	}
	out, err := reg.converter.Convert(value, base)
	if err != nil {
		return nil, err
	}
	v, err := coerce(out, base, depth, reg.converter.ID())
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// ConvertAll converts each value to target, stopping at the first failure.
func (e *Engine) ConvertAll(values []any, target reflect.Type) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		c, err := e.Convert(v, target)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// ConvertTo converts value to T.
func ConvertTo[T any](e *Engine, value any) (T, error) {
	var zero T
	out, err := e.Convert(value, reflect.TypeFor[T]())
	if err != nil || out == nil {
		return zero, err
	}
	t, ok := out.(T)
	if !ok {
		return zero, &UnsupportedError{Source: reflect.TypeOf(value), Target: reflect.TypeFor[T](), Reason: fmt.Sprintf("conversion produced %T", out)}
	}
	return t, nil
}

// resolve picks the registration with the smallest target distance, then the
// smallest source distance, then the latest registration.
func (e *Engine) resolve(source, target reflect.Type) (registration, error) {
	key := cacheKey{source: source, target: target}
	if v, ok := e.cache.Load(key); ok {
		return v.(registration), nil
	}

	// The read lock is held across the cache store so a concurrent Register
	// cannot clear the cache between selection and store.
	e.mu.RLock()
	defer e.mu.RUnlock()

	best := -1
	bestTarget, bestSource := 0, 0
	for i, reg := range e.regs {
		sd := distance(source, reg.source, e.ifaces)
		if sd == NoMatch {
			continue
		}
		td := distance(target, reg.target, e.ifaces)
		if td == NoMatch {
			continue
		}
		if best < 0 || td < bestTarget || (td == bestTarget && sd <= bestSource) {
			best, bestTarget, bestSource = i, td, sd
		}
	}
	if best < 0 {
		return registration{}, &UnsupportedError{Source: source, Target: target}
	}

	reg := e.regs[best]
	e.cache.Store(key, reg)
	return reg, nil
}

// rebuildLocked recomputes the interface capabilities and drops cached
// selections. e.mu must be held for writing.
func (e *Engine) rebuildLocked() {
	e.ifaces = e.ifaces[:0]
	seen := make(map[reflect.Type]bool)
	for _, reg := range e.regs {
		for _, t := range []reflect.Type{reg.source, reg.target} {
			if t.Kind() == reflect.Interface && !isTop(t) && !seen[t] {
				seen[t] = true
				e.ifaces = append(e.ifaces, t)
			}
		}
	}
	e.cache.Clear()
}

// coerce turns a converter result into a value of base wrapped in depth
// pointer layers.
func coerce(out any, base reflect.Type, depth int, id string) (reflect.Value, error) {
	var v reflect.Value
	switch {
	case out == nil:
		v = reflect.Zero(base)
	case reflect.TypeOf(out) == reflect.PointerTo(base) && depth > 0:
		return wrap(reflect.ValueOf(out), depth-1), nil
	case reflect.TypeOf(out) == reflect.PointerTo(base):
		v = reflect.ValueOf(out).Elem()
	default:
		v = reflect.ValueOf(out)
	}

	switch t := v.Type(); {
	case t == base:
	case t.AssignableTo(base):
		slot := reflect.New(base).Elem()
		slot.Set(v)
		v = slot
	case t.Kind() == base.Kind() && t.ConvertibleTo(base):
		v = v.Convert(base)
	default:
		return reflect.Value{}, &UnsupportedError{
			Source: t,
			Target: base,
			Reason: fmt.Sprintf("converter %s produced %s", id, t),
		}
	}
	return wrap(v, depth), nil
}

func wrap(v reflect.Value, depth int) reflect.Value {
	for range depth {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		v = p
	}
	return v
}
