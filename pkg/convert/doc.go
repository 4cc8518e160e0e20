// SPDX-License-Identifier: MPL-2.0

// Package convert turns textual command-line input into typed Go values.
//
// An Engine holds a set of converters. Each converter declares a source and a
// target capability type. To convert a value, the engine ranks every converter
// by how far the value's runtime type is from the converter's source
// capability and how far the requested target type is from its target
// capability, climbing a small type hierarchy:
//
//   - a defined basic type climbs to its predeclared type (time.Duration -> int64)
//   - numeric types climb to the Number capability
//   - any type climbs to every registered interface capability it implements
//   - the universal type any matches everything but always ranks last
//
// The converter with the smallest target distance wins; ties are broken by
// source distance, then by registration order with the most recently
// registered converter winning, so a caller registering a converter with the
// same capabilities as a built-in overrides it. The winner is cached per
// (source type, target type) pair until the converter set changes.
//
//	e := convert.NewEngine()
//	v, err := e.Convert("42", reflect.TypeFor[int]())      // 42
//	d, err := convert.ConvertTo[time.Duration](e, "1m30s")  // 90s
//
// Pointer targets are converted through their element type and returned as a
// freshly allocated pointer, so optional option fields can be declared as *int.
package convert
