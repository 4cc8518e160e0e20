// SPDX-License-Identifier: MPL-2.0

// Package descriptor defines command descriptors: the declared shape of a
// handler operation (name, handler identity, method, ordered arguments and
// options) that the dispatcher consumes.
//
// Descriptors come from three places:
//
//   - descriptor files in CUE, TOML, HCL or JSON, usually written by the
//     generator (see Decode, Encode and FileSource)
//   - live introspection of a handler value (see Introspect and Describer)
//   - literal Command values built in code (see Static)
//
// A Binding ties one descriptor to one handler instance. It is built from the
// descriptor's declared method and field names; handlers are never scanned at
// dispatch time.
package descriptor
