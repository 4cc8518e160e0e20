// SPDX-License-Identifier: MPL-2.0

// Package gen derives command descriptors from Go source at build time.
//
// Unlike descriptor.Introspect, which only sees what reflection exposes, the
// generator reads the handler package's syntax: parameter names become
// argument names, doc comments become summaries, and //cli:default
// directives declare argument defaults:
//
//	// CmdLs lists a directory.
//	//
//	// path: directory to list
//	//
//	//cli:default path=.
//	func (h *Handler) CmdLs(path string) error
//
// The result is written with descriptor.Encode and loaded at run time from
// cliframe/commands.cue.
package gen
