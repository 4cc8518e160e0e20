// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable, user-facing errors.
//
// An ActionableError carries the failed operation, the resource involved,
// suggestions for fixing the problem and, optionally, the catalog Issue that
// explains it in Markdown. The catalog is rendered with glamour when the user
// asks for diagnostics with --debug.
package issue
