// SPDX-License-Identifier: MPL-2.0

// Package cliframe is the entry point of programs built on the framework.
//
// A program hands its handlers to Main:
//
//	type Files struct {
//		Output string `cli:"o" help:"Write to a file instead of stdout."`
//	}
//
//	func (f *Files) CmdLs(path string) error { ... }
//
//	func main() {
//		os.Exit(cliframe.Main(os.Args[1:], &Files{}))
//	}
//
// Main tokenizes the arguments, loads configuration and descriptor files,
// dispatches the command and renders failures. Programs that need control
// over these steps build an App from Dependencies and call Run.
package cliframe
