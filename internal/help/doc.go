// SPDX-License-Identifier: MPL-2.0

// Package help renders the command summary shown when no command is given
// and the usage screen shown for --help.
package help
