// SPDX-License-Identifier: MPL-2.0

// Package argv tokenizes a raw argument vector more or less according to the
// GNU argument syntax.
//
// The first token is the command name. The remaining tokens are classified as
// long options (--key), short options (-k), bundled boolean short flags (-abc)
// or positional arguments. An option that takes a value consumes ("slurps")
// the following token unless that token looks like another option; a dash
// followed by a digit is a value, so negative numbers survive:
//
//	inv := argv.Parse([]string{"resize", "-n", "-5", "--unit", "px", "image.png"})
//	inv.Command        // "resize"
//	inv.Short["n"]     // "-5"
//	inv.Long["unit"]   // "px"
//	inv.Positional     // ["image.png"]
//
// The reserved long options --help, --debug and --verbose never take a value.
package argv
