// SPDX-License-Identifier: MPL-2.0

// Command cliframe is the tooling CLI for cliframe command descriptors.
package main

import cmd "github.com/invowk/cliframe/cmd/cliframe"

func main() {
	cmd.Execute()
}
