// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/invowk/cliframe/pkg/argv"
)

func newTokenizeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize <line>",
		Short: "Show how a command line is tokenized",
		Long: `Show how a command line is tokenized.

The line is split into words with shell quoting rules and then parsed the
way a cliframe program parses its arguments: the first word is the command,
-x and --long options take the following word as value unless it looks like
another option, -abc sets each flag, and everything else is positional.`,
		Example: `  cliframe tokenize "ls -o 'two words' --all /tmp"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := argv.ParseLine(args[0])
			if err != nil {
				return err
			}
			writeInvocation(app.stdout, inv)
			return nil
		},
	}
}

func writeInvocation(w io.Writer, inv argv.Invocation) {
	fmt.Fprintf(w, "%s %s\n", CmdStyle.Render("command:"), inv.Command)
	for _, k := range slices.Sorted(maps.Keys(inv.Short)) {
		fmt.Fprintf(w, "%s %q\n", CmdStyle.Render("-"+k+":"), inv.Short[k])
	}
	for _, k := range slices.Sorted(maps.Keys(inv.Long)) {
		fmt.Fprintf(w, "%s %q\n", CmdStyle.Render("--"+k+":"), inv.Long[k])
	}
	for i, p := range inv.Positional {
		fmt.Fprintf(w, "%s %q\n", CmdStyle.Render(fmt.Sprintf("positional[%d]:", i)), p)
	}
}
