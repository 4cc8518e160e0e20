// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/cliframe/pkg/descriptor"
)

func newValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check descriptor files",
		Long: `Check descriptor files against the descriptor schema.

Each file is decoded in the format of its extension and every command is
checked for structural problems: empty names, duplicate or reserved option
keys, argument positions and unknown fields.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runValidate(app, args); err != nil {
				cmd.SilenceUsage = true
				cmd.SilenceErrors = true
				return err
			}
			return nil
		},
	}
}

func runValidate(app *App, paths []string) error {
	failed := 0
	for _, path := range paths {
		cmds, err := descriptor.ReadFile(path)
		if err != nil {
			failed++
			fmt.Fprintf(app.stderr, "%s %s\n  %v\n", ErrorStyle.Render("✗"), path, err)
			continue
		}
		fmt.Fprintf(app.stdout, "%s %s (%d commands)\n", SuccessStyle.Render("✓"), path, len(cmds))
		if app.verbose {
			for _, c := range cmds {
				fmt.Fprintf(app.stdout, "  %s -> %s.%s\n", CmdStyle.Render(c.Name), c.Handler, c.Method)
			}
		}
	}

	if failed > 0 {
		return &ExitError{Code: 1, Err: fmt.Errorf("%d of %d descriptor files are invalid", failed, len(paths))}
	}
	return nil
}
