// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/cliframe/internal/help"
	"github.com/invowk/cliframe/pkg/descriptor"
)

func newShowCommand(app *App) *cobra.Command {
	var color bool

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Render the help of every command in a descriptor file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmds, err := descriptor.ReadFile(args[0])
			if err != nil {
				return err
			}

			r := help.New(help.WithColor(color))
			if err := r.Summary(app.stdout, cmds); err != nil {
				return err
			}
			for _, c := range cmds {
				fmt.Fprintln(app.stdout)
				if err := r.Usage(app.stdout, c); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&color, "color", false, "style the output")
	return cmd
}
