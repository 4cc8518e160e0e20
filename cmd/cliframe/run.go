// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/invowk/cliframe/pkg/cliframe"
)

func newRunCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [command] [args...]",
		Short: "Run the demo handler through the framework",
		Long: `Run the demo handler through the framework.

Everything from the command name on is handed to the framework unparsed,
exactly as a cliframe program receives os.Args[1:]. Run without arguments
to list the demo commands, or add --help to a command to see its usage.`,
		Example: `  cliframe run echo -u -n 2 hello
  cliframe run add 0.1 0.2
  cliframe run sleep --debug 1x`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fa, err := cliframe.New(cliframe.Dependencies{
				Handlers:   []any{newDemoHandler(app.stdout)},
				ConfigFile: app.configFile,
				Stdout:     app.stdout,
				Stderr:     app.stderr,
			})
			if err != nil {
				return err
			}
			if code := fa.Exit(cmd.Context(), args); code != 0 {
				cmd.SilenceErrors = true
				return &ExitError{Code: code}
			}
			return nil
		},
	}
	// Stop at the command name so its options reach the framework.
	cmd.Flags().SetInterspersed(false)
	return cmd
}
