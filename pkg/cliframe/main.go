// SPDX-License-Identifier: MPL-2.0

package cliframe

import (
	"context"
	"fmt"
	"os"
)

// Main runs args against handlers and returns the process exit code.
func Main(args []string, handlers ...any) int {
	app, err := New(Dependencies{Handlers: handlers})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return app.Exit(context.Background(), args)
}

// Exit runs args and returns the process exit code. Failures are printed to
// the App's stderr.
func (a *App) Exit(ctx context.Context, args []string) int {
	err := a.Run(ctx, args)
	if err == nil {
		return 0
	}
	command := ""
	if len(args) > 0 {
		command = args[0]
	}
	fmt.Fprintln(a.stderr, Message(err, command))
	return ExitCode(err)
}
