// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/invowk/cliframe/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	// App holds the shared state of one CLI invocation. Cobra handlers
	// receive it and write through its streams.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer

		configFile string
		verbose    bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewApp builds an App, replacing nil dependencies with defaults.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{Config: deps.Config, stdout: deps.Stdout, stderr: deps.Stderr}
}

// loadOptions returns the config inputs selected by the global flags.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.configFile}
}

// NewRootCommand builds the command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "cliframe",
		Short: "Tooling for cliframe command descriptors",
		Long: TitleStyle.Render("cliframe") + SubtitleStyle.Render(" - tooling for cliframe command descriptors") + `

cliframe programs expose the Cmd methods of their handlers as commands.
This tool generates descriptor files from handler source, checks them,
renders their help and shows how command lines are tokenized.

` + SubtitleStyle.Render("Examples:") + `
  cliframe generate -o cliframe/commands.cue ./handlers
  cliframe validate cliframe/commands.cue
  cliframe show cliframe/commands.cue
  cliframe tokenize "ls -o out.txt /tmp"
  cliframe run echo hello`,
		SilenceUsage: true,
	}
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVar(&app.configFile, "config", "", "config file (default is the cliframe config directory's config.cue)")

	root.AddCommand(
		newGenerateCommand(app),
		newValidateCommand(app),
		newShowCommand(app),
		newTokenizeCommand(app),
		newConfigCommand(app),
		newRunCommand(app),
	)
	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process on failure.
func Execute() {
	root := NewRootCommand(NewApp(Dependencies{}))
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
