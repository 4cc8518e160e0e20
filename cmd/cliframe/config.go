// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/cliframe/internal/config"
	"github.com/invowk/cliframe/internal/issue"
)

// newConfigCommand creates the `cliframe config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cliframe configuration",
		Long: `Manage cliframe configuration.

Configuration is stored in:
  - Linux: ~/.config/cliframe/config.cue
  - macOS: ~/Library/Application Support/cliframe/config.cue
  - Windows: %APPDATA%\cliframe\config.cue

Every key can be overridden with a CLIFRAME_ environment variable, e.g.
CLIFRAME_LOG_LEVEL=debug or CLIFRAME_DESCRIPTORS=a.cue,b.cue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	var initDir string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app, initDir)
		},
	}
	initCmd.Flags().StringVar(&initDir, "dir", "", "directory to create config.cue in (default is the cliframe config directory)")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), app.loadOptions())
			if err != nil {
				return err
			}
			content, err := config.GenerateCUE(cfg)
			if err != nil {
				return err
			}
			_, err = app.stdout.Write(content)
			return err
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, path, err := config.Resolve(ctx, app.loadOptions())
	if err != nil {
		if rendered, renderErr := issue.Get(issue.ConfigLoadFailedId).Render("notty"); renderErr == nil {
			fmt.Fprint(app.stderr, rendered)
		}
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("log_level"), valueStyle.Render(string(cfg.LogLevel)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("color"), valueStyle.Render(string(cfg.Color)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("debug"), valueStyle.Render(fmt.Sprintf("%v", cfg.Debug)))
	writeList(w, "descriptors", cfg.Descriptors)
	writeList(w, "search_paths", cfg.SearchPaths)
	return nil
}

func writeList(w io.Writer, key string, values []string) {
	fmt.Fprintf(w, "%s:\n", CmdStyle.Render(key))
	if len(values) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
		return
	}
	fmt.Fprintf(w, "  - %s\n", strings.Join(values, "\n  - "))
}

func initConfig(app *App, dir string) error {
	if dir == "" {
		cfgDir, err := config.ConfigDir()
		if err != nil {
			return err
		}
		dir = cfgDir
	}

	path, err := config.CreateDefaultConfig(dir)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	fmt.Fprintf(app.stdout, "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}
