// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/invowk/cliframe/internal/gen"
	"github.com/invowk/cliframe/pkg/descriptor"
)

type generateOptions struct {
	dir      string
	output   string
	format   string
	patterns []string
	types    []string
	tags     []string
}

func newGenerateCommand(app *App) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate [packages...]",
		Short: "Generate a descriptor file from handler source",
		Long: `Generate a descriptor file from handler source.

Every Cmd method of the handler types in the given packages becomes a
command. Parameter names become argument names, the first paragraph of the
method doc becomes the summary, "name: text" lines document arguments and
//cli:default name=value directives declare defaults.

The format follows the output file extension (cue, toml, hcl, json) unless
--format is given. Without --output the descriptors are written to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.patterns = args
			return runGenerate(cmd.Context(), app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", "", "directory package patterns are resolved in")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "descriptor format: cue, toml, hcl or json")
	cmd.Flags().StringSliceVar(&opts.types, "type", nil, "only generate commands for these handler types")
	cmd.Flags().StringSliceVar(&opts.tags, "tags", nil, "build tags used while loading packages")

	return cmd
}

func runGenerate(ctx context.Context, app *App, opts generateOptions) error {
	format, err := outputFormat(opts.format, opts.output)
	if err != nil {
		return err
	}

	cmds, err := gen.Generate(ctx, gen.Options{
		Dir:      opts.dir,
		Patterns: opts.patterns,
		Types:    opts.types,
		Tags:     opts.tags,
	})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := descriptor.Encode(&buf, format, cmds); err != nil {
		return err
	}

	if opts.output == "" {
		_, err := app.stdout.Write(buf.Bytes())
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write descriptors: %w", err)
	}
	fmt.Fprintf(app.stdout, "%s Wrote %d commands to %s\n", SuccessStyle.Render("✓"), len(cmds), opts.output)
	return nil
}

// outputFormat picks the explicit format, else the output extension, else CUE.
func outputFormat(explicit, output string) (descriptor.Format, error) {
	switch {
	case explicit != "":
		f := descriptor.Format(explicit)
		return f, f.Validate()
	case output != "":
		return descriptor.FormatOf(output)
	default:
		return descriptor.FormatCUE, nil
	}
}
