// SPDX-License-Identifier: MPL-2.0

package cliframe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/invowk/cliframe/internal/config"
	"github.com/invowk/cliframe/internal/help"
	"github.com/invowk/cliframe/pkg/argv"
	"github.com/invowk/cliframe/pkg/constraint"
	"github.com/invowk/cliframe/pkg/convert"
	"github.com/invowk/cliframe/pkg/descriptor"
	"github.com/invowk/cliframe/pkg/dispatch"
	"golang.org/x/term"
)

// ErrDescriptorNotFound is returned when a configured descriptor file does not exist.
var ErrDescriptorNotFound = errors.New("descriptor file not found")

type (
	// App wires the tokenizer, registry, dispatcher, help and configuration.
	// It is the composition root for one process invocation.
	App struct {
		registry  *dispatch.Registry
		engine    *convert.Engine
		validator dispatch.Validator
		handlers  []any
		sources   []descriptor.Source
		loadOpts  config.LoadOptions
		logger    *log.Logger
		stdout    io.Writer
		stderr    io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by New.
	Dependencies struct {
		// Handlers are live handler instances; their Cmd methods become commands.
		Handlers []any
		// Sources are descriptor sources loaded before configured descriptor files.
		Sources []descriptor.Source
		// Registry receives every command. Default is an empty registry.
		Registry *dispatch.Registry
		// Engine converts argument and option text. Default has the built-in converters.
		Engine *convert.Engine
		// Validator checks option and argument constraints. Default is the CUE validator.
		Validator dispatch.Validator
		// ConfigFile forces a specific config file.
		ConfigFile string
		// ConfigDir overrides the config directory.
		ConfigDir string
		// Environ replaces the process environment for CLIFRAME_ overrides.
		Environ map[string]string
		// Logger receives framework logs. Default writes to Stderr.
		Logger *log.Logger
		Stdout io.Writer
		Stderr io.Writer
	}

	// DescriptorNotFoundError is returned when a configured descriptor file is missing.
	// It wraps ErrDescriptorNotFound for errors.Is() compatibility.
	DescriptorNotFoundError struct {
		Path string
	}
)

// Error implements the error interface.
func (e *DescriptorNotFoundError) Error() string {
	return fmt.Sprintf("descriptor file not found: %s", e.Path)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *DescriptorNotFoundError) Unwrap() error {
	return ErrDescriptorNotFound
}

// New builds an App, replacing nil dependencies with defaults.
func New(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Registry == nil {
		deps.Registry = dispatch.NewRegistry()
	}
	if deps.Engine == nil {
		deps.Engine = convert.NewEngine()
	}
	if deps.Validator == nil {
		deps.Validator = constraint.New()
	}
	if deps.Logger == nil {
		deps.Logger = log.NewWithOptions(deps.Stderr, log.Options{
			Prefix:          "cliframe",
			ReportTimestamp: false,
		})
	}

	for _, h := range deps.Handlers {
		if h == nil {
			return nil, errors.New("cliframe: nil handler")
		}
	}

	return &App{
		registry:  deps.Registry,
		engine:    deps.Engine,
		validator: deps.Validator,
		handlers:  deps.Handlers,
		sources:   deps.Sources,
		loadOpts: config.LoadOptions{
			ConfigFilePath: deps.ConfigFile,
			ConfigDirPath:  deps.ConfigDir,
			Environ:        deps.Environ,
		},
		logger: deps.Logger,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}, nil
}

// Registry returns the registry commands are dispatched from.
func (a *App) Registry() *dispatch.Registry {
	return a.registry
}

// Run tokenizes args and dispatches the command. Without a command the
// command summary is printed. Errors are returned unchanged; with --debug
// the full error chain is logged first.
func (a *App) Run(ctx context.Context, args []string) error {
	inv := argv.Parse(args)

	cfg, err := config.NewProvider().Load(ctx, a.loadOpts)
	if err != nil {
		return err
	}

	debug := inv.Debug() || cfg.Debug
	a.logger.SetLevel(cfg.LogLevel.Level())
	if debug || inv.Verbose() {
		a.logger.SetLevel(log.DebugLevel)
	}

	if err := a.load(cfg); err != nil {
		a.reportDebug(debug, inv, err)
		return err
	}

	renderer := help.New(help.WithColor(cfg.Color.Enabled(isTerminal(a.stdout))))
	if inv.IsEmpty() {
		return renderer.Summary(a.stdout, a.registry.Commands())
	}

	d := dispatch.New(a.registry,
		dispatch.WithLogger(a.logger),
		dispatch.WithEngine(a.engine),
		dispatch.WithValidator(a.validator),
		dispatch.WithHelp(renderer),
		dispatch.WithOutput(a.stdout),
	)
	if err := d.Dispatch(ctx, inv, nil); err != nil {
		a.reportDebug(debug, inv, err)
		return err
	}
	return nil
}

// load registers live handlers, then explicit sources, then configured
// descriptor files, then the default descriptor file found in the working
// directory or a search path. Later sources override earlier ones.
func (a *App) load(cfg *config.Config) error {
	for _, h := range a.handlers {
		if err := a.registry.RegisterHandler(h); err != nil {
			return err
		}
	}
	for _, src := range a.sources {
		if err := a.registry.Load(src); err != nil {
			return err
		}
	}
	for _, path := range cfg.Descriptors {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return &DescriptorNotFoundError{Path: path}
		}
		if err := a.registry.Load(descriptor.FileSource{Path: path}); err != nil {
			return err
		}
	}
	if path := findDefaultDescriptor(cfg.SearchPaths); path != "" {
		a.logger.Debug("loading descriptors", "path", path)
		if err := a.registry.Load(descriptor.FileSource{Path: path}); err != nil {
			return err
		}
	}
	return nil
}

// findDefaultDescriptor returns the first existing descriptor.DefaultPath
// under the working directory or a search path.
func findDefaultDescriptor(searchPaths []string) string {
	dirs := append([]string{"."}, searchPaths...)
	for _, dir := range dirs {
		p := filepath.Join(dir, filepath.FromSlash(descriptor.DefaultPath))
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// reportDebug logs the error chain and the matching issue when debug is set.
func (a *App) reportDebug(debug bool, inv argv.Invocation, err error) {
	if !debug {
		return
	}
	ae := Explain(err, inv.Command)
	a.logger.Error("command failed", "command", inv.Command, "error", err)
	fmt.Fprintln(a.stderr, ae.Format(true))
	if doc := renderIssue(ae); doc != "" {
		fmt.Fprintln(a.stderr, doc)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
