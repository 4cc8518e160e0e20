// SPDX-License-Identifier: MPL-2.0

package help

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/invowk/cliframe/pkg/descriptor"
)

const (
	// SummaryHeader opens the command summary.
	SummaryHeader = "Available commands are:"
	// SummaryFooter closes the command summary.
	SummaryFooter = " Try `[command] --help' for more information."
	// UsagePrefix opens the usage screen of a command.
	UsagePrefix = "usage: "
)

type (
	// Renderer writes help screens. The zero value is not usable; call New.
	Renderer struct {
		styles styles
	}

	// Option configures a Renderer.
	Option func(*Renderer)
)

// New returns a renderer producing plain text unless WithColor(true) is given.
func New(opts ...Option) *Renderer {
	r := &Renderer{styles: plainStyles()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithColor switches between styled and plain output.
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		if enabled {
			r.styles = colorStyles()
		} else {
			r.styles = plainStyles()
		}
	}
}

// Summary lists cmds, in the given order, with the first sentence of each summary.
func (r *Renderer) Summary(w io.Writer, cmds []descriptor.Command) error {
	var sb strings.Builder
	sb.WriteString(r.styles.header.Render(SummaryHeader))
	sb.WriteString("\n\n")

	width := 0
	for _, c := range cmds {
		width = max(width, lipgloss.Width(c.Name))
	}
	for _, c := range cmds {
		name := padRight(c.Name, width)
		fmt.Fprintf(&sb, " %s : %s\n", r.styles.command.Render(name), FirstSentence(c.Summary))
	}

	sb.WriteString("\n")
	sb.WriteString(r.styles.hint.Render(SummaryFooter))
	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// Usage describes a single command: its synopsis, summary, options and arguments.
func (r *Renderer) Usage(w io.Writer, cmd descriptor.Command) error {
	var sb strings.Builder
	sb.WriteString(r.styles.header.Render(Synopsis(cmd)))
	sb.WriteString("\n\n")

	if cmd.Summary != "" {
		sb.WriteString(" ")
		sb.WriteString(indent(cmd.Summary, 1))
		sb.WriteString("\n\n")
	}

	if len(cmd.Options) > 0 {
		sb.WriteString(r.styles.label.Render("OPTIONS"))
		sb.WriteString("\n\n")
		keys := make([]string, len(cmd.Options))
		width := 0
		for i, o := range cmd.Options {
			keys[i] = optionKeys(o)
			width = max(width, lipgloss.Width(keys[i]))
		}
		for i, o := range cmd.Options {
			key := padRight(keys[i], width)
			fmt.Fprintf(&sb, " %s : %s\n", r.styles.command.Render(key), indent(o.Summary, width+4))
		}
		sb.WriteString("\n")
	}

	if len(cmd.Args) > 0 {
		sb.WriteString(r.styles.label.Render("ARGUMENTS"))
		sb.WriteString("\n\n")
		width := 0
		for _, a := range cmd.Args {
			width = max(width, lipgloss.Width(a.Name))
		}
		for _, a := range cmd.OrderedArgs() {
			name := padRight(a.Name, width)
			line := indent(a.Summary, width+4)
			if a.HasDefault() {
				line = strings.TrimSpace(line + " " + r.styles.detail.Render(fmt.Sprintf("(default %q)", *a.Default)))
			}
			fmt.Fprintf(&sb, " %s : %s\n", r.styles.command.Render(name), line)
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// Synopsis returns the one-line usage of cmd, e.g. "usage: cp [OPTION]... src dst".
func Synopsis(cmd descriptor.Command) string {
	var sb strings.Builder
	sb.WriteString(UsagePrefix)
	sb.WriteString(cmd.Name)
	if len(cmd.Options) > 0 {
		sb.WriteString(" [OPTION]...")
	}
	for _, a := range cmd.OrderedArgs() {
		sb.WriteString(" ")
		sb.WriteString(a.Name)
	}
	return sb.String()
}

// FirstSentence returns s up to and including the first period.
func FirstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i+1]
	}
	return s
}

func optionKeys(o descriptor.Option) string {
	if o.Short == "" {
		return "--" + o.LongKey()
	}
	return "-" + o.Short + ",--" + o.LongKey()
}

// padRight pads s with spaces to width terminal cells.
func padRight(s string, width int) string {
	return s + strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
}

// indent aligns continuation lines of a multi-line text under its first line.
func indent(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	pad := strings.Repeat(" ", n)
	for i := 1; i < len(lines); i++ {
		lines[i] = pad + strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "\n")
}
