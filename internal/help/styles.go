// SPDX-License-Identifier: MPL-2.0

package help

import "github.com/charmbracelet/lipgloss"

// Color palette shared with the tooling CLI.
const (
	// ColorPrimary is purple - used for headers.
	ColorPrimary = lipgloss.Color("#7C3AED")
	// ColorMuted is gray - used for hints.
	ColorMuted = lipgloss.Color("#6B7280")
	// ColorWarning is amber - used for section labels.
	ColorWarning = lipgloss.Color("#F59E0B")
	// ColorHighlight is blue - used for command names and option keys.
	ColorHighlight = lipgloss.Color("#3B82F6")
	// ColorVerbose is light gray - used for defaults and types.
	ColorVerbose = lipgloss.Color("#9CA3AF")
)

type styles struct {
	header  lipgloss.Style
	command lipgloss.Style
	label   lipgloss.Style
	detail  lipgloss.Style
	hint    lipgloss.Style
}

func plainStyles() styles {
	s := lipgloss.NewStyle()
	return styles{header: s, command: s, label: s, detail: s, hint: s}
}

func colorStyles() styles {
	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary),
		command: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHighlight),
		label: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWarning),
		detail: lipgloss.NewStyle().
			Foreground(ColorVerbose),
		hint: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true),
	}
}
