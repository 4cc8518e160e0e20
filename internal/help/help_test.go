// SPDX-License-Identifier: MPL-2.0

package help

import (
	"strings"
	"testing"

	"github.com/invowk/cliframe/pkg/descriptor"
)

func sampleCommands() []descriptor.Command {
	path := "."
	return []descriptor.Command{
		{
			Name:    "copy",
			Summary: "Copy a file. Existing targets are replaced.",
			Args: []descriptor.Argument{
				{Name: "src", Position: 0, Type: "string", Summary: "Source file."},
				{Name: "dst", Position: 1, Type: "string", Summary: "Target file."},
			},
			Options: []descriptor.Option{
				{Long: "dry-run", Summary: "Only print what would be copied."},
			},
		},
		{
			Name:    "ls",
			Summary: "List a directory",
			Args: []descriptor.Argument{
				{Name: "path", Position: 0, Type: "string", Default: &path, Summary: "Directory to list."},
			},
			Options: []descriptor.Option{
				{Short: "o", Long: "output", Summary: "Output file.\nDefaults to stdout."},
			},
		},
	}
}

func TestRenderer_Summary(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	if err := New().Summary(&sb, sampleCommands()); err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	want := "Available commands are:\n" +
		"\n" +
		" copy : Copy a file.\n" +
		" ls   : List a directory\n" +
		"\n" +
		" Try `[command] --help' for more information.\n"
	if got := sb.String(); got != want {
		t.Errorf("Summary() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderer_Usage(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	if err := New().Usage(&sb, sampleCommands()[1]); err != nil {
		t.Fatalf("Usage() error = %v", err)
	}

	want := "usage: ls [OPTION]... path\n" +
		"\n" +
		" List a directory\n" +
		"\n" +
		"OPTIONS\n" +
		"\n" +
		" -o,--output : Output file.\n" +
		"               Defaults to stdout.\n" +
		"\n" +
		"ARGUMENTS\n" +
		"\n" +
		" path : Directory to list. (default \".\")\n" +
		"\n"
	if got := sb.String(); got != want {
		t.Errorf("Usage() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderer_UsageLongOnlyOption(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	if err := New(WithColor(false)).Usage(&sb, sampleCommands()[0]); err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	got := sb.String()
	if !strings.HasPrefix(got, "usage: copy [OPTION]... src dst\n") {
		t.Errorf("Usage() does not start with the synopsis:\n%s", got)
	}
	if !strings.Contains(got, " --dry-run : Only print what would be copied.\n") {
		t.Errorf("Usage() is missing the long-only option:\n%s", got)
	}
}

func TestRenderer_AlignsNonASCIINames(t *testing.T) {
	t.Parallel()

	cmds := []descriptor.Command{
		{Name: "café", Summary: "Brew coffee."},
		{Name: "ls", Summary: "List a directory."},
	}
	var sb strings.Builder
	if err := New().Summary(&sb, cmds); err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if got := sb.String(); !strings.Contains(got, " café : Brew coffee.\n ls   : List a directory.\n") {
		t.Errorf("Summary() misaligned:\n%s", got)
	}

	cmd := descriptor.Command{
		Name: "brew",
		Args: []descriptor.Argument{
			{Name: "größe", Position: 0, Summary: "Cup size."},
			{Name: "n", Position: 1, Summary: "Cups."},
		},
		Options: []descriptor.Option{
			{Long: "été", Summary: "Iced."},
			{Short: "o", Long: "output", Summary: "Output file."},
		},
	}
	sb.Reset()
	if err := New().Usage(&sb, cmd); err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	got := sb.String()
	for _, line := range []string{
		" --été       : Iced.\n",
		" -o,--output : Output file.\n",
		" größe : Cup size.\n",
		" n     : Cups.\n",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("Usage() is missing %q:\n%s", line, got)
		}
	}
}

func TestSynopsis(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  descriptor.Command
		want string
	}{
		{"bare", descriptor.Command{Name: "version"}, "usage: version"},
		{"options only", descriptor.Command{Name: "ls", Options: []descriptor.Option{{Short: "a"}}}, "usage: ls [OPTION]..."},
		{
			"args out of order",
			descriptor.Command{Name: "mv", Args: []descriptor.Argument{
				{Name: "dst", Position: 1},
				{Name: "src", Position: 0},
			}},
			"usage: mv src dst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Synopsis(tt.cmd); got != tt.want {
				t.Errorf("Synopsis() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFirstSentence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"List a directory. Prints entries.", "List a directory."},
		{"  no period  ", "no period"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FirstSentence(tt.in); got != tt.want {
			t.Errorf("FirstSentence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
