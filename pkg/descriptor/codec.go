// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/invowk/cliframe/pkg/cueutil"
)

// Descriptor file formats.
const (
	FormatCUE  Format = "cue"
	FormatTOML Format = "toml"
	FormatHCL  Format = "hcl"
	FormatJSON Format = "json"

	// DefaultPath is where descriptor files are looked up relative to a
	// search directory.
	DefaultPath = "cliframe/commands.cue"

	schemaDefinition = "#Commands"
)

//go:embed descriptor_schema.cue
var schemaBytes []byte

type (
	// Format identifies a descriptor file encoding.
	Format string

	// Source yields command descriptors.
	Source interface {
		Commands() ([]Command, error)
	}

	// FileSource reads descriptors from a file. The format follows the file
	// extension. A nil FS reads from the operating system.
	FileSource struct {
		FS   fs.FS
		Path string
	}

	// Static is a Source backed by literal descriptors.
	Static []Command
)

// Formats returns the supported formats.
func Formats() []Format {
	return []Format{FormatCUE, FormatTOML, FormatHCL, FormatJSON}
}

// String returns the format name.
func (f Format) String() string { return string(f) }

// Validate returns an error wrapping ErrUnsupportedFormat for unknown formats.
func (f Format) Validate() error {
	switch f {
	case FormatCUE, FormatTOML, FormatHCL, FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q (supported: cue, toml, hcl, json)", ErrUnsupportedFormat, string(f))
	}
}

// FormatOf returns the format implied by the file extension of path.
func FormatOf(path string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err := f.Validate(); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode parses a descriptor file. name is used in error messages. The
// returned commands are normalized and validated.
func Decode(format Format, name string, data []byte) ([]Command, error) {
	var (
		set Set
		err error
	)
	switch format {
	case FormatCUE:
		var result *cueutil.ParseResult[Set]
		result, err = cueutil.ParseAndDecode[Set](schemaBytes, data, schemaDefinition, cueutil.WithFilename(name))
		if err == nil {
			set = *result.Value
		}
	case FormatTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&set)
	case FormatHCL:
		set, err = decodeHCL(name, data)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&set)
	default:
		return nil, format.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDescriptor, name, err)
	}

	for i := range set.Commands {
		set.Commands[i] = set.Commands[i].Normalize()
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return set.Commands, nil
}

// Encode writes cmds in the given format.
func Encode(w io.Writer, format Format, cmds []Command) error {
	set := Set{Commands: make([]Command, len(cmds))}
	for i, c := range cmds {
		set.Commands[i] = c.Normalize()
	}

	switch format {
	case FormatCUE:
		data, err := cueutil.Marshal(set)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatTOML:
		return toml.NewEncoder(w).SetIndentTables(true).Encode(set)
	case FormatHCL:
		return encodeHCL(w, set)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	default:
		return format.Validate()
	}
}

// ReadFile decodes the descriptor file at path.
func ReadFile(path string) ([]Command, error) {
	return FileSource{Path: path}.Commands()
}

// Commands implements Source.
func (s FileSource) Commands() ([]Command, error) {
	format, err := FormatOf(s.Path)
	if err != nil {
		return nil, err
	}

	var data []byte
	if s.FS != nil {
		data, err = fs.ReadFile(s.FS, s.Path)
	} else {
		data, err = os.ReadFile(s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("read descriptor file: %w", err)
	}
	return Decode(format, s.Path, data)
}

// Commands implements Source.
func (s Static) Commands() ([]Command, error) {
	set := Set{Commands: make([]Command, len(s))}
	for i, c := range s {
		set.Commands[i] = c.Normalize()
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set.Commands, nil
}
