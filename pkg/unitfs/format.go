// SPDX-License-Identifier: MPL-2.0

package unitfs

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/invowk/dotimport/pkg/cueutil"
)

const (
	// FormatCUE selects CUE unit files (*.cue).
	FormatCUE Format = "cue"
	// FormatYAML selects YAML unit files (*.yaml).
	FormatYAML Format = "yaml"
	// FormatTOML selects TOML unit files (*.toml).
	FormatTOML Format = "toml"

	// PackageFileStem is the base name of the file that marks a package directory.
	PackageFileStem = "unit"

	// ExportsField is the reserved field holding a unit's export list.
	ExportsField = "exports"
)

var (
	// ErrInvalidFormat is returned when a Format value is not recognized.
	ErrInvalidFormat = errors.New("invalid unit format")

	// ErrInvalidExports is returned when the exports field is not a list of strings.
	ErrInvalidExports = errors.New("invalid exports field")
)

type (
	// Format is a unit file format; its value is also the file extension.
	Format string

	// InvalidFormatError is returned when a Format value is not recognized.
	InvalidFormatError struct {
		Value Format
	}
)

// DefaultFormats returns the probe order used when none is configured.
func DefaultFormats() []Format {
	return []Format{FormatCUE, FormatYAML, FormatTOML}
}

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid unit format %q (valid: cue, yaml, toml)", e.Value)
}

// Unwrap returns ErrInvalidFormat for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// String returns the string representation of the Format.
func (f Format) String() string { return string(f) }

// IsValid returns whether f is a supported format.
func (f Format) IsValid() (bool, []error) {
	if slices.Contains(DefaultFormats(), f) {
		return true, nil
	}
	return false, []error{&InvalidFormatError{Value: f}}
}

// Ext returns the file extension including the leading dot.
func (f Format) Ext() string { return "." + string(f) }

// decode parses data as a top-level map in format f.
func (f Format) decode(data []byte, filename string) (map[string]any, error) {
	switch f {
	case FormatCUE:
		return cueutil.DecodeMap(data, cueutil.WithFilename(filename))
	case FormatYAML:
		out := make(map[string]any)
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		return out, nil
	case FormatTOML:
		out := make(map[string]any)
		if err := toml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		return out, nil
	default:
		return nil, &InvalidFormatError{Value: f}
	}
}

// splitExports removes the exports field from fields and returns its
// items. ok is false when the field is absent.
func splitExports(fields map[string]any, filename string) (exports []string, ok bool, err error) {
	raw, present := fields[ExportsField]
	if !present {
		return nil, false, nil
	}
	delete(fields, ExportsField)

	items, isList := raw.([]any)
	if !isList {
		return nil, false, fmt.Errorf("%s: %w: expected a list, got %T", filename, ErrInvalidExports, raw)
	}
	exports = make([]string, 0, len(items))
	for i, item := range items {
		s, isString := item.(string)
		if !isString {
			return nil, false, fmt.Errorf("%s: %w: %s[%d] is %T, not a string", filename, ErrInvalidExports, ExportsField, i, item)
		}
		exports = append(exports, s)
	}
	return exports, true, nil
}
