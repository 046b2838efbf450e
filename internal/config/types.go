// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/invowk/dotimport/pkg/modname"
)

const (
	// ReentrantError fails a nested load of a unit whose load is in progress.
	ReentrantError ReentrantMode = "error"
	// ReentrantReload lets a nested load call the loader a second time.
	ReentrantReload ReentrantMode = "reload"

	// UnitFormatCUE selects *.cue unit files.
	UnitFormatCUE UnitFormat = "cue"
	// UnitFormatYAML selects *.yaml unit files.
	UnitFormatYAML UnitFormat = "yaml"
	// UnitFormatTOML selects *.toml unit files.
	UnitFormatTOML UnitFormat = "toml"

	// LogLevelDebug logs resolver decisions.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs informational messages.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs warnings and errors only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs errors only.
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidReentrantMode is returned when a ReentrantMode value is not recognized.
	ErrInvalidReentrantMode = errors.New("invalid reentrant mode")
	// ErrInvalidUnitFormat is returned when a UnitFormat value is not recognized.
	ErrInvalidUnitFormat = errors.New("invalid unit format")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidSearchPath is returned when a search path is empty or whitespace-only.
	ErrInvalidSearchPath = errors.New("invalid search path")
	// ErrInvalidMaxNameLength is returned when max_name_length is not positive.
	ErrInvalidMaxNameLength = errors.New("invalid max name length")
	// ErrInvalidCacheDirPath is returned when a CacheDirPath value is whitespace-only.
	ErrInvalidCacheDirPath = errors.New("invalid cache dir path")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ReentrantMode selects how nested loads of in-progress units behave.
	// Defined locally to keep config free of resolver types; the CLI maps
	// it to importer.ReentrantMode at the boundary.
	ReentrantMode string

	// InvalidReentrantModeError is returned when a ReentrantMode value is not recognized.
	// It wraps ErrInvalidReentrantMode for errors.Is() compatibility.
	InvalidReentrantModeError struct {
		Value ReentrantMode
	}

	// UnitFormat is a unit file format name.
	UnitFormat string

	// InvalidUnitFormatError is returned when a UnitFormat value is not recognized.
	InvalidUnitFormatError struct {
		Value UnitFormat
	}

	// LogLevel is the minimum level logged by the CLI.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidSearchPathError is returned for an empty or whitespace-only search path.
	InvalidSearchPathError struct {
		Index int
		Value string
	}

	// InvalidMaxNameLengthError is returned when max_name_length is not positive.
	InvalidMaxNameLengthError struct {
		Value int
	}

	// CacheDirPath is the git checkout cache directory.
	// The zero value ("") means "use the default cache directory".
	CacheDirPath string

	// InvalidCacheDirPathError is returned when a CacheDirPath value is
	// non-empty but whitespace-only.
	InvalidCacheDirPathError struct {
		Value CacheDirPath
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig and every collected field error.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// SearchPaths are the top-level search roots.
		SearchPaths []string `json:"search_paths" mapstructure:"search_paths"`
		// MaxNameLength bounds resolved names, in bytes.
		MaxNameLength int `json:"max_name_length" mapstructure:"max_name_length"`
		// ReentrantLoads selects the nested-load behavior.
		ReentrantLoads ReentrantMode `json:"reentrant_loads" mapstructure:"reentrant_loads"`
		// UnitFormats is the unit file probe order.
		UnitFormats []UnitFormat `json:"unit_formats" mapstructure:"unit_formats"`
		// CacheDir holds git checkouts; empty means the default location.
		CacheDir CacheDirPath `json:"cache_dir" mapstructure:"cache_dir"`
		// LogLevel is the CLI's minimum log level.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SearchPaths:    []string{},
		MaxNameLength:  modname.DefaultMaxLength,
		ReentrantLoads: ReentrantError,
		UnitFormats:    []UnitFormat{UnitFormatCUE, UnitFormatYAML, UnitFormatTOML},
		LogLevel:       LogLevelWarn,
	}
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for i, p := range c.SearchPaths {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, &InvalidSearchPathError{Index: i, Value: p})
		}
	}
	if c.MaxNameLength <= 0 {
		errs = append(errs, &InvalidMaxNameLengthError{Value: c.MaxNameLength})
	}
	if valid, fieldErrs := c.ReentrantLoads.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, f := range c.UnitFormats {
		if valid, fieldErrs := f.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.CacheDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and the field errors for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// String returns the string representation of the ReentrantMode.
func (m ReentrantMode) String() string { return string(m) }

// IsValid returns whether the ReentrantMode is one of the defined modes.
func (m ReentrantMode) IsValid() (bool, []error) {
	switch m {
	case ReentrantError, ReentrantReload:
		return true, nil
	default:
		return false, []error{&InvalidReentrantModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidReentrantModeError.
func (e *InvalidReentrantModeError) Error() string {
	return fmt.Sprintf("invalid reentrant_loads %q (valid: error, reload)", e.Value)
}

// Unwrap returns ErrInvalidReentrantMode for errors.Is() compatibility.
func (e *InvalidReentrantModeError) Unwrap() error { return ErrInvalidReentrantMode }

// String returns the string representation of the UnitFormat.
func (f UnitFormat) String() string { return string(f) }

// IsValid returns whether the UnitFormat is one of the defined formats.
func (f UnitFormat) IsValid() (bool, []error) {
	switch f {
	case UnitFormatCUE, UnitFormatYAML, UnitFormatTOML:
		return true, nil
	default:
		return false, []error{&InvalidUnitFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidUnitFormatError.
func (e *InvalidUnitFormatError) Error() string {
	return fmt.Sprintf("invalid unit format %q (valid: cue, yaml, toml)", e.Value)
}

// Unwrap returns ErrInvalidUnitFormat for errors.Is() compatibility.
func (e *InvalidUnitFormatError) Unwrap() error { return ErrInvalidUnitFormat }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// SlogLevel maps the level onto log/slog. Unknown values map to warn.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log_level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// Error implements the error interface for InvalidSearchPathError.
func (e *InvalidSearchPathError) Error() string {
	return fmt.Sprintf("search_paths[%d]: invalid search path %q: must be non-empty", e.Index, e.Value)
}

// Unwrap returns ErrInvalidSearchPath for errors.Is() compatibility.
func (e *InvalidSearchPathError) Unwrap() error { return ErrInvalidSearchPath }

// Error implements the error interface for InvalidMaxNameLengthError.
func (e *InvalidMaxNameLengthError) Error() string {
	return fmt.Sprintf("invalid max_name_length %d: must be positive", e.Value)
}

// Unwrap returns ErrInvalidMaxNameLength for errors.Is() compatibility.
func (e *InvalidMaxNameLengthError) Unwrap() error { return ErrInvalidMaxNameLength }

// String returns the string representation of the CacheDirPath.
func (p CacheDirPath) String() string { return string(p) }

// IsValid returns whether the CacheDirPath is valid.
// The zero value ("") is valid; non-zero values must not be whitespace-only.
func (p CacheDirPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidCacheDirPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidCacheDirPathError.
func (e *InvalidCacheDirPathError) Error() string {
	return fmt.Sprintf("invalid cache dir path %q: must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidCacheDirPath for errors.Is() compatibility.
func (e *InvalidCacheDirPathError) Unwrap() error { return ErrInvalidCacheDirPath }
