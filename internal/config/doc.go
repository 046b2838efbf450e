// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/dotimport/config.cue (or the XDG
// equivalent on Linux, ~/Library/Application Support/dotimport/config.cue on
// macOS, %APPDATA%\dotimport\config.cue on Windows), or from an explicit path.
// Files are validated against an embedded CUE schema (config_schema.cue).
// Environment variables prefixed with DOTIMPORT_ override file values, e.g.
// DOTIMPORT_LOG_LEVEL=debug or DOTIMPORT_SEARCH_PATHS=/a,/b.
package config
