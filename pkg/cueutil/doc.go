// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// Two flows are supported:
//
//   - ParseAndDecode compiles an embedded schema, unifies user data with a
//     root definition (e.g. "#Config"), validates, and decodes into a Go
//     struct. The configuration layer uses it.
//   - DecodeMap compiles a standalone CUE document that must be a concrete
//     struct and decodes it into a map. The filesystem unit loader uses it.
//
// Errors carry the file name and the JSON-style path of every offending
// field:
//
//	unit.cue: exports[1]: conflicting values "x" and 1
package cueutil
