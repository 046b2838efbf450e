// SPDX-License-Identifier: MPL-2.0

// Package unitfs implements an importer.Loader backed by directory trees of
// unit files.
//
// A unit named "a.b" is looked up in the search directories handed to the
// loader (the configured roots for top-level names, the parent's search
// paths otherwise):
//
//	<dir>/b/unit.<ext>   package; its search paths are [<dir>/b]
//	<dir>/b.<ext>        leaf unit
//
// Supported extensions are "cue", "yaml" and "toml", probed in the
// configured order. A unit file holds a single top-level struct: each field
// becomes an attribute, and the reserved "exports" field (a list of strings)
// becomes the unit's export list.
//
// Roots of the form "git+<url>[@ref]" are cloned into a local cache and
// checked out at ref before being probed like a directory.
package unitfs
