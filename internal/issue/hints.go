// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"

	"github.com/invowk/dotimport/pkg/cueutil"
	"github.com/invowk/dotimport/pkg/importer"
)

type hint struct {
	target      error
	suggestions []string
}

var resolverHints = []hint{
	{importer.ErrInvalidName, []string{
		"Names are dot-separated segments; empty segments (\"a..b\", trailing dots) are rejected",
		"A relative level may not climb above the top level",
		"Raise max_name_length in config.cue if the name is legitimately long",
	}},
	{importer.ErrNotFound, []string{
		"Check that a unit file exists for every segment of the name",
		"List the configured search roots with 'dotimport config show'",
		"Add a root with --root DIR or search_paths in config.cue",
	}},
	{importer.ErrCircularLoad, []string{
		"A unit is being requested while it is still loading",
		"Set reentrant_loads: \"reload\" in config.cue to allow a second load",
	}},
	{importer.ErrParentNotLoaded, []string{
		"Resolve the parent package before reloading one of its submodules",
	}},
	{importer.ErrInconsistentState, []string{
		"Only units currently held by the resolver cache can be reloaded",
	}},
	{importer.ErrAttachFailed, []string{
		"The parent unit rejected the submodule attribute; check the parent's Handle implementation",
	}},
	{cueutil.ErrFileTooLarge, []string{
		"Split the unit file into smaller submodules",
	}},
	{importer.ErrLoaderFailure, []string{
		"Fix the unit file reported above; run with --verbose for the full error chain",
	}},
}

// Hints returns remediation suggestions for the first resolver error kind
// found in err's chain, or nil.
func Hints(err error) []string {
	if err == nil {
		return nil
	}
	for _, h := range resolverHints {
		if errors.Is(err, h.target) {
			return h.suggestions
		}
	}
	return nil
}
