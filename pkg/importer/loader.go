// SPDX-License-Identifier: MPL-2.0

package importer

import (
	"context"
	"errors"

	"github.com/invowk/dotimport/pkg/modname"
)

// ErrUnitNotFound is returned (possibly wrapped) by a Loader that cannot
// find the requested unit. Any other error is treated as a loader failure.
var ErrUnitNotFound = errors.New("unit not found")

type (
	// LoadRequest describes one unit to load.
	LoadRequest struct {
		// FullName is the full dotted name the unit will be cached under.
		FullName modname.Name
		// LeafName is the last segment of the name being looked up.
		LeafName string
		// SearchPaths holds the parent package's search paths. It is nil for
		// top-level lookups and when the parent declares none.
		SearchPaths []string
	}

	// Loader loads a single unit. It is called only on a cache miss; the
	// resolver caches the returned handle itself.
	//
	// A Loader may call back into the Resolver that invoked it, and may
	// publish a partially built unit early through Resolver.Cache().Put.
	Loader interface {
		Load(ctx context.Context, req LoadRequest) (Handle, error)
	}

	// LoaderFunc adapts an ordinary function to the Loader interface.
	LoaderFunc func(ctx context.Context, req LoadRequest) (Handle, error)
)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, req LoadRequest) (Handle, error) {
	return f(ctx, req)
}
