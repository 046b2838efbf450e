// SPDX-License-Identifier: MPL-2.0

package importer

import (
	"context"
	"reflect"

	"github.com/invowk/dotimport/pkg/modname"
)

// Reload calls the Loader again for the unit h, which must be the current
// cache value for its declared full name, and stores the result under the
// same name. The returned handle may be h itself or a new unit.
//
// The parent's attribute for h is not updated here; only the Loader can
// re-link it.
func (r *Resolver) Reload(ctx context.Context, h Handle) (Handle, error) {
	if r.loader == nil {
		return nil, ErrNoLoader
	}
	if h == nil {
		return nil, &InconsistentStateError{}
	}

	raw, ok := h.FullName()
	if !ok || raw == "" {
		return nil, &InconsistentStateError{}
	}
	name := modname.Name(raw)
	if e := r.store.Get(name); e.State != Found || !sameHandle(e.Handle, h) {
		return nil, &InconsistentStateError{Name: name}
	}

	req := LoadRequest{FullName: name, LeafName: name.Leaf()}
	if parentName := name.Parent(); !parentName.IsRoot() {
		pe := r.store.Get(parentName)
		if pe.State != Found {
			return nil, &ParentNotLoadedError{Name: name, Parent: parentName}
		}
		if paths, ok := pe.Handle.SearchPaths(); ok {
			if paths == nil {
				paths = []string{}
			}
			req.SearchPaths = paths
		}
	}

	r.logger.Debug("reloading unit", "name", name)
	nh, err := r.load(ctx, req)
	if err != nil {
		return nil, err
	}
	if nh == nil {
		return nil, &NotFoundError{Name: name, Segment: req.LeafName}
	}
	r.store.Put(name, nh)
	return nh, nil
}

// sameHandle reports whether a and b are the same unit. Handles of
// non-comparable dynamic types never match.
func sameHandle(a, b Handle) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
