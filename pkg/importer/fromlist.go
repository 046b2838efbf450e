// SPDX-License-Identifier: MPL-2.0

package importer

import (
	"context"
	"strings"

	"github.com/invowk/dotimport/pkg/modname"
)

// Wildcard is the from-list item that expands a unit's export list.
const Wildcard = "*"

// ensureFromList makes sure every item is an attribute of unit, loading
// submodules named by missing items. Leaf units are left untouched.
//
// A wildcard item expands unit's export list one level deep: wildcards
// reached while expanding are ignored, and so are exported names that are
// neither attributes nor loadable submodules. A concrete item that cannot be
// found fails with NotFound.
func (r *Resolver) ensureFromList(ctx context.Context, unit Handle, name modname.Name, items []string, expanding bool) error {
	if _, ok := unit.SearchPaths(); !ok {
		return nil
	}

	for _, item := range items {
		if strings.HasPrefix(item, Wildcard) {
			if expanding {
				continue
			}
			exports, ok := unit.Exports()
			if !ok {
				continue
			}
			if err := r.ensureFromList(ctx, unit, name, exports, true); err != nil {
				return err
			}
			continue
		}

		if item == "" {
			return &InvalidNameError{Name: string(name.Child(item)), Reason: modname.ErrEmptySegment}
		}
		if unit.HasAttr(item) {
			continue
		}

		full := name.Child(item)
		if err := full.Validate(r.maxNameLen); err != nil {
			return invalidName(string(full), err)
		}
		h, err := r.importSubmodule(ctx, unit, item, full)
		if err != nil {
			return err
		}
		if h == nil {
			if expanding {
				r.logger.Debug("skipping unresolvable export", "name", full)
				continue
			}
			return &NotFoundError{Name: full, Segment: item}
		}
		r.logger.Debug("attached from-list submodule", "name", full)
	}
	return nil
}
