// SPDX-License-Identifier: MPL-2.0

package importer

import (
	"maps"
	"slices"
)

type (
	// Handle is an opaque, loaded unit owned by the embedding environment.
	//
	// A unit is a package when SearchPaths reports ok; packages may have
	// submodules. Handles must be comparable (typically pointers) because
	// Reload verifies identity against the cache.
	Handle interface {
		// Attr returns the attribute stored under name.
		Attr(name string) (any, bool)
		// SetAttr stores value under name.
		SetAttr(name string, value any) error
		// HasAttr reports whether an attribute named name exists.
		HasAttr(name string) bool
		// SearchPaths returns the unit's search-path list. ok is false for leaf units.
		SearchPaths() (paths []string, ok bool)
		// FullName returns the declared full dotted name of the unit, if any.
		FullName() (name string, ok bool)
		// SetFullName records the declared full dotted name of the unit.
		SetFullName(name string) error
		// Exports returns the explicit export list used for wildcard expansion.
		Exports() (names []string, ok bool)
	}

	// Unit is a ready-made, map-backed Handle.
	Unit struct {
		name        string
		hasName     bool
		attrs       map[string]any
		paths       []string
		isPackage   bool
		exports     []string
		hasExports  bool
		fingerprint uint64
	}
)

var _ Handle = (*Unit)(nil)

// NewUnit creates a leaf unit with the given declared full name.
func NewUnit(name string) *Unit {
	return &Unit{
		name:    name,
		hasName: true,
		attrs:   make(map[string]any),
	}
}

// NewPackage creates a package unit with the given declared full name and
// search paths.
func NewPackage(name string, paths ...string) *Unit {
	u := NewUnit(name)
	u.SetSearchPaths(paths)
	return u
}

// Attr implements Handle.
func (u *Unit) Attr(name string) (any, bool) {
	v, ok := u.attrs[name]
	return v, ok
}

// SetAttr implements Handle.
func (u *Unit) SetAttr(name string, value any) error {
	if u.attrs == nil {
		u.attrs = make(map[string]any)
	}
	u.attrs[name] = value
	return nil
}

// HasAttr implements Handle.
func (u *Unit) HasAttr(name string) bool {
	_, ok := u.attrs[name]
	return ok
}

// AttrNames returns the unit's attribute names in sorted order.
func (u *Unit) AttrNames() []string {
	return slices.Sorted(maps.Keys(u.attrs))
}

// SearchPaths implements Handle.
func (u *Unit) SearchPaths() ([]string, bool) {
	if !u.isPackage {
		return nil, false
	}
	return slices.Clone(u.paths), true
}

// SetSearchPaths marks the unit as a package with the given search paths.
// A nil slice still marks the unit as a package with no paths.
func (u *Unit) SetSearchPaths(paths []string) {
	u.paths = slices.Clone(paths)
	u.isPackage = true
}

// IsPackage reports whether the unit declares a search-path list.
func (u *Unit) IsPackage() bool { return u.isPackage }

// FullName implements Handle.
func (u *Unit) FullName() (string, bool) { return u.name, u.hasName }

// SetFullName implements Handle.
func (u *Unit) SetFullName(name string) error {
	u.name = name
	u.hasName = true
	return nil
}

// Exports implements Handle.
func (u *Unit) Exports() ([]string, bool) {
	if !u.hasExports {
		return nil, false
	}
	return slices.Clone(u.exports), true
}

// SetExports sets the unit's explicit export list.
func (u *Unit) SetExports(names []string) {
	u.exports = slices.Clone(names)
	u.hasExports = true
}

// ClearExports removes the unit's export list.
func (u *Unit) ClearExports() {
	u.exports = nil
	u.hasExports = false
}

// Fingerprint returns the content fingerprint recorded by the loader, or 0.
func (u *Unit) Fingerprint() uint64 { return u.fingerprint }

// SetFingerprint records a content fingerprint for the unit.
func (u *Unit) SetFingerprint(fp uint64) { u.fingerprint = fp }
