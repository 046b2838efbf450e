// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"

	"github.com/invowk/dotimport/pkg/importer"
	"github.com/invowk/dotimport/pkg/modname"
)

type (
	// MemLoader is an importer.Loader serving units from a map keyed by full
	// name. It records every call it receives.
	MemLoader struct {
		// Units maps full names to the unit returned for them.
		Units map[modname.Name]*importer.Unit
		// Errs maps full names to an error returned instead of a unit.
		Errs map[modname.Name]error
		// Calls records every request in order.
		Calls []importer.LoadRequest
		// OnLoad, if set, runs before the map lookup. A non-nil handle or
		// error from it is returned directly.
		OnLoad func(ctx context.Context, req importer.LoadRequest) (importer.Handle, error)
	}
)

var _ importer.Loader = (*MemLoader)(nil)

// NewMemLoader creates an empty MemLoader.
func NewMemLoader() *MemLoader {
	return &MemLoader{
		Units: make(map[modname.Name]*importer.Unit),
		Errs:  make(map[modname.Name]error),
	}
}

// AddPackage registers a package unit named name whose single search path is
// "mem:<name>". When exports are given they become its export list.
func (l *MemLoader) AddPackage(name string, exports ...string) *importer.Unit {
	u := importer.NewPackage(name, "mem:"+name)
	if len(exports) > 0 {
		u.SetExports(exports)
	}
	l.Units[modname.Name(name)] = u
	return u
}

// AddUnit registers a leaf unit named name.
func (l *MemLoader) AddUnit(name string) *importer.Unit {
	u := importer.NewUnit(name)
	l.Units[modname.Name(name)] = u
	return u
}

// Fail makes every load of name return err.
func (l *MemLoader) Fail(name string, err error) {
	l.Errs[modname.Name(name)] = err
}

// Load implements importer.Loader.
func (l *MemLoader) Load(ctx context.Context, req importer.LoadRequest) (importer.Handle, error) {
	l.Calls = append(l.Calls, req)
	if l.OnLoad != nil {
		if h, err := l.OnLoad(ctx, req); h != nil || err != nil {
			return h, err
		}
	}
	if err := l.Errs[req.FullName]; err != nil {
		return nil, err
	}
	u, ok := l.Units[req.FullName]
	if !ok {
		return nil, importer.ErrUnitNotFound
	}
	return u, nil
}

// CallNames returns the full names of all recorded calls, in order.
func (l *MemLoader) CallNames() []string {
	out := make([]string, 0, len(l.Calls))
	for _, c := range l.Calls {
		out = append(out, string(c.FullName))
	}
	return out
}

// CallCount returns how many times name was requested.
func (l *MemLoader) CallCount(name string) int {
	n := 0
	for _, c := range l.Calls {
		if string(c.FullName) == name {
			n++
		}
	}
	return n
}
