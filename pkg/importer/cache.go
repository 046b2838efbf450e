// SPDX-License-Identifier: MPL-2.0

package importer

import (
	"maps"
	"slices"

	"github.com/invowk/dotimport/pkg/modname"
)

const (
	// Absent means the name has never been resolved.
	Absent State = iota
	// Found means the name resolved to a unit.
	Found
	// Missing means a resolution path recorded the exact name as not found.
	Missing
)

type (
	// State is the cache state of a full dotted name.
	State int

	// Entry is the cache value for a name. Handle is set only when State is Found.
	Entry struct {
		State  State
		Handle Handle
	}

	// Record is one row of a Store snapshot.
	Record struct {
		Name   modname.Name
		State  State
		Handle Handle
	}

	// Store maps full dotted names to cache entries.
	//
	// Entries are never removed: Found entries may only be replaced by Put,
	// and Missing entries may later be upgraded to Found.
	Store interface {
		// Get returns the entry for name, or an Absent entry.
		Get(name modname.Name) Entry
		// Put records name as Found with handle h, replacing any previous entry.
		Put(name modname.Name, h Handle)
		// MarkMissing records name as Missing unless it is already Found.
		MarkMissing(name modname.Name)
		// Snapshot lists every recorded name in lexical order.
		Snapshot() []Record
	}

	// MemoryStore is the default in-memory Store. It is not safe for
	// concurrent use.
	MemoryStore struct {
		entries map[modname.Name]Entry
	}
)

var _ Store = (*MemoryStore)(nil)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Found:
		return "found"
	case Missing:
		return "missing"
	default:
		return "unknown"
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[modname.Name]Entry)}
}

// Get implements Store.
func (s *MemoryStore) Get(name modname.Name) Entry {
	e, ok := s.entries[name]
	if !ok {
		return Entry{State: Absent}
	}
	return e
}

// Put implements Store.
func (s *MemoryStore) Put(name modname.Name, h Handle) {
	s.entries[name] = Entry{State: Found, Handle: h}
}

// MarkMissing implements Store.
func (s *MemoryStore) MarkMissing(name modname.Name) {
	if s.entries[name].State == Found {
		return
	}
	s.entries[name] = Entry{State: Missing}
}

// Snapshot implements Store.
func (s *MemoryStore) Snapshot() []Record {
	names := slices.Sorted(maps.Keys(s.entries))
	out := make([]Record, 0, len(names))
	for _, n := range names {
		e := s.entries[n]
		out = append(out, Record{Name: n, State: e.State, Handle: e.Handle})
	}
	return out
}

// Len returns the number of recorded names.
func (s *MemoryStore) Len() int { return len(s.entries) }
