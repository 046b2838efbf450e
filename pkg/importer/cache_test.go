// SPDX-License-Identifier: MPL-2.0

package importer

import (
	"testing"

	"github.com/invowk/dotimport/pkg/modname"
)

func TestMemoryStore_States(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	if got := s.Get("a").State; got != Absent {
		t.Fatalf("Get() on empty store = %v, want absent", got)
	}

	s.MarkMissing("a")
	if got := s.Get("a").State; got != Missing {
		t.Fatalf("after MarkMissing state = %v, want missing", got)
	}

	u := NewUnit("a")
	s.Put("a", u)
	e := s.Get("a")
	if e.State != Found || e.Handle != Handle(u) {
		t.Fatalf("after Put entry = %+v, want found with unit", e)
	}

	s.MarkMissing("a")
	if got := s.Get("a").State; got != Found {
		t.Errorf("MarkMissing downgraded a found entry to %v", got)
	}

	u2 := NewUnit("a")
	s.Put("a", u2)
	if got := s.Get("a").Handle; got != Handle(u2) {
		t.Errorf("Put did not replace the handle")
	}
}

func TestMemoryStore_Snapshot(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	s.Put("b", NewUnit("b"))
	s.MarkMissing("a.b")
	s.Put("a", NewPackage("a"))

	snap := s.Snapshot()
	want := []struct {
		name  modname.Name
		state State
	}{
		{"a", Found},
		{"a.b", Missing},
		{"b", Found},
	}
	if len(snap) != len(want) {
		t.Fatalf("Snapshot() returned %d records, want %d", len(snap), len(want))
	}
	for i, w := range want {
		if snap[i].Name != w.name || snap[i].State != w.state {
			t.Errorf("Snapshot()[%d] = {%s %v}, want {%s %v}", i, snap[i].Name, snap[i].State, w.name, w.state)
		}
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	tests := map[State]string{
		Absent:   "absent",
		Found:    "found",
		Missing:  "missing",
		State(9): "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestUnit_Attributes(t *testing.T) {
	t.Parallel()

	u := NewUnit("m")
	if _, ok := u.SearchPaths(); ok {
		t.Error("NewUnit should create a leaf unit")
	}
	if _, ok := u.Exports(); ok {
		t.Error("NewUnit should have no export list")
	}
	if err := u.SetAttr("x", 1); err != nil {
		t.Fatalf("SetAttr() error: %v", err)
	}
	if !u.HasAttr("x") || u.HasAttr("y") {
		t.Error("HasAttr() mismatch")
	}
	if v, _ := u.Attr("x"); v != 1 {
		t.Errorf("Attr(x) = %v, want 1", v)
	}

	u.SetSearchPaths(nil)
	paths, ok := u.SearchPaths()
	if !ok || len(paths) != 0 {
		t.Errorf("SearchPaths() = %v, %v; want empty package", paths, ok)
	}

	u.SetExports([]string{"x"})
	if names, ok := u.Exports(); !ok || len(names) != 1 {
		t.Errorf("Exports() = %v, %v", names, ok)
	}
	u.ClearExports()
	if _, ok := u.Exports(); ok {
		t.Error("ClearExports() left an export list")
	}

	if got := u.AttrNames(); len(got) != 1 || got[0] != "x" {
		t.Errorf("AttrNames() = %v, want [x]", got)
	}
}

func TestSameHandle(t *testing.T) {
	t.Parallel()

	a, b := NewUnit("a"), NewUnit("a")
	if !sameHandle(a, a) {
		t.Error("sameHandle(a, a) = false")
	}
	if sameHandle(a, b) {
		t.Error("sameHandle(a, b) = true for distinct units")
	}
	if sameHandle(a, nil) {
		t.Error("sameHandle(a, nil) = true")
	}
}
