// SPDX-License-Identifier: MPL-2.0

package importer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/invowk/dotimport/internal/testutil"
	"github.com/invowk/dotimport/pkg/importer"
)

func TestReload_ReinvokesLoader(t *testing.T) {
	t.Parallel()

	l := testutil.NewMemLoader()
	a := l.AddPackage("a")
	old := l.AddUnit("a.b")
	r := newResolver(l)

	got, err := r.Resolve(context.Background(), legacy("a.b", importer.Context{}, "*"))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	fresh := l.AddUnit("a.b")
	l.Calls = nil
	reloaded, err := r.Reload(context.Background(), got)
	if err != nil {
		t.Fatalf("Reload() error: %v", err)
	}

	want := []importer.LoadRequest{{FullName: "a.b", LeafName: "b", SearchPaths: []string{"mem:a"}}}
	if diff := cmp.Diff(want, l.Calls); diff != "" {
		t.Errorf("reload request mismatch (-want +got):\n%s", diff)
	}
	if reloaded != importer.Handle(fresh) {
		t.Errorf("Reload() did not return the loader's result")
	}
	if e := r.Cache().Get("a.b"); e.State != importer.Found || e.Handle != importer.Handle(fresh) {
		t.Errorf("cache entry after reload = %+v, want the new unit", e)
	}
	// The parent keeps its stale attribute unless the loader re-links it.
	if v, _ := a.Attr("b"); v != importer.Handle(old) {
		t.Errorf("parent attribute changed by reload")
	}
}

func TestReload_TopLevel(t *testing.T) {
	t.Parallel()

	l := testutil.NewMemLoader()
	m := l.AddUnit("m")
	r := newResolver(l)
	mustPreload(t, r, "m")
	l.Calls = nil

	got, err := r.Reload(context.Background(), m)
	if err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if got != importer.Handle(m) {
		t.Errorf("Reload() = different unit, want the same mutated unit")
	}
	if diff := cmp.Diff([]importer.LoadRequest{{FullName: "m", LeafName: "m"}}, l.Calls); diff != "" {
		t.Errorf("reload request mismatch (-want +got):\n%s", diff)
	}
}

func TestReload_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	tests := []struct {
		name    string
		setup   func(r *importer.Resolver, l *testutil.MemLoader) importer.Handle
		wantErr error
	}{
		{
			name: "not cached",
			setup: func(_ *importer.Resolver, _ *testutil.MemLoader) importer.Handle {
				return importer.NewUnit("m")
			},
			wantErr: importer.ErrInconsistentState,
		},
		{
			name: "different identity",
			setup: func(r *importer.Resolver, _ *testutil.MemLoader) importer.Handle {
				r.Cache().Put("m", importer.NewUnit("m"))
				return importer.NewUnit("m")
			},
			wantErr: importer.ErrInconsistentState,
		},
		{
			name: "no declared name",
			setup: func(_ *importer.Resolver, _ *testutil.MemLoader) importer.Handle {
				return &importer.Unit{}
			},
			wantErr: importer.ErrInconsistentState,
		},
		{
			name: "parent not loaded",
			setup: func(r *importer.Resolver, _ *testutil.MemLoader) importer.Handle {
				u := importer.NewUnit("a.b")
				r.Cache().Put("a.b", u)
				return u
			},
			wantErr: importer.ErrParentNotLoaded,
		},
		{
			name: "loader failure",
			setup: func(r *importer.Resolver, l *testutil.MemLoader) importer.Handle {
				u := importer.NewUnit("m")
				r.Cache().Put("m", u)
				l.Fail("m", boom)
				return u
			},
			wantErr: boom,
		},
		{
			name: "loader no longer finds it",
			setup: func(r *importer.Resolver, _ *testutil.MemLoader) importer.Handle {
				u := importer.NewUnit("m")
				r.Cache().Put("m", u)
				return u
			},
			wantErr: importer.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := testutil.NewMemLoader()
			r := newResolver(l)
			h := tt.setup(r, l)

			if _, err := r.Reload(context.Background(), h); !errors.Is(err, tt.wantErr) {
				t.Errorf("Reload() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReload_KeepsFoundOnFailure(t *testing.T) {
	t.Parallel()

	l := testutil.NewMemLoader()
	m := l.AddUnit("m")
	r := newResolver(l)
	mustPreload(t, r, "m")
	delete(l.Units, "m")

	if _, err := r.Reload(context.Background(), m); err == nil {
		t.Fatal("Reload() succeeded, want error")
	}
	if e := r.Cache().Get("m"); e.State != importer.Found || e.Handle != importer.Handle(m) {
		t.Errorf("cache entry after failed reload = %+v, want original unit", e)
	}
}
