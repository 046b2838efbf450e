// SPDX-License-Identifier: MPL-2.0

package importer

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/invowk/dotimport/pkg/modname"
)

// LegacyLevel selects legacy implicit-relative resolution.
const LegacyLevel = -1

const (
	// ReentrantError fails a nested load of a unit whose load is in progress.
	ReentrantError ReentrantMode = iota
	// ReentrantReload lets a nested load of an in-progress unit call the
	// Loader a second time.
	ReentrantReload
)

type (
	// ReentrantMode selects how a nested load of an in-progress unit behaves.
	ReentrantMode int

	// Option configures a Resolver.
	Option func(*Resolver)

	// Context identifies the unit issuing a resolve request.
	Context struct {
		// Name is the requesting unit's full name. The zero value means no context.
		Name modname.Name
		// IsPackage reports whether the requesting unit is a package.
		IsPackage bool
	}

	// Request is a single resolve call.
	Request struct {
		// Name is the dotted name to resolve.
		Name modname.Name
		// Context anchors relative lookups.
		Context Context
		// FromList names attributes or submodules to attach to the tail unit.
		// The Wildcard item expands the unit's export list.
		FromList []string
		// Level >= 0 is an explicit relative depth; LegacyLevel (< 0) selects
		// legacy implicit-relative lookup.
		Level int
	}

	// Resolver resolves dotted names through a Store and a Loader.
	Resolver struct {
		store      Store
		loader     Loader
		maxNameLen int
		reentrant  ReentrantMode
		logger     *slog.Logger

		// inProgress counts active Loader calls per full name.
		inProgress map[modname.Name]int
	}

	// walk is the per-call resolution state.
	walk struct {
		// buf is the accumulated full name of parent.
		buf modname.Name
		// parent is the unit new segments resolve under; nil is the root.
		parent Handle
		// unqualified is set once the walk has fallen back to a bare top-level name.
		unqualified bool
	}
)

// WithStore sets the cache the resolver reads and populates.
func WithStore(s Store) Option {
	return func(r *Resolver) { r.store = s }
}

// WithLoader sets the initial Loader.
func WithLoader(l Loader) Option {
	return func(r *Resolver) { r.loader = l }
}

// WithMaxNameLength sets the longest accumulated name accepted.
func WithMaxNameLength(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxNameLen = n
		}
	}
}

// WithReentrantMode selects the behavior of nested loads of in-progress units.
func WithReentrantMode(m ReentrantMode) Option {
	return func(r *Resolver) { r.reentrant = m }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Resolver. Without options it uses a fresh MemoryStore, no
// Loader, and modname.DefaultMaxLength.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		maxNameLen: modname.DefaultMaxLength,
		reentrant:  ReentrantError,
		logger:     slog.Default(),
		inProgress: make(map[modname.Name]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.store == nil {
		r.store = NewMemoryStore()
	}
	return r
}

// SetLoader replaces the active Loader. Setting the current Loader again
// has no effect.
func (r *Resolver) SetLoader(l Loader) { r.loader = l }

// Loader returns the active Loader, or nil.
func (r *Resolver) Loader() Loader { return r.loader }

// Cache returns the resolver's Store.
func (r *Resolver) Cache() Store { return r.store }

// Resolve resolves req.Name and returns the head unit, or the tail unit when
// req.FromList is non-empty.
//
// Units resolved before a failure stay cached, so a later call can reuse
// the resolved prefix.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Handle, error) {
	if r.loader == nil {
		return nil, ErrNoLoader
	}

	var (
		w             walk
		allowFallback bool
		segs          []string
		err           error
	)
	if req.Level < 0 {
		w, err = r.legacyParent(req.Context)
		if err != nil {
			return nil, err
		}
		allowFallback = w.parent != nil
		segs = strings.Split(string(req.Name), modname.Separator)
	} else {
		w, err = r.explicitAnchor(ctx, req.Context, req.Level)
		if err != nil {
			return nil, err
		}
		if !req.Name.IsRoot() || req.Level == 0 {
			segs = strings.Split(string(req.Name), modname.Separator)
		}
	}

	head, tail := w.parent, w.parent
	for i, seg := range segs {
		h, err := r.next(ctx, &w, req.Name, seg, allowFallback && i == 0)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			head = h
		}
		tail = h
	}

	if len(req.FromList) == 0 {
		return head, nil
	}
	if err := r.ensureFromList(ctx, tail, w.buf, req.FromList, false); err != nil {
		return nil, err
	}
	return tail, nil
}

// legacyParent derives the candidate parent for legacy resolution from the
// requesting unit: the unit itself if it is a package, else its parent.
// A parent that is not cached as Found falls back to the root.
func (r *Resolver) legacyParent(c Context) (walk, error) {
	name := c.Name
	if !c.IsPackage {
		name = name.Parent()
	}
	if name.IsRoot() {
		return walk{}, nil
	}
	if len(name) > r.maxNameLen {
		return walk{}, &InvalidNameError{Name: string(name), Reason: modname.ErrTooLong}
	}
	e := r.store.Get(name)
	if e.State != Found {
		return walk{}, nil
	}
	return walk{buf: name, parent: e.Handle}, nil
}

// explicitAnchor resolves the ancestor an explicit relative lookup starts
// from, walking its own segments qualified from the root.
func (r *Resolver) explicitAnchor(ctx context.Context, c Context, level int) (walk, error) {
	anchor, err := modname.Anchor(c.Name, c.IsPackage, level)
	if err != nil {
		return walk{}, invalidName(string(c.Name), err)
	}
	var w walk
	for _, seg := range anchor.Segments() {
		if _, err := r.next(ctx, &w, anchor, seg, false); err != nil {
			return walk{}, err
		}
	}
	return w, nil
}

// next resolves one segment under w.parent and advances the walk.
//
// The qualified candidate is always tried first. When allowFallback is set
// and it fails, the bare segment is tried at the root; on success the
// qualified candidate is recorded Missing and the walk continues from the
// unqualified unit for all remaining segments.
func (r *Resolver) next(ctx context.Context, w *walk, requested modname.Name, seg string, allowFallback bool) (Handle, error) {
	if seg == "" {
		return nil, &InvalidNameError{Name: string(requested), Reason: modname.ErrEmptySegment}
	}
	candidate := w.buf.Child(seg)
	if len(candidate) > r.maxNameLen {
		return nil, &InvalidNameError{Name: string(candidate), Reason: modname.ErrTooLong}
	}

	h, err := r.importSubmodule(ctx, w.parent, seg, candidate)
	if err != nil {
		return nil, err
	}
	if h == nil && allowFallback {
		bare := modname.Name(seg)
		h, err = r.importSubmodule(ctx, nil, seg, bare)
		if err != nil {
			return nil, err
		}
		if h != nil {
			r.store.MarkMissing(candidate)
			r.logger.Debug("qualified lookup missed, using top-level unit",
				"missing", candidate, "name", bare)
			candidate = bare
			w.unqualified = true
		}
	}
	if h == nil {
		return nil, &NotFoundError{Name: candidate, Segment: seg}
	}

	w.buf = candidate
	w.parent = h
	return h, nil
}

// importSubmodule returns the unit cached or loadable as full under parent,
// or nil when it does not exist. A parent that is not a package has no
// submodules.
func (r *Resolver) importSubmodule(ctx context.Context, parent Handle, leaf string, full modname.Name) (Handle, error) {
	switch e := r.store.Get(full); e.State {
	case Found:
		r.logger.Debug("cache hit", "name", full)
		return e.Handle, nil
	case Missing:
		r.logger.Debug("cache records missing", "name", full)
		return nil, nil
	}

	req := LoadRequest{FullName: full, LeafName: leaf}
	if parent != nil {
		paths, ok := parent.SearchPaths()
		if !ok {
			return nil, nil
		}
		if paths == nil {
			paths = []string{}
		}
		req.SearchPaths = paths
	}

	h, err := r.load(ctx, req)
	if err != nil || h == nil {
		return nil, err
	}
	if parent != nil {
		if err := parent.SetAttr(leaf, h); err != nil {
			return nil, &AttachError{Parent: full.Parent(), Name: full, Err: err}
		}
	}
	r.store.Put(full, h)
	return h, nil
}

// load calls the Loader with reentrancy tracking. A not-found result is
// reported as a nil handle with no error.
func (r *Resolver) load(ctx context.Context, req LoadRequest) (Handle, error) {
	if r.inProgress[req.FullName] > 0 && r.reentrant == ReentrantError {
		return nil, &CircularLoadError{Name: req.FullName}
	}
	r.inProgress[req.FullName]++
	defer func() {
		if r.inProgress[req.FullName]--; r.inProgress[req.FullName] == 0 {
			delete(r.inProgress, req.FullName)
		}
	}()

	r.logger.Debug("loading unit", "name", req.FullName, "leaf", req.LeafName, "paths", req.SearchPaths)
	h, err := r.loader.Load(ctx, req)
	if err != nil {
		if errors.Is(err, ErrUnitNotFound) {
			return nil, nil
		}
		return nil, &LoaderError{Name: req.FullName, Err: err}
	}
	return h, nil
}
