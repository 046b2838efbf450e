// SPDX-License-Identifier: MPL-2.0

package unitfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/invowk/dotimport/pkg/cueutil"
	"github.com/invowk/dotimport/pkg/importer"
	"github.com/invowk/dotimport/pkg/modname"
)

type (
	// Loader loads units from unit files on disk. It is safe for concurrent use.
	Loader struct {
		roots   []string
		formats []Format
		fetcher *GitFetcher
		logger  *slog.Logger
		maxSize int64

		mu       sync.Mutex
		resolved []string
		units    map[modname.Name]*loaded
	}

	// Option configures a Loader.
	Option func(*Loader)

	loaded struct {
		unit *importer.Unit
		path string
	}

	// probe is a candidate file for one lookup.
	probe struct {
		path      string
		format    Format
		pkgDir    string
		isPackage bool
	}
)

var _ importer.Loader = (*Loader)(nil)

// WithFormats sets the probe order. An empty list keeps the default.
func WithFormats(formats ...Format) Option {
	return func(l *Loader) {
		if len(formats) > 0 {
			l.formats = slices.Clone(formats)
		}
	}
}

// WithGitFetcher enables "git+" search roots.
func WithGitFetcher(f *GitFetcher) Option {
	return func(l *Loader) { l.fetcher = f }
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMaxFileSize overrides cueutil.DefaultMaxFileSize.
func WithMaxFileSize(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxSize = n
		}
	}
}

// New creates a Loader whose top-level search roots are roots. Roots are
// directories or "git+<url>[@ref]" sources.
func New(roots []string, opts ...Option) *Loader {
	l := &Loader{
		roots:   slices.Clone(roots),
		formats: DefaultFormats(),
		logger:  slog.Default(),
		maxSize: cueutil.DefaultMaxFileSize,
		units:   make(map[modname.Name]*loaded),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Roots returns the configured top-level search roots.
func (l *Loader) Roots() []string { return slices.Clone(l.roots) }

// Source returns the file the unit cached under name was last loaded from.
func (l *Loader) Source(name modname.Name) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if u, ok := l.units[name]; ok {
		return u.path, true
	}
	return "", false
}

// Load implements importer.Loader. A nil req.SearchPaths searches the
// top-level roots. Names whose segments contain path separators are
// rejected with an *importer.InvalidNameError.
func (l *Loader) Load(ctx context.Context, req importer.LoadRequest) (importer.Handle, error) {
	for _, n := range []modname.Name{req.FullName, modname.Name(req.LeafName)} {
		if err := n.ValidatePathSegments(); err != nil {
			return nil, &importer.InvalidNameError{Name: string(req.FullName), Reason: modname.ErrPathSeparator}
		}
	}

	dirs := req.SearchPaths
	if dirs == nil {
		var err error
		if dirs, err = l.topLevelDirs(ctx); err != nil {
			return nil, err
		}
	}

	p, err := l.find(dirs, req.LeafName)
	if err != nil {
		return nil, err
	}
	if p == nil {
		l.logger.Debug("unit file not found", "name", req.FullName, "dirs", dirs)
		return nil, fmt.Errorf("%s: %w", req.FullName, importer.ErrUnitNotFound)
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read unit file: %w", err)
	}
	if err := cueutil.CheckFileSize(data, l.maxSize, p.path); err != nil {
		return nil, err
	}
	fields, err := p.format.decode(data, p.path)
	if err != nil {
		return nil, err
	}
	exports, hasExports, err := splitExports(fields, p.path)
	if err != nil {
		return nil, err
	}

	u := l.unitFor(req.FullName, p)
	for k, v := range fields {
		if err := u.SetAttr(k, v); err != nil {
			return nil, err
		}
	}
	if hasExports {
		u.SetExports(exports)
	} else {
		u.ClearExports()
	}
	u.SetFingerprint(xxhash.Sum64(data))

	l.logger.Debug("loaded unit file", "name", req.FullName, "path", p.path, "package", p.isPackage)
	return u, nil
}

// unitFor returns the unit previously produced for name when its kind still
// matches, so reloads refill the same handle.
func (l *Loader) unitFor(name modname.Name, p *probe) *importer.Unit {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, ok := l.units[name]
	if !ok || prev.unit.IsPackage() != p.isPackage {
		u := importer.NewUnit(name.String())
		prev = &loaded{unit: u}
		l.units[name] = prev
	}
	if p.isPackage {
		prev.unit.SetSearchPaths([]string{p.pkgDir})
	}
	prev.path = p.path
	return prev.unit
}

// find returns the first candidate for leaf in dirs, or nil.
func (l *Loader) find(dirs []string, leaf string) (*probe, error) {
	for _, dir := range dirs {
		pkgDir := filepath.Join(dir, leaf)
		var candidates []probe
		for _, f := range l.formats {
			candidates = append(candidates, probe{
				path:      filepath.Join(pkgDir, PackageFileStem+f.Ext()),
				format:    f,
				pkgDir:    pkgDir,
				isPackage: true,
			})
		}
		for _, f := range l.formats {
			candidates = append(candidates, probe{path: filepath.Join(dir, leaf+f.Ext()), format: f})
		}

		for i := range candidates {
			info, err := os.Stat(candidates[i].path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", candidates[i].path, err)
			}
			if info.Mode().IsRegular() {
				return &candidates[i], nil
			}
		}
	}
	return nil, nil
}

// topLevelDirs resolves the configured roots once, fetching git roots.
func (l *Loader) topLevelDirs(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.resolved != nil {
		return l.resolved, nil
	}

	dirs := make([]string, 0, len(l.roots))
	for _, root := range l.roots {
		if !IsGitRoot(root) {
			dirs = append(dirs, root)
			continue
		}
		src, err := ParseGitSource(root)
		if err != nil {
			return nil, err
		}
		if l.fetcher == nil {
			return nil, fmt.Errorf("git search root %s: no git cache directory configured", root)
		}
		dir, err := l.fetcher.Fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("git search root ready", "root", root, "dir", dir)
		dirs = append(dirs, dir)
	}
	l.resolved = dirs
	return dirs, nil
}
