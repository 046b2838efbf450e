// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/invowk/dotimport/internal/watch"
	"github.com/invowk/dotimport/pkg/importer"
	"github.com/invowk/dotimport/pkg/modname"
	"github.com/invowk/dotimport/pkg/unitfs"
	"github.com/invowk/dotimport/pkg/unitgraph"
)

func newWatchCommand(app *App) *cobra.Command {
	var (
		roots    []string
		debounce time.Duration
	)
	watchCmd := &cobra.Command{
		Use:   "watch NAME...",
		Short: "Resolve names and reload them when their files change",
		Long: `Resolve each NAME absolutely, then watch the local search roots and reload
every cached unit whose source file changes. Git roots are not watched.
Stop with Ctrl+C.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), app, args, roots, debounce)
		},
	}
	watchCmd.Flags().StringArrayVar(&roots, "root", nil, "additional search root (repeatable)")
	watchCmd.Flags().DurationVar(&debounce, "debounce", 300*time.Millisecond, "quiet period before reloading")
	return watchCmd
}

func runWatch(ctx context.Context, app *App, names, roots []string, debounce time.Duration) error {
	loader, err := app.newLoader(roots)
	if err != nil {
		return app.fail("configure search roots", "", err)
	}
	r := app.newResolver(loader)

	for _, name := range names {
		h, err := r.Resolve(ctx, importer.Request{Name: modname.Name(name)})
		if err != nil {
			return app.fail("resolve unit", name, err)
		}
		renderUnit(app.stdout, h, loader.Source)
		fmt.Fprintln(app.stdout)
	}

	exts := make([]string, len(app.cfg.UnitFormats))
	for i, f := range app.cfg.UnitFormats {
		exts[i] = unitfs.Format(f).Ext()
	}
	local := slices.DeleteFunc(loader.Roots(), unitfs.IsGitRoot)

	w, err := watch.New(watch.Config{
		Roots:    local,
		Patterns: watch.UnitPatterns(exts...),
		Debounce: debounce,
		Logger:   app.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			affected, err := affectedUnits(r.Cache().Snapshot(), loader.Source, changed)
			if err != nil {
				return err
			}
			for _, rec := range affected {
				// Failures are already reported; keep watching.
				_ = reloadAndReport(ctx, app, r, loader, rec.Handle)
			}
			return nil
		},
	})
	if err != nil {
		return app.fail("watch search roots", "", err)
	}

	fmt.Fprintln(app.stdout, SubtitleStyle.Render(fmt.Sprintf("Watching %d root(s) for changes...", len(w.Roots()))))
	if err := w.Run(ctx); err != nil {
		return app.fail("watch search roots", "", err)
	}
	return nil
}

// affectedUnits returns the loaded units whose source file is among the
// absolute paths in changed, ancestors before descendants.
func affectedUnits(snapshot []importer.Record, source func(modname.Name) (string, bool), changed []string) ([]importer.Record, error) {
	byName := make(map[string]importer.Record, len(snapshot))
	for _, rec := range snapshot {
		if rec.State != importer.Found {
			continue
		}
		src, ok := source(rec.Name)
		if !ok {
			continue
		}
		if abs, err := filepath.Abs(src); err == nil {
			src = abs
		}
		if slices.Contains(changed, src) {
			byName[string(rec.Name)] = rec
		}
	}
	if len(byName) == 0 {
		return nil, nil
	}

	g, err := unitgraph.Build(snapshot)
	if err != nil {
		return nil, err
	}
	order, err := unitgraph.Order(g)
	if err != nil {
		return nil, err
	}
	out := make([]importer.Record, 0, len(byName))
	for _, name := range order {
		if rec, ok := byName[name]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
