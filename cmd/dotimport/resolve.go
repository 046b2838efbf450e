// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/dotimport/pkg/importer"
	"github.com/invowk/dotimport/pkg/modname"
	"github.com/invowk/dotimport/pkg/unitfs"
)

type resolveOptions struct {
	name      string
	context   string
	isPackage bool
	fromList  []string
	level     int
	reload    bool
	roots     []string
}

func newResolveCommand(app *App) *cobra.Command {
	opts := &resolveOptions{}
	resolveCmd := &cobra.Command{
		Use:   "resolve NAME",
		Short: "Resolve a dotted unit name and show the cache",
		Long: `Resolve a dotted unit name with the filesystem loader.

Without --level the legacy lookup applies: NAME is tried relative to the
package of --context first and, for its first segment only, at the top level.
With --level N the name is anchored N levels above the context's package
(0 means absolute).

Without --from the first unit of NAME is shown; with --from the last one is,
after each listed submodule ('*' for the export list) has been loaded.`,
		Args: cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.name = args[0]
			}
			return runResolve(cmd.Context(), app, opts)
		},
	}

	resolveCmd.Flags().StringVar(&opts.context, "context", "", "dotted name of the requesting unit")
	resolveCmd.Flags().BoolVar(&opts.isPackage, "package", false, "treat --context as a package")
	resolveCmd.Flags().StringSliceVar(&opts.fromList, "from", nil, "submodules to load from the resolved unit ('*' for its exports)")
	resolveCmd.Flags().IntVar(&opts.level, "level", importer.LegacyLevel, "relative level; -1 selects the legacy lookup")
	resolveCmd.Flags().BoolVar(&opts.reload, "reload", false, "reload the resolved unit afterwards")
	resolveCmd.Flags().StringArrayVar(&opts.roots, "root", nil, "additional search root (repeatable)")
	return resolveCmd
}

func runResolve(ctx context.Context, app *App, opts *resolveOptions) error {
	loader, err := app.newLoader(opts.roots)
	if err != nil {
		return app.fail("configure search roots", "", err)
	}
	r := app.newResolver(loader)

	reqCtx, err := preloadContext(ctx, r, opts)
	if err != nil {
		return app.fail("resolve context", opts.context, err)
	}

	h, err := r.Resolve(ctx, importer.Request{
		Name:     modname.Name(opts.name),
		Context:  reqCtx,
		FromList: opts.fromList,
		Level:    opts.level,
	})
	if err != nil {
		renderCache(app.stderr, r.Cache().Snapshot())
		return app.fail("resolve unit", opts.name, err)
	}

	out := app.stdout
	renderUnit(out, h, loader.Source)

	if opts.reload {
		if err := reloadAndReport(ctx, app, r, loader, h); err != nil {
			return err
		}
	}

	fmt.Fprintln(out)
	renderCache(out, r.Cache().Snapshot())
	return nil
}

// preloadContext resolves the context unit so the legacy lookup can find
// its package in the cache. A context that is itself a package unit counts
// as a package even without --package.
func preloadContext(ctx context.Context, r *importer.Resolver, opts *resolveOptions) (importer.Context, error) {
	c := importer.Context{Name: modname.Name(opts.context), IsPackage: opts.isPackage}
	if c.Name.IsRoot() {
		return c, nil
	}

	if _, err := r.Resolve(ctx, importer.Request{Name: c.Name}); err != nil {
		return c, err
	}
	if e := r.Cache().Get(c.Name); e.State == importer.Found {
		if _, ok := e.Handle.SearchPaths(); ok {
			c.IsPackage = true
		}
	}
	return c, nil
}

func reloadAndReport(ctx context.Context, app *App, r *importer.Resolver, loader *unitfs.Loader, h importer.Handle) error {
	var before uint64
	if u, ok := h.(*importer.Unit); ok {
		before = u.Fingerprint()
	}

	reloaded, err := r.Reload(ctx, h)
	if err != nil {
		return app.fail("reload unit", fullName(h), err)
	}

	status := SubtitleStyle.Render("unchanged")
	if u, ok := reloaded.(*importer.Unit); ok && u.Fingerprint() != before {
		status = SuccessStyle.Render("changed")
	}
	if reloaded != h {
		status += SubtitleStyle.Render(" (new unit)")
	}
	fmt.Fprintln(app.stdout)
	renderField(app.stdout, "Reloaded", status)
	if src, ok := loader.Source(modname.Name(fullName(reloaded))); ok {
		renderField(app.stdout, "Source", src)
	}
	return nil
}

func fullName(h importer.Handle) string {
	name, _ := h.FullName()
	return name
}
