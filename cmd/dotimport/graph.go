// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/dotimport/pkg/importer"
	"github.com/invowk/dotimport/pkg/modname"
	"github.com/invowk/dotimport/pkg/unitgraph"
)

func newGraphCommand(app *App) *cobra.Command {
	var (
		roots     []string
		topLevels bool
	)
	graphCmd := &cobra.Command{
		Use:   "graph NAME...",
		Short: "Resolve names and print the resolver cache as a DOT graph",
		Long: `Resolve each NAME absolutely and print every cached name as a Graphviz
DOT digraph. Edges run from a unit to its submodules; names recorded as
missing are drawn dashed, packages as boxes. With --top-level only the
names without a cached ancestor are listed, one per line.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd.Context(), app, args, roots, topLevels)
		},
	}
	graphCmd.Flags().StringArrayVar(&roots, "root", nil, "additional search root (repeatable)")
	graphCmd.Flags().BoolVar(&topLevels, "top-level", false, "list only names without a cached ancestor")
	return graphCmd
}

func runGraph(ctx context.Context, app *App, names, roots []string, topLevels bool) error {
	loader, err := app.newLoader(roots)
	if err != nil {
		return app.fail("configure search roots", "", err)
	}
	r := app.newResolver(loader)

	for _, name := range names {
		if _, err := r.Resolve(ctx, importer.Request{Name: modname.Name(name)}); err != nil {
			return app.fail("resolve unit", name, err)
		}
	}

	g, err := unitgraph.Build(r.Cache().Snapshot())
	if err != nil {
		return app.fail("build unit graph", "", err)
	}
	if topLevels {
		top, err := unitgraph.Roots(g)
		if err != nil {
			return app.fail("build unit graph", "", err)
		}
		for _, name := range top {
			fmt.Fprintln(app.stdout, name)
		}
		return nil
	}
	if err := unitgraph.DOT(g, app.stdout); err != nil {
		return app.fail("render unit graph", "", err)
	}
	return nil
}
