// SPDX-License-Identifier: MPL-2.0

// Package unitgraph turns a resolver cache snapshot into a directed graph
// of dotted names, with an edge from each name's nearest cached ancestor to
// the name itself.
package unitgraph

import (
	"fmt"
	"io"
	"slices"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/invowk/dotimport/pkg/importer"
	"github.com/invowk/dotimport/pkg/modname"
)

// Graph is a directed graph of cached unit names.
type Graph = graph.Graph[string, string]

// Build creates a graph from a cache snapshot. Missing names are drawn
// dashed; packages are drawn as boxes.
func Build(records []importer.Record) (Graph, error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	known := make(map[modname.Name]struct{}, len(records))
	for _, rec := range records {
		known[rec.Name] = struct{}{}
		if err := g.AddVertex(string(rec.Name), vertexAttributes(rec)...); err != nil {
			return nil, fmt.Errorf("failed to add vertex %s: %w", rec.Name, err)
		}
	}

	for _, rec := range records {
		parent, ok := nearestAncestor(rec.Name, known)
		if !ok {
			continue
		}
		if err := g.AddEdge(string(parent), string(rec.Name)); err != nil {
			return nil, fmt.Errorf("failed to add edge %s -> %s: %w", parent, rec.Name, err)
		}
	}

	return g, nil
}

// Order returns the graph's names with every ancestor before its
// descendants, ties broken lexically.
func Order(g Graph) ([]string, error) {
	order, err := graph.StableTopologicalSort(g, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, fmt.Errorf("failed to order unit graph: %w", err)
	}
	return order, nil
}

// Roots returns the names that have no cached ancestor.
func Roots(g Graph) ([]string, error) {
	preds, err := g.PredecessorMap()
	if err != nil {
		return nil, err
	}
	var roots []string
	for name, in := range preds {
		if len(in) == 0 {
			roots = append(roots, name)
		}
	}
	slices.Sort(roots)
	return roots, nil
}

// DOT writes g in Graphviz DOT format.
func DOT(g Graph, w io.Writer) error {
	return draw.DOT(g, w)
}

func vertexAttributes(rec importer.Record) []func(*graph.VertexProperties) {
	switch {
	case rec.State == importer.Missing:
		return []func(*graph.VertexProperties){graph.VertexAttribute("style", "dashed")}
	case rec.Handle != nil:
		if _, ok := rec.Handle.SearchPaths(); ok {
			return []func(*graph.VertexProperties){graph.VertexAttribute("shape", "box")}
		}
	}
	return nil
}

func nearestAncestor(name modname.Name, known map[modname.Name]struct{}) (modname.Name, bool) {
	for p := name.Parent(); !p.IsRoot(); p = p.Parent() {
		if _, ok := known[p]; ok {
			return p, true
		}
	}
	return "", false
}
