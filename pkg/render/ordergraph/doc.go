// Package ordergraph draws the precedence graph behind a chart's series
// order as a Graphviz diagram.
//
// Every transition between two series inside the same group of a
// two-dimensional dataset states that the first series precedes the second.
// The series order is a topological sort of those edges. When the edges
// form a cycle no such sort exists and the chart falls back to encounter
// order; the diagram highlights one offending cycle so the data can be
// fixed.
//
// # Usage
//
//	nodes, edges := model.SeriesPrecedence(ds)
//	g := ordergraph.Build(nodes, edges)
//	svg, err := ordergraph.RenderSVG(ctx, ordergraph.ToDOT(g))
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is required.
package ordergraph
