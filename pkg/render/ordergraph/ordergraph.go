package ordergraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stackchart/pkg/chart/topo"
	"github.com/matzehuels/stackchart/pkg/errors"
)

// CycleColor strokes the nodes and edges of the highlighted cycle.
const CycleColor = "#d62728"

// Edge is a distinct precedence edge with the number of times it was
// observed.
type Edge struct {
	From, To string
	Count    int
}

// Graph is the deduplicated precedence graph of a set of series.
type Graph struct {
	// Nodes in encounter order.
	Nodes []string
	Edges []Edge
	// Order is the resulting series order. It equals Nodes when Cyclic.
	Order  []string
	Cyclic bool
	// Cycle lists the nodes of one cycle in traversal order, empty when the
	// graph is acyclic.
	Cycle []string
}

// Build deduplicates edges, dropping self-loops, and resolves the series
// order the same way the chart model does.
func Build(nodes []string, edges []topo.Edge) *Graph {
	g := &Graph{Nodes: append([]string(nil), nodes...)}
	index := make(map[topo.Edge]int, len(edges))
	for _, e := range edges {
		if e.From == e.To {
			continue
		}
		if i, ok := index[e]; ok {
			g.Edges[i].Count++
			continue
		}
		index[e] = len(g.Edges)
		g.Edges = append(g.Edges, Edge{From: e.From, To: e.To, Count: 1})
	}

	var ok bool
	g.Order, ok = topo.Order(nodes, edges)
	if !ok {
		g.Cyclic = true
		g.Cycle = topo.FindCycle(nodes, edges)
	}
	return g
}

// OnCycle reports whether the edge from -> to closes part of the
// highlighted cycle.
func (g *Graph) OnCycle(from, to string) bool {
	for i, n := range g.Cycle {
		if n == from && g.Cycle[(i+1)%len(g.Cycle)] == to {
			return true
		}
	}
	return false
}

// ToDOT converts g to Graphviz DOT. Acyclic graphs label each node with its
// position in the series order. Nodes and edges of the highlighted cycle are
// drawn in [CycleColor]; edges seen more than once carry their count.
func ToDOT(g *Graph) string {
	position := make(map[string]int, len(g.Order))
	for i, n := range g.Order {
		position[n] = i + 1
	}
	onCycle := make(map[string]bool, len(g.Cycle))
	for _, n := range g.Cycle {
		onCycle[n] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph series {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		label := n
		if !g.Cyclic {
			label = fmt.Sprintf("%d. %s", position[n], n)
		}
		attrs := []string{fmt.Sprintf("label=%q", label)}
		if onCycle[n] {
			attrs = append(attrs, fmt.Sprintf("color=%q", CycleColor), fmt.Sprintf("fontcolor=%q", CycleColor), "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		var attrs []string
		if e.Count > 1 {
			attrs = append(attrs, fmt.Sprintf("label=\"%d\"", e.Count))
		}
		if g.OnCycle(e.From, e.To) {
			attrs = append(attrs, fmt.Sprintf("color=%q", CycleColor), "penwidth=2")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders DOT source to SVG with an embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render order graph")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based root element with one
// whose width and height match the viewBox, so the SVG scales cleanly.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
