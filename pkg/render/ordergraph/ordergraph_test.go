package ordergraph

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stackchart/pkg/chart/topo"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		nodes     []string
		edges     []topo.Edge
		wantEdges []Edge
		wantOrder []string
		wantCycle []string
	}{
		{
			name:      "consistent transitions",
			nodes:     []string{"East", "West", "North"},
			edges:     []topo.Edge{{From: "East", To: "West"}, {From: "West", To: "North"}, {From: "East", To: "West"}},
			wantEdges: []Edge{{From: "East", To: "West", Count: 2}, {From: "West", To: "North", Count: 1}},
			wantOrder: []string{"East", "West", "North"},
		},
		{
			name:      "later series constrained first",
			nodes:     []string{"a", "b"},
			edges:     []topo.Edge{{From: "b", To: "a"}, {From: "a", To: "a"}},
			wantEdges: []Edge{{From: "b", To: "a", Count: 1}},
			wantOrder: []string{"b", "a"},
		},
		{
			name:      "contradicting groups",
			nodes:     []string{"x", "y", "z"},
			edges:     []topo.Edge{{From: "x", To: "y"}, {From: "y", To: "x"}, {From: "y", To: "z"}},
			wantEdges: []Edge{{From: "x", To: "y", Count: 1}, {From: "y", To: "x", Count: 1}, {From: "y", To: "z", Count: 1}},
			wantOrder: []string{"x", "y", "z"},
			wantCycle: []string{"x", "y"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(tt.nodes, tt.edges)
			if diff := cmp.Diff(tt.wantEdges, g.Edges); diff != "" {
				t.Errorf("edges (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantOrder, g.Order); diff != "" {
				t.Errorf("order (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantCycle, g.Cycle); diff != "" {
				t.Errorf("cycle (-want +got):\n%s", diff)
			}
			if g.Cyclic != (tt.wantCycle != nil) {
				t.Errorf("Cyclic = %v", g.Cyclic)
			}
		})
	}
}

func TestToDOTNumbersAcyclicOrder(t *testing.T) {
	g := Build([]string{"East", "West"}, []topo.Edge{{From: "East", To: "West"}})
	dot := ToDOT(g)
	for _, want := range []string{
		`"East" [label="1. East"];`,
		`"West" [label="2. West"];`,
		`"East" -> "West";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT lacks %s:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, CycleColor) {
		t.Error("acyclic graph should not be highlighted")
	}
}

func TestToDOTHighlightsCycle(t *testing.T) {
	g := Build([]string{"x", "y", "z"}, []topo.Edge{
		{From: "x", To: "y"}, {From: "y", To: "x"}, {From: "y", To: "x"}, {From: "y", To: "z"},
	})
	dot := ToDOT(g)
	for _, want := range []string{
		`"x" [label="x", color="#d62728", fontcolor="#d62728", penwidth=2];`,
		`"x" -> "y" [color="#d62728", penwidth=2];`,
		`"y" -> "x" [label="2", color="#d62728", penwidth=2];`,
		`"z" [label="z"];`,
		`"y" -> "z";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT lacks %s:\n%s", want, dot)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	g := Build([]string{"x", "y"}, []topo.Edge{{From: "x", To: "y"}, {From: "y", To: "x"}})
	svg, err := RenderSVG(context.Background(), ToDOT(g))
	if err != nil {
		t.Fatal(err)
	}
	out := string(svg)
	if !strings.HasPrefix(strings.TrimSpace(out), "<") || !strings.Contains(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("unexpected SVG root:\n%.300s", out)
	}
	if !strings.Contains(out, CycleColor) {
		t.Error("rendered SVG lost the cycle highlight")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`
	if got := string(normalizeViewBox(in)); got != want {
		t.Errorf("normalizeViewBox = %s", got)
	}
	if got := string(normalizeViewBox([]byte("<svg/>"))); got != "<svg/>" {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}
