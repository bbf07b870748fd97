// Package styles draws chart primitives into an SVG buffer.
package styles

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/stackchart/pkg/chart/layout"
)

// Style defines the visual appearance of a chart.
type Style interface {
	// RenderDefs writes SVG <defs> content (filters, patterns, gradients).
	RenderDefs(buf *bytes.Buffer)
	// RenderBar writes one bar slice.
	RenderBar(buf *bytes.Buffer, b layout.Bar, selected bool)
	// RenderArea writes the stacked area of one series.
	RenderArea(buf *bytes.Buffer, series string, color string, points []layout.Point)
	// RenderDelta writes the ribbon between two groups.
	RenderDelta(buf *bytes.Buffer, d layout.DeltaShape)
	// RenderLabel writes a value label.
	RenderLabel(buf *bytes.Buffer, l layout.Label, fontSize float64)
}

// Simple is the default flat style.
type Simple struct{}

func (Simple) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <defs><filter id="selected"><feDropShadow dx="0" dy="0" stdDeviation="2" flood-color="#000" flood-opacity="0.5"/></filter></defs>` + "\n")
}

func (Simple) RenderBar(buf *bytes.Buffer, b layout.Bar, selected bool) {
	if b.Placeholder || b.Rect.W <= 0 || b.Rect.H <= 0 {
		return
	}
	filter := ""
	if selected {
		filter = ` filter="url(#selected)" stroke="#000" stroke-width="1"`
	}
	fmt.Fprintf(buf, `  <rect class="bar" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"%s%s><title>%s</title>`,
		b.Rect.X, b.Rect.Y, b.Rect.W, b.Rect.H, EscapeXML(b.Color), filter, IntentAttrs(b.Intent), EscapeXML(BarTitle(b)))
	if b.Delay > 0 {
		fmt.Fprintf(buf, `<animate attributeName="opacity" from="0" to="1" begin="%.0fms" dur="200ms" fill="freeze"/>`, b.Delay)
	}
	buf.WriteString("</rect>\n")
}

func (Simple) RenderArea(buf *bytes.Buffer, series, color string, points []layout.Point) {
	if len(points) < 3 {
		return
	}
	fmt.Fprintf(buf, `  <polygon class="area" points="%s" fill="%s" fill-opacity="0.85" stroke="%s"><title>%s</title></polygon>`+"\n",
		Points(points), EscapeXML(color), EscapeXML(color), EscapeXML(series))
}

func (Simple) RenderDelta(buf *bytes.Buffer, d layout.DeltaShape) {
	fmt.Fprintf(buf, `  <polygon class="delta" points="%s" fill="%s" fill-opacity="0.3"><title>%s: %s → %s (%+g)</title></polygon>`+"\n",
		Points(d.Points[:]), EscapeXML(d.Color), EscapeXML(d.Series), EscapeXML(d.From), EscapeXML(d.To), d.Value)
}

func (Simple) RenderLabel(buf *bytes.Buffer, l layout.Label, fontSize float64) {
	transform := ""
	if l.Rotated {
		transform = fmt.Sprintf(` transform="rotate(-90 %.2f %.2f)"`, l.X, l.Y)
	}
	fmt.Fprintf(buf, `  <text class="label %s" x="%.2f" y="%.2f" font-size="%.1f" text-anchor="%s" dominant-baseline="%s" fill="%s"%s>%s</text>`+"\n",
		l.Kind, l.X, l.Y, fontSize, l.Anchor, DominantBaseline(l.Baseline), EscapeXML(l.Color), transform, EscapeXML(l.Text))
}

// Outline separates stacked slices with a white border, which keeps thin
// neighbouring slices of similar color apart.
type Outline struct{ Simple }

func (Outline) RenderBar(buf *bytes.Buffer, b layout.Bar, selected bool) {
	if b.Placeholder || b.Rect.W <= 0 || b.Rect.H <= 0 {
		return
	}
	stroke := ` stroke="#ffffff" stroke-width="1"`
	if selected {
		stroke = ` filter="url(#selected)" stroke="#000" stroke-width="1.5"`
	}
	fmt.Fprintf(buf, `  <rect class="bar" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="1" fill="%s"%s%s><title>%s</title></rect>`+"\n",
		b.Rect.X, b.Rect.Y, b.Rect.W, b.Rect.H, EscapeXML(b.Color), stroke, IntentAttrs(b.Intent), EscapeXML(BarTitle(b)))
}

// Names of the built-in styles.
const (
	NameSimple  = "simple"
	NameOutline = "outline"
)

// ByName returns a built-in style.
func ByName(name string) (Style, bool) {
	switch name {
	case NameSimple, "":
		return Simple{}, true
	case NameOutline:
		return Outline{}, true
	}
	return nil, false
}
