package sink

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/intent"
	"github.com/matzehuels/stackchart/pkg/chart/layout"
	"github.com/matzehuels/stackchart/pkg/chart/palette"
	"github.com/matzehuels/stackchart/pkg/render/styles"
)

const chartInteractionCSS = `
    .bar, .area { transition: opacity 0.2s ease; }
    svg.hovering .bar:not(.hover) { opacity: 0.6; }
    [data-intent] { cursor: pointer; }`

// The script forwards clicks as "chart-intent" events; the host decides what
// selecting means. Shift toggles, ctrl/cmd adds.
const chartInteractionJS = `
    const svg = document.currentScript.closest('svg');
    svg.querySelectorAll('[data-intent]').forEach(el => {
      el.addEventListener('mouseenter', () => { svg.classList.add('hovering'); el.classList.add('hover'); });
      el.addEventListener('mouseleave', () => { svg.classList.remove('hovering'); el.classList.remove('hover'); });
      el.addEventListener('click', ev => {
        const mode = ev.shiftKey ? 'toggle' : (ev.ctrlKey || ev.metaKey) ? 'add' : 'replace';
        svg.dispatchEvent(new CustomEvent('chart-intent', { bubbles: true, detail: {
          kind: el.dataset.intent, dimension_index: Number(el.dataset.dim),
          element_id: el.dataset.id.split(':').map(Number), mode } }));
      });
    });`

const (
	tickGap    = 4.0
	gridColor  = "#e5e5e5"
	axisColor  = "#999999"
	tiltDegree = -45
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style       styles.Style
	selection   []intent.Intent
	legendPage  int
	interactive bool
	background  string
}

func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithSelection highlights the elements behind the given intents.
func WithSelection(sel []intent.Intent) SVGOption { return func(r *svgRenderer) { r.selection = sel } }

// WithLegendPage shows page p of a paginated legend.
func WithLegendPage(p int) SVGOption { return func(r *svgRenderer) { r.legendPage = max(0, p) } }

// WithInteraction embeds the hover and click script.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithBackground fills the canvas. An empty color leaves it transparent.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// RenderSVG draws a layout as a standalone SVG document.
func RenderSVG(l *layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{style: styles.Simple{}, background: "#ffffff"}
	for _, opt := range opts {
		opt(&r)
	}
	if l == nil {
		l = &layout.Layout{}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="sans-serif">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", styles.EscapeXML(r.background))
	}
	r.style.RenderDefs(&buf)

	if !l.IsEmpty() {
		renderGrid(&buf, l)
		if l.Kind == string(config.KindArea) {
			for _, a := range areas(l) {
				r.style.RenderArea(&buf, a.series, a.color, a.points)
			}
		} else {
			for _, b := range l.Bars {
				r.style.RenderBar(&buf, b, r.selected(b.Intent))
			}
		}
		for _, d := range l.Deltas {
			r.style.RenderDelta(&buf, d)
		}
		renderBaseline(&buf, l)
		renderAxis(&buf, l, l.DimAxis)
		renderAxis(&buf, l, l.MeasureAxis)
		for _, lb := range l.Labels {
			r.style.RenderLabel(&buf, lb, l.FontSize)
		}
	}
	if l.Legend != nil {
		renderLegend(&buf, l.Legend, r.legendPage, l.FontSize)
	}
	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", chartInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", chartInteractionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) selected(in *intent.Intent) bool {
	if in == nil {
		return false
	}
	return slices.ContainsFunc(r.selection, func(s intent.Intent) bool {
		return s.DimensionIndex == in.DimensionIndex && slices.Equal(s.ElemID, in.ElemID)
	})
}

// =============================================================================
// Areas
// =============================================================================

type area struct {
	series string
	color  string
	points []layout.Point
}

// areas joins the slices of every series through the band centers.
func areas(l *layout.Layout) []area {
	var out []area
	index := make(map[int]int)
	var lower [][]layout.Point
	for _, b := range l.Bars {
		i, ok := index[b.SeriesIndex]
		if !ok {
			i = len(out)
			index[b.SeriesIndex] = i
			out = append(out, area{series: b.Series, color: b.Color})
			lower = append(lower, nil)
		}
		r := b.Rect
		var hi, lo layout.Point
		if l.Horizontal {
			cy := r.Y + r.H/2
			hi, lo = layout.Point{X: r.Right(), Y: cy}, layout.Point{X: r.X, Y: cy}
		} else {
			cx := r.X + r.W/2
			hi, lo = layout.Point{X: cx, Y: r.Y}, layout.Point{X: cx, Y: r.Bottom()}
		}
		out[i].points = append(out[i].points, hi)
		lower[i] = append(lower[i], lo)
	}
	for i := range out {
		slices.Reverse(lower[i])
		out[i].points = append(out[i].points, lower[i]...)
	}
	return out
}

// =============================================================================
// Axes
// =============================================================================

func renderGrid(buf *bytes.Buffer, l *layout.Layout) {
	p := l.Plot
	for _, t := range l.MeasureAxis.Ticks {
		if l.Horizontal {
			fmt.Fprintf(buf, `  <line class="grid" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`+"\n", t.Pos, p.Y, t.Pos, p.Bottom(), gridColor)
		} else {
			fmt.Fprintf(buf, `  <line class="grid" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`+"\n", p.X, t.Pos, p.Right(), t.Pos, gridColor)
		}
	}
}

func renderBaseline(buf *bytes.Buffer, l *layout.Layout) {
	p := l.Plot
	if l.Horizontal {
		fmt.Fprintf(buf, `  <line class="baseline" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`+"\n", l.Baseline, p.Y, l.Baseline, p.Bottom(), axisColor)
	} else {
		fmt.Fprintf(buf, `  <line class="baseline" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`+"\n", p.X, l.Baseline, p.Right(), l.Baseline, axisColor)
	}
}

func renderAxis(buf *bytes.Buffer, l *layout.Layout, ax layout.Axis) {
	p := l.Plot
	for _, t := range ax.Ticks {
		if t.Label == "" {
			continue
		}
		x, y, anchor, baseline, transform := tickAnchor(ax.Side, p, t, l.FontSize)
		fmt.Fprintf(buf, `  <text class="tick" x="%.2f" y="%.2f" font-size="%.1f" text-anchor="%s" dominant-baseline="%s" fill="%s"%s%s>%s</text>`+"\n",
			x, y, l.FontSize, anchor, baseline, palette.Outside, transform, styles.IntentAttrs(t.Intent), styles.EscapeXML(t.Label))
	}
	if ax.Title == "" {
		return
	}
	if ax.Side == layout.SideLeft {
		x, y := ax.Rect.X+tickGap, p.Y+p.H/2
		fmt.Fprintf(buf, `  <text class="title" x="%.2f" y="%.2f" font-size="%.1f" font-weight="bold" text-anchor="middle" dominant-baseline="hanging" transform="rotate(-90 %.2f %.2f)">%s</text>`+"\n",
			x, y, l.FontSize, x, y, styles.EscapeXML(ax.Title))
		return
	}
	fmt.Fprintf(buf, `  <text class="title" x="%.2f" y="%.2f" font-size="%.1f" font-weight="bold" text-anchor="middle" dominant-baseline="text-after-edge">%s</text>`+"\n",
		p.X+p.W/2, ax.Rect.Bottom()-tickGap, l.FontSize, styles.EscapeXML(ax.Title))
}

// tickAnchor positions a tick label next to the plot edge of its axis.
func tickAnchor(side layout.Side, p layout.Rect, t layout.Tick, fontSize float64) (x, y float64, anchor, baseline, transform string) {
	if side == layout.SideLeft {
		return p.X - tickGap, t.Pos, "end", "central", ""
	}
	x, y = t.Pos, p.Bottom()+tickGap+float64(t.Level)*(fontSize+2)
	if t.Rotated {
		return x, y, "end", "hanging", fmt.Sprintf(` transform="rotate(%d %.2f %.2f)"`, tiltDegree, x, y)
	}
	return x, y, "middle", "hanging", ""
}

// =============================================================================
// Legend
// =============================================================================

func renderLegend(buf *bytes.Buffer, lg *layout.Legend, page int, fontSize float64) {
	page = min(page, lg.Pages-1)
	for _, it := range lg.Items {
		if it.Page != page {
			continue
		}
		fmt.Fprintf(buf, `  <g class="legend-item"%s><rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/><text x="%.2f" y="%.2f" font-size="%.1f" dominant-baseline="central" fill="%s"><title>%s</title>%s</text></g>`+"\n",
			styles.IntentAttrs(it.Intent), it.Swatch.X, it.Swatch.Y, it.Swatch.W, it.Swatch.H, styles.EscapeXML(it.Color),
			it.X, it.Y, fontSize, palette.Outside, styles.EscapeXML(it.Key), styles.EscapeXML(it.Text))
	}
	if lg.Paging {
		c := lg.Controls
		fmt.Fprintf(buf, `  <text class="legend-pager" x="%.2f" y="%.2f" font-size="%.1f" text-anchor="middle" dominant-baseline="central" fill="%s">%d/%d</text>`+"\n",
			c.X+c.W/2, c.Y+c.H/2, fontSize, palette.Outside, page+1, lg.Pages)
	}
}
