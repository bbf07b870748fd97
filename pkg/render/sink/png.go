package sink

import (
	"bytes"
	"math"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/layout"
	"github.com/matzehuels/stackchart/pkg/chart/palette"
	"github.com/matzehuels/stackchart/pkg/chart/text"
	"github.com/matzehuels/stackchart/pkg/errors"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	legendPage int
	background string
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithPNGLegendPage shows page p of a paginated legend.
func WithPNGLegendPage(p int) PNGOption { return func(r *pngRenderer) { r.legendPage = max(0, p) } }

// WithPNGBackground sets the canvas color.
func WithPNGBackground(color string) PNGOption { return func(r *pngRenderer) { r.background = color } }

// RenderPNG rasterizes the layout with the same fonts the layout engine
// measured with.
func RenderPNG(l *layout.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, background: "#ffffff"}
	for _, opt := range opts {
		opt(&r)
	}
	if l == nil || l.Width < 1 || l.Height < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot rasterize an empty canvas")
	}

	dc := gg.NewContext(int(math.Ceil(l.Width*r.scale)), int(math.Ceil(l.Height*r.scale)))
	dc.Scale(r.scale, r.scale)
	if r.background != "" {
		setColor(dc, r.background, 1)
		dc.Clear()
	}
	dc.SetFontFace(text.NewFontMeasurer(l.FontSize).Face())
	dc.SetLineWidth(1)

	if !l.IsEmpty() {
		drawGrid(dc, l)
		if l.Kind == string(config.KindArea) {
			for _, a := range areas(l) {
				polygon(dc, a.points)
				setColor(dc, a.color, 0.85)
				dc.Fill()
			}
		} else {
			for _, b := range l.Bars {
				if b.Placeholder || b.Rect.W <= 0 || b.Rect.H <= 0 {
					continue
				}
				dc.DrawRectangle(b.Rect.X, b.Rect.Y, b.Rect.W, b.Rect.H)
				setColor(dc, b.Color, 1)
				dc.Fill()
			}
		}
		for _, d := range l.Deltas {
			polygon(dc, d.Points[:])
			setColor(dc, d.Color, 0.3)
			dc.Fill()
		}
		drawBaseline(dc, l)
		drawAxis(dc, l, l.DimAxis)
		drawAxis(dc, l, l.MeasureAxis)
		for _, lb := range l.Labels {
			drawText(dc, lb.Text, lb.X, lb.Y, anchorX(lb.Anchor), anchorY(lb.Baseline), lb.Color, rotation(lb.Rotated))
		}
	}
	if l.Legend != nil {
		drawLegend(dc, l.Legend, r.legendPage)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func setColor(dc *gg.Context, hex string, alpha float64) {
	c, err := colorful.Hex(hex)
	if err != nil {
		c = colorful.Color{}
	}
	dc.SetRGBA(c.R, c.G, c.B, alpha)
}

func polygon(dc *gg.Context, pts []layout.Point) {
	if len(pts) == 0 {
		return
	}
	dc.NewSubPath()
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
}

func line(dc *gg.Context, x1, y1, x2, y2 float64, color string) {
	dc.DrawLine(x1, y1, x2, y2)
	setColor(dc, color, 1)
	dc.Stroke()
}

func drawGrid(dc *gg.Context, l *layout.Layout) {
	p := l.Plot
	for _, t := range l.MeasureAxis.Ticks {
		if l.Horizontal {
			line(dc, t.Pos, p.Y, t.Pos, p.Bottom(), gridColor)
		} else {
			line(dc, p.X, t.Pos, p.Right(), t.Pos, gridColor)
		}
	}
}

func drawBaseline(dc *gg.Context, l *layout.Layout) {
	p := l.Plot
	if l.Horizontal {
		line(dc, l.Baseline, p.Y, l.Baseline, p.Bottom(), axisColor)
	} else {
		line(dc, p.X, l.Baseline, p.Right(), l.Baseline, axisColor)
	}
}

func drawAxis(dc *gg.Context, l *layout.Layout, ax layout.Axis) {
	p := l.Plot
	for _, t := range ax.Ticks {
		if t.Label == "" {
			continue
		}
		x, y, anchor, baseline, _ := tickAnchor(ax.Side, p, t, l.FontSize)
		angle := 0.0
		if t.Rotated {
			angle = gg.Radians(tiltDegree)
		}
		drawText(dc, t.Label, x, y, svgAnchorX(anchor), svgAnchorY(baseline), palette.Outside, angle)
	}
	if ax.Title == "" {
		return
	}
	if ax.Side == layout.SideLeft {
		drawText(dc, ax.Title, ax.Rect.X+tickGap, p.Y+p.H/2, 0.5, 1, palette.Outside, gg.Radians(-90))
		return
	}
	drawText(dc, ax.Title, p.X+p.W/2, ax.Rect.Bottom()-tickGap, 0.5, 0, palette.Outside, 0)
}

func drawLegend(dc *gg.Context, lg *layout.Legend, page int) {
	page = min(page, lg.Pages-1)
	for _, it := range lg.Items {
		if it.Page != page {
			continue
		}
		dc.DrawRectangle(it.Swatch.X, it.Swatch.Y, it.Swatch.W, it.Swatch.H)
		setColor(dc, it.Color, 1)
		dc.Fill()
		drawText(dc, it.Text, it.X, it.Y, 0, 0.5, palette.Outside, 0)
	}
}

// drawText draws s anchored at (x, y); ax and ay follow gg's convention
// (0.5, 0.5 centers the text).
func drawText(dc *gg.Context, s string, x, y, ax, ay float64, color string, angle float64) {
	if s == "" {
		return
	}
	dc.Push()
	if angle != 0 {
		dc.RotateAbout(angle, x, y)
	}
	setColor(dc, color, 1)
	dc.DrawStringAnchored(s, x, y, ax, ay)
	dc.Pop()
}

func rotation(rotated bool) float64 {
	if rotated {
		return gg.Radians(-90)
	}
	return 0
}

func anchorX(a layout.Anchor) float64 {
	switch a {
	case layout.AnchorMiddle:
		return 0.5
	case layout.AnchorEnd:
		return 1
	default:
		return 0
	}
}

func anchorY(b layout.Baseline) float64 {
	switch b {
	case layout.BaselineTop:
		return 1
	case layout.BaselineMiddle:
		return 0.5
	default:
		return 0
	}
}

func svgAnchorX(anchor string) float64 {
	return anchorX(layout.Anchor(anchor))
}

func svgAnchorY(baseline string) float64 {
	switch baseline {
	case "hanging":
		return 1
	case "central":
		return 0.5
	default:
		return 0
	}
}
