// Package layout computes the pixel geometry of a chart: axis margins, the
// legend panel, bar rectangles, delta ribbons and label placement.
//
// The computation runs in three steps, all of them pure:
//
//	frame := layout.PlanFrame(m, cfg, w, h, measurer)   // margins, legend
//	scales := scale.Build(m, cfg, frame.Extent())        // band + linear
//	l := layout.Compute(m, scales, cfg, w, h, opts...)   // geometry
//
// [Run] performs all three. A [Layout] is disposable: it is recomputed
// wholesale whenever the data, the configuration or the canvas changes.
//
// Coordinates are absolute canvas pixels with the origin at the top left.
package layout

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/format"
	"github.com/matzehuels/stackchart/pkg/chart/intent"
	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/chart/palette"
	"github.com/matzehuels/stackchart/pkg/chart/scale"
	"github.com/matzehuels/stackchart/pkg/chart/text"
)

// =============================================================================
// Geometry
// =============================================================================

// Rect is an axis-aligned rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Point is a canvas position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// =============================================================================
// Layout
// =============================================================================

// Bar is one stacked slice.
type Bar struct {
	Group       string          `json:"group"`
	Series      string          `json:"series"`
	GroupIndex  int             `json:"group_index"`
	SeriesIndex int             `json:"series_index"`
	Value       float64         `json:"value"`
	Rect        Rect            `json:"rect"`
	Color       string          `json:"color"`
	Placeholder bool            `json:"placeholder,omitempty"`
	ElemID      model.ElementID `json:"id,omitempty"`
	Delay       float64         `json:"delay"`
	Intent      *intent.Intent  `json:"intent,omitempty"`
}

// DeltaShape is the ribbon connecting one series between adjacent groups.
type DeltaShape struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Series string   `json:"series"`
	Value  float64  `json:"value"`
	Points [4]Point `json:"points"`
	Color  string   `json:"color"`
}

// Anchor is the text alignment along the reading direction.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Baseline is the text alignment across the reading direction. For rotated
// labels "top" is the left side of the text.
type Baseline string

const (
	BaselineTop    Baseline = "top"
	BaselineMiddle Baseline = "middle"
	BaselineBottom Baseline = "bottom"
)

// LabelKind tells in-bar labels from stack totals.
type LabelKind string

const (
	LabelBar   LabelKind = "bar"
	LabelTotal LabelKind = "total"
)

// Label is a placed value label. Rotated labels read bottom to top and are
// rotated by -90 degrees around (X, Y).
type Label struct {
	Kind     LabelKind `json:"kind"`
	Group    string    `json:"group"`
	Series   string    `json:"series,omitempty"`
	Text     string    `json:"text"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Anchor   Anchor    `json:"anchor"`
	Baseline Baseline  `json:"baseline"`
	Rotated  bool      `json:"rotated,omitempty"`
	Color    string    `json:"color"`
}

// Skipped records a label that could not be measured in this pass.
type Skipped struct {
	Kind   LabelKind `json:"kind"`
	Group  string    `json:"group"`
	Series string    `json:"series,omitempty"`
	Reason string    `json:"reason"`
}

// Transition is descriptive animation timing in milliseconds.
type Transition struct {
	Delay    float64 `json:"delay"`
	Duration float64 `json:"duration"`
	Stagger  float64 `json:"stagger"`
}

// Layout is the complete geometry of one chart.
type Layout struct {
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	Horizontal  bool         `json:"horizontal"`
	Kind        string       `json:"kind"`
	FontSize    float64      `json:"font_size"`
	Plot        Rect         `json:"plot"`
	Margins     Margins      `json:"margins"`
	DimAxis     Axis         `json:"dim_axis"`
	MeasureAxis Axis         `json:"measure_axis"`
	Legend      *Legend      `json:"legend,omitempty"`
	Bars        []Bar        `json:"bars"`
	Deltas      []DeltaShape `json:"deltas,omitempty"`
	Labels      []Label      `json:"labels,omitempty"`
	Skipped     []Skipped    `json:"skipped,omitempty"`
	Bandwidth   float64      `json:"bandwidth"`
	Baseline    float64      `json:"baseline"`
	Transition  Transition   `json:"transition"`
}

// IsEmpty reports whether there is nothing to draw.
func (l *Layout) IsEmpty() bool { return l == nil || len(l.Bars) == 0 }

// =============================================================================
// Options
// =============================================================================

// Option configures [Compute] and [Run].
type Option func(*engine)

// WithMeasurer sets the text measurer. The default measures Go Regular at
// the configured font size.
func WithMeasurer(m text.Measurer) Option {
	return func(e *engine) {
		if m != nil {
			e.measurer = m
		}
	}
}

// WithLogger routes diagnostics (skipped labels) to l.
func WithLogger(l *log.Logger) Option {
	return func(e *engine) {
		if l != nil {
			e.logger = l
		}
	}
}

type engine struct {
	m        *model.Model
	s        scale.Scales
	cfg      config.Config
	frame    Frame
	measurer text.Measurer
	logger   *log.Logger
	palette  palette.Palette
	values   format.Formatter
	out      *Layout
}

func newEngine(cfg config.Config, opts []Option) *engine {
	e := &engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.measurer == nil {
		e.measurer = text.NewFontMeasurer(cfg.FontSize)
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return e
}

// Run plans the frame, builds the scales and computes the layout.
func Run(m *model.Model, cfg config.Config, width, height float64, opts ...Option) (*Layout, scale.Scales) {
	e := newEngine(cfg, opts)
	frame := PlanFrame(m, cfg, width, height, e.measurer)
	s := scale.Build(m, cfg, frame.Extent())
	return e.compute(m, s, frame), s
}

// Compute lays out m with precomputed scales. The scales must have been
// built for the plot extent of [PlanFrame] with the same arguments.
func Compute(m *model.Model, s scale.Scales, cfg config.Config, width, height float64, opts ...Option) *Layout {
	e := newEngine(cfg, opts)
	frame := PlanFrame(m, cfg, width, height, e.measurer)
	return e.compute(m, s, frame)
}

func (e *engine) compute(m *model.Model, s scale.Scales, frame Frame) *Layout {
	if m == nil {
		m = model.Empty()
	}
	e.m, e.s, e.frame = m, s, frame
	e.palette = palette.FromConfig(e.cfg)
	e.values = format.New(e.cfg.TotalFormat)

	e.out = &Layout{
		Width:      frame.Width,
		Height:     frame.Height,
		Horizontal: s.Horizontal,
		Kind:       string(e.cfg.Kind),
		FontSize:   e.cfg.FontSize,
		Plot:       frame.Plot,
		Margins:    frame.Margins,
		Legend:     frame.Legend,
		Transition: e.transition(),
	}
	if s.Dim != nil {
		e.out.Bandwidth = s.Dim.Bandwidth()
	}
	if s.Measure != nil {
		e.out.Baseline = e.measurePx(0)
	}
	if m.IsEmpty() || s.Dim == nil || s.Measure == nil {
		return e.out
	}

	e.layoutBars()
	e.layoutDeltas()
	e.layoutBarLabels()
	e.layoutTotals()
	e.layoutAxes()
	return e.out
}

func (e *engine) transition() Transition {
	t := Transition{Delay: e.cfg.TransitionDelay, Duration: e.cfg.TransitionDuration}
	if n := len(e.m.Groups); n > 1 {
		t.Stagger = e.cfg.TransitionDuration / float64(2*n)
	}
	return t
}

// =============================================================================
// Coordinate helpers
// =============================================================================

// measurePx maps a stack position to an absolute canvas coordinate along the
// measure axis.
func (e *engine) measurePx(v float64) float64 {
	px := e.s.Measure.Forward(v)
	if e.s.Horizontal {
		return clampFinite(e.frame.Plot.X + px)
	}
	return clampFinite(e.frame.Plot.Y + px)
}

// bandPx returns the absolute leading edge of a group's band.
func (e *engine) bandPx(key string) float64 {
	p, _ := e.s.Dim.Pos(key)
	if e.s.Horizontal {
		return clampFinite(e.frame.Plot.Y + p)
	}
	return clampFinite(e.frame.Plot.X + p)
}

func (e *engine) color(seriesIndex int) string {
	if e.m.NDims == 1 {
		return e.palette.Color(0)
	}
	return e.palette.Color(seriesIndex)
}

func clampFinite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// =============================================================================
// Bars
// =============================================================================

func (e *engine) layoutBars() {
	bw := clampFinite(e.s.Dim.Bandwidth())
	hidden := e.cfg.BarsHidden()
	dimIdx := e.m.NDims - 1

	for _, p := range e.m.Values {
		v := clampFinite(p.Value)
		off := clampFinite(p.StackOffset)
		a := e.measurePx(off + math.Min(v, 0))
		b := e.measurePx(off + math.Max(v, 0))
		lo, size := math.Min(a, b), math.Abs(a-b)
		band := e.bandPx(p.GroupKey)

		r := Rect{X: band, Y: lo, W: bw, H: size}
		if e.s.Horizontal {
			r = Rect{X: lo, Y: band, W: size, H: bw}
		}
		if hidden {
			r.W, r.H = 0, 0
		}
		bar := Bar{
			Group:       p.GroupKey,
			Series:      p.SeriesKey,
			GroupIndex:  p.GroupIndex,
			SeriesIndex: p.SeriesIndex,
			Value:       v,
			Rect:        r,
			Color:       e.color(p.SeriesIndex),
			Placeholder: p.Placeholder,
			ElemID:      p.ElemID,
			Delay:       e.out.Transition.Delay + float64(p.GroupIndex)*e.out.Transition.Stagger,
		}
		if !p.Placeholder {
			bar.Intent = intent.Select(dimIdx, p.ElemID)
		}
		e.out.Bars = append(e.out.Bars, bar)
	}
}

// =============================================================================
// Deltas
// =============================================================================

// layoutDeltas connects the trailing edge of the previous group's band to
// the leading edge of the current one.
func (e *engine) layoutDeltas() {
	if len(e.m.Deltas) == 0 {
		return
	}
	bw := clampFinite(e.s.Dim.Bandwidth())
	for _, d := range e.m.Deltas {
		x1 := e.bandPx(d.FromGroup) + bw
		x2 := e.bandPx(d.ToGroup)
		vals := [4]float64{
			e.measurePx(d.FromOffset),
			e.measurePx(d.FromOffset + d.FromValue),
			e.measurePx(d.ToOffset + d.ToValue),
			e.measurePx(d.ToOffset),
		}
		pts := [4]Point{{x1, vals[0]}, {x1, vals[1]}, {x2, vals[2]}, {x2, vals[3]}}
		if e.s.Horizontal {
			for i := range pts {
				pts[i] = Point{X: pts[i].Y, Y: pts[i].X}
			}
		}
		e.out.Deltas = append(e.out.Deltas, DeltaShape{
			From:   d.FromGroup,
			To:     d.ToGroup,
			Series: d.SeriesKey,
			Value:  d.Value,
			Points: pts,
			Color:  e.color(d.Slot),
		})
	}
}
