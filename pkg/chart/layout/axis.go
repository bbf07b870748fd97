package layout

import (
	"math"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/format"
	"github.com/matzehuels/stackchart/pkg/chart/intent"
	"github.com/matzehuels/stackchart/pkg/chart/text"
)

// LabelTick marks a skipped axis tick label.
const LabelTick LabelKind = "tick"

// Tick is one axis tick. Pos is the absolute coordinate along the axis.
// Level is the row of a staggered label.
type Tick struct {
	Key     string         `json:"key,omitempty"`
	Value   float64        `json:"value"`
	Pos     float64        `json:"pos"`
	Label   string         `json:"label,omitempty"`
	Level   int            `json:"level,omitempty"`
	Rotated bool           `json:"rotated,omitempty"`
	Intent  *intent.Intent `json:"intent,omitempty"`
}

// Axis is a placed axis with its margin strip.
type Axis struct {
	Side      Side    `json:"side"`
	Rect      Rect    `json:"rect"`
	LabelBand float64 `json:"label_band"`
	Title     string  `json:"title,omitempty"`
	Ticks     []Tick  `json:"ticks"`
}

func (e *engine) axisRect(box AxisBox) Rect {
	p := e.frame.Plot
	if box.Side == SideLeft {
		return Rect{X: p.X - box.Size, Y: p.Y, W: box.Size, H: p.H}
	}
	return Rect{X: p.X, Y: p.Bottom(), W: p.W, H: box.Size}
}

func (e *engine) layoutAxes() {
	e.out.DimAxis = e.dimAxis()
	e.out.MeasureAxis = e.measureAxis()
}

func (e *engine) dimAxis() Axis {
	box := e.frame.DimAxis
	ax := Axis{Side: box.Side, Rect: e.axisRect(box), LabelBand: box.LabelBand}
	style := e.cfg.LabelStyleDim

	budget := box.LabelBand
	if box.Side == SideBottom {
		step := math.Max(e.s.Dim.Step(), e.s.Dim.Bandwidth())
		switch style {
		case config.LabelStaggered:
			budget = 2 * step
		case config.LabelTilted:
			budget = box.LabelBand * math.Sqrt2
		default:
			budget = step
		}
	}

	bw := e.s.Dim.Bandwidth()
	for i, g := range e.m.Groups {
		t := Tick{
			Key:    g.Key,
			Value:  float64(i),
			Pos:    e.bandPx(g.Key) + bw/2,
			Intent: intent.Select(0, g.ElemID),
		}
		if box.Side == SideBottom {
			switch style {
			case config.LabelStaggered:
				t.Level = i % 2
			case config.LabelTilted:
				t.Rotated = true
			}
		}
		if box.ShowLabels {
			t.Label = e.fitTick(g.Key, budget, g.Key)
		}
		ax.Ticks = append(ax.Ticks, t)
	}
	if box.ShowTitle && len(e.m.DimTitles) > 0 {
		ax.Title = e.fitTitle(e.m.DimTitles[0], e.s.DimLength())
	}
	return ax
}

func (e *engine) measureAxis() Axis {
	box := e.frame.MeasureAxis
	ax := Axis{Side: box.Side, Rect: e.axisRect(box), LabelBand: box.LabelBand}

	n := e.s.TickCount
	values := e.s.Measure.Ticks(n)
	f := e.s.Measure.TickFormat(n, format.TickPattern(e.cfg.AxisFormat, e.m.Normalized))

	budget := box.LabelBand
	if box.Side == SideBottom {
		budget = e.s.MeasureLength()
		if len(values) > 1 {
			budget = math.Abs(e.measurePx(values[1]) - e.measurePx(values[0]))
		}
		if e.cfg.LabelStyleMeasure == config.LabelStaggered {
			budget *= 2
		}
	}

	for i, v := range values {
		t := Tick{Value: v, Pos: e.measurePx(v)}
		if box.Side == SideBottom {
			switch e.cfg.LabelStyleMeasure {
			case config.LabelStaggered:
				t.Level = i % 2
			case config.LabelTilted:
				t.Rotated = true
			}
		}
		if box.ShowLabels {
			t.Label = e.fitTick(f.Format(v), budget, "")
		}
		ax.Ticks = append(ax.Ticks, t)
	}
	if box.ShowTitle {
		ax.Title = e.fitTitle(e.m.MeasureTitle, e.s.MeasureLength())
	}
	return ax
}

func (e *engine) fitTick(s string, budget float64, group string) string {
	fitted, err := text.Fit(e.measurer, s, budget, true)
	if err != nil {
		e.skip(LabelTick, group, "", err)
		return ""
	}
	return fitted
}

func (e *engine) fitTitle(s string, budget float64) string {
	fitted, err := text.Fit(e.measurer, s, budget, true)
	if err != nil {
		return ""
	}
	return fitted
}
