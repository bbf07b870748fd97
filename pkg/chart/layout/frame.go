package layout

import (
	"math"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/chart/scale"
	"github.com/matzehuels/stackchart/pkg/chart/text"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// EdgePadding keeps the plot away from the canvas edges without an axis.
	EdgePadding = 8.0

	titleAllowance = 18.0
	axisPadding    = 8.0

	// Legend thresholds: the inner area must exceed minLegendMain along the
	// direction the legend consumes and minLegendCross along the other.
	minLegendMain  = 200.0
	minLegendCross = 100.0

	legendGap          = 8.0
	legendSymbol       = 12.0
	legendSymbolGap    = 4.0
	legendMaxItemWidth = 150.0

	// Space reserved for paging controls.
	pagingWidth  = 40.0
	pagingHeight = 20.0

	staggerFactor = 2.0
	tiltFactor    = 1.5
)

// Label band sizes indexed by config.Size.Index (wide, medium, narrow).
var (
	horizontalAxisHeight = [3]float64{50, 35, 20}
	verticalAxisWidth    = [3]float64{120, 80, 50}
	sideLegendFraction   = [3]float64{1.0 / 4, 1.0 / 6, 1.0 / 10}
)

// legendItemHeight maps legend spacing to a row height.
func legendItemHeight(spacing config.Size) float64 {
	switch spacing {
	case config.Wide:
		return 26
	case config.Medium:
		return 20
	default:
		return 16
	}
}

// =============================================================================
// Frame
// =============================================================================

// Side names a canvas edge.
type Side string

const (
	SideTop    Side = "top"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
)

// Margins are the distances from the canvas edges to the plot area.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// AxisBox is the space reserved for one axis.
type AxisBox struct {
	Side       Side    `json:"side"`
	Size       float64 `json:"size"`
	LabelBand  float64 `json:"label_band"`
	ShowLabels bool    `json:"show_labels"`
	ShowTitle  bool    `json:"show_title"`
}

// Frame partitions the canvas into axes, legend and plot area. It depends on
// the model only through the legend entries.
type Frame struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Margins     Margins `json:"margins"`
	Plot        Rect    `json:"plot"`
	DimAxis     AxisBox `json:"dim_axis"`
	MeasureAxis AxisBox `json:"measure_axis"`
	Legend      *Legend `json:"legend,omitempty"`
}

// Extent returns the plot size for the scale builder.
func (f Frame) Extent() scale.Extent {
	return scale.Extent{Width: f.Plot.W, Height: f.Plot.H}
}

// PlanFrame computes margins, the legend panel and the plot area for a
// canvas of width×height pixels.
func PlanFrame(m *model.Model, cfg config.Config, width, height float64, measurer text.Measurer) Frame {
	width, height = nonNegative(width), nonNegative(height)
	f := Frame{Width: width, Height: height}

	if cfg.IsHorizontal() {
		f.DimAxis = axisBox(SideLeft, cfg.AxisMarginDim, cfg.LabelTitleDim, cfg.LabelStyleDim)
		f.MeasureAxis = axisBox(SideBottom, cfg.AxisMarginMeasure, cfg.LabelTitleMeasure, cfg.LabelStyleMeasure)
		f.Margins = Margins{Top: EdgePadding, Right: EdgePadding, Bottom: f.MeasureAxis.Size, Left: f.DimAxis.Size}
	} else {
		f.DimAxis = axisBox(SideBottom, cfg.AxisMarginDim, cfg.LabelTitleDim, cfg.LabelStyleDim)
		f.MeasureAxis = axisBox(SideLeft, cfg.AxisMarginMeasure, cfg.LabelTitleMeasure, cfg.LabelStyleMeasure)
		f.Margins = Margins{Top: EdgePadding, Right: EdgePadding, Bottom: f.DimAxis.Size, Left: f.MeasureAxis.Size}
	}
	if f.Margins.Bottom == 0 {
		f.Margins.Bottom = EdgePadding
	}
	if f.Margins.Left == 0 {
		f.Margins.Left = EdgePadding
	}

	inner := f.inner()
	if cfg.ShowLegend && m != nil && m.NDims == 2 && len(m.SeriesKeys) > 0 {
		if lg := planLegend(m, cfg, inner, measurer); lg != nil {
			f.Legend = lg
			f.reserveLegend(cfg.LegendPosition, lg)
		}
	}
	f.Plot = f.inner()
	if f.Legend != nil {
		f.Legend.place(f)
	}
	return f
}

func (f Frame) inner() Rect {
	return Rect{
		X: f.Margins.Left,
		Y: f.Margins.Top,
		W: nonNegative(f.Width - f.Margins.Left - f.Margins.Right),
		H: nonNegative(f.Height - f.Margins.Top - f.Margins.Bottom),
	}
}

func (f *Frame) reserveLegend(pos config.LegendPosition, lg *Legend) {
	switch pos {
	case config.LegendLeft:
		f.Margins.Left += lg.Rect.W + legendGap
	case config.LegendTop:
		f.Margins.Top += lg.Rect.H + legendGap
	case config.LegendBottom:
		f.Margins.Bottom += lg.Rect.H + legendGap
	default:
		f.Margins.Right += lg.Rect.W + legendGap
	}
}

// axisBox sizes one axis from the margin lookup, the title allowance and the
// padding. Labels on a horizontal edge grow when staggered or tilted.
func axisBox(side Side, size config.Size, lt config.LabelTitle, style config.LabelStyle) AxisBox {
	box := AxisBox{Side: side, ShowLabels: lt.ShowLabels(), ShowTitle: lt.ShowTitle()}
	if box.ShowLabels {
		if side == SideTop || side == SideBottom {
			box.LabelBand = horizontalAxisHeight[size.Index()]
			switch style {
			case config.LabelStaggered:
				box.LabelBand *= staggerFactor
			case config.LabelTilted:
				box.LabelBand *= tiltFactor
			}
		} else {
			box.LabelBand = verticalAxisWidth[size.Index()]
		}
	}
	box.Size = box.LabelBand
	if box.ShowTitle {
		box.Size += titleAllowance
	}
	if box.Size > 0 {
		box.Size += axisPadding
	}
	return box
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return 0
	}
	return v
}
