// Package scale derives the categorical and numeric scales of a chart from
// its model and configuration.
//
// The dimension axis uses a [Band] scale over the group keys and the measure
// axis a [Linear] scale over the stacked extent. Both reproduce D3 (v3)
// behavior: band positions are rounded to whole pixels and the linear domain
// is "niced" outward to round tick values.
package scale

import (
	"math"
	"slices"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/model"
)

// Extent is the inner plot area in pixels.
type Extent struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Scales holds the two axes of one chart.
type Scales struct {
	Dim        *Band
	Measure    *Linear
	TickCount  int
	Horizontal bool
	Extent     Extent
}

// MeasureLength returns the pixel length of the measure axis.
func (s Scales) MeasureLength() float64 {
	if s.Horizontal {
		return s.Extent.Width
	}
	return s.Extent.Height
}

// DimLength returns the pixel length of the dimension axis.
func (s Scales) DimLength() float64 {
	if s.Horizontal {
		return s.Extent.Height
	}
	return s.Extent.Width
}

// TickCount returns the number of measure ticks for an axis of length px.
func TickCount(px float64) int {
	if !(px > 0) {
		return 2
	}
	return max(2, int(px/50))
}

// Build derives the scales for m inside ext.
//
// Vertical charts run the groups left to right and the measure bottom to
// top. Horizontal charts reverse both the group order and the band range so
// the first group sits at the top, and run the measure left to right.
func Build(m *model.Model, cfg config.Config, ext Extent) Scales {
	ext.Width = math.Max(0, finite(ext.Width))
	ext.Height = math.Max(0, finite(ext.Height))
	s := Scales{Horizontal: cfg.IsHorizontal(), Extent: ext}

	var keys []string
	if !m.IsEmpty() {
		keys = m.GroupKeys()
	}
	gap := cfg.EffectiveBarGap()
	if s.Horizontal {
		slices.Reverse(keys)
		s.Dim = NewBand(keys, ext.Height, 0, gap, cfg.OuterGap)
	} else {
		s.Dim = NewBand(keys, 0, ext.Width, gap, cfg.OuterGap)
	}

	d0, d1 := MeasureDomain(m, cfg.GridHeight)
	s.TickCount = TickCount(s.MeasureLength())
	if s.Horizontal {
		s.Measure = NewLinear(d0, d1, 0, ext.Width).Nice(s.TickCount)
	} else {
		s.Measure = NewLinear(d0, d1, ext.Height, 0).Nice(s.TickCount)
	}
	return s
}

// MeasureDomain returns the un-niced measure domain. Normalized models span
// [-grid, grid], gated by the presence of negative and positive stacks.
// Otherwise the domain covers every point's offset and end, always including
// zero, scaled by grid.
func MeasureDomain(m *model.Model, grid float64) (d0, d1 float64) {
	if !(grid > 0) {
		grid = 1
	}
	if m.IsEmpty() {
		return 0, 0
	}
	if m.Normalized {
		if m.HasNegative() {
			d0 = -grid
		}
		if m.HasPositive() {
			d1 = grid
		}
		return d0, d1
	}
	lo, hi := m.Extent()
	return finite(math.Min(0, lo) * grid), finite(math.Max(0, hi) * grid)
}
