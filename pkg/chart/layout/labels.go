package layout

import (
	"math"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/format"
	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/chart/palette"
	"github.com/matzehuels/stackchart/pkg/chart/text"
)

// =============================================================================
// Label text
// =============================================================================

// BarLabelText returns the text drawn inside the bar of p, a point of m.
// Placeholders, zero values and hidden bars get no label.
func BarLabelText(m *model.Model, p model.DataPoint, cfg config.Config, f format.Formatter) string {
	if p.Placeholder || p.Value == 0 || cfg.BarsHidden() {
		return ""
	}
	switch cfg.ShowDim {
	case config.DimDimension:
		if m != nil && m.NDims == 2 {
			return p.SeriesKey
		}
		return p.GroupKey
	case config.DimPercent:
		if p.PercentText != "" {
			return p.PercentText
		}
	}
	if p.DisplayText != "" {
		return p.DisplayText
	}
	if f == nil {
		f = format.New(cfg.TotalFormat)
	}
	return f.Format(p.Value)
}

// TotalLabelText returns the text drawn beyond the stack of g. Totals are
// not shown for normalized charts or hidden bars.
func TotalLabelText(g model.Group, normalized bool, cfg config.Config, f format.Formatter) string {
	if normalized || cfg.BarsHidden() {
		return ""
	}
	if cfg.ShowTot == config.TotDimension {
		return g.Key
	}
	if f == nil {
		f = format.New(cfg.TotalFormat)
	}
	return f.Format(g.Total())
}

// =============================================================================
// In-bar labels
// =============================================================================

func (e *engine) layoutBarLabels() {
	if !e.cfg.ShowTexts.OnBars() || e.cfg.BarsHidden() {
		return
	}
	pad := e.cfg.TextPadding
	for i, p := range e.m.Values {
		s := BarLabelText(e.m, p, e.cfg, e.values)
		if s == "" {
			continue
		}
		bar := e.out.Bars[i]
		lbl, err := e.placeInBar(s, bar.Rect, pad)
		if err != nil {
			e.skip(LabelBar, p.GroupKey, p.SeriesKey, err)
			continue
		}
		if lbl == nil {
			continue
		}
		lbl.Kind, lbl.Group, lbl.Series = LabelBar, p.GroupKey, p.SeriesKey
		lbl.Color = palette.TextColor(e.cfg.TextColor, bar.Color)
		e.out.Labels = append(e.out.Labels, *lbl)
	}
}

// placeInBar fits s into r. Labels rotate when the bar is taller than wide
// and the text only fits rotated. Centered, right and bottom alignment are
// used only when the label provably fits; otherwise it is anchored at the
// top left corner.
func (e *engine) placeInBar(s string, r Rect, pad float64) (*Label, error) {
	availW, availH := r.W-2*pad, r.H-2*pad
	if availW <= 0 || availH <= 0 {
		return nil, nil
	}
	size, err := e.measurer.Measure(s)
	if err != nil {
		return nil, err
	}

	rotated := r.H > r.W && size.Width > availW && size.Width <= availH && size.Height <= availW
	along, across := availW, availH
	if rotated {
		along, across = availH, availW
	}
	fitted, err := text.Fit(e.measurer, s, along, true)
	if err != nil {
		return nil, err
	}
	if fitted == "" {
		return nil, nil
	}
	fsize, err := e.measurer.Measure(fitted)
	if err != nil {
		return nil, err
	}
	fitsAcross := fsize.Height <= across

	lbl := &Label{Text: fitted, Rotated: rotated}
	if !rotated {
		lbl.X, lbl.Anchor = r.X+pad, AnchorStart
		switch e.cfg.HAlign {
		case config.AlignCenter:
			lbl.X, lbl.Anchor = r.X+r.W/2, AnchorMiddle
		case config.AlignRight:
			lbl.X, lbl.Anchor = r.Right()-pad, AnchorEnd
		}
		lbl.Y, lbl.Baseline = r.Y+pad, BaselineTop
		if fitsAcross {
			switch e.cfg.VAlign {
			case config.AlignMiddle:
				lbl.Y, lbl.Baseline = r.Y+r.H/2, BaselineMiddle
			case config.AlignBottom:
				lbl.Y, lbl.Baseline = r.Bottom()-pad, BaselineBottom
			}
		}
		return lbl, nil
	}

	// Rotated text reads upward: the anchor runs along y, the baseline
	// along x.
	lbl.Y, lbl.Anchor = r.Bottom()-pad, AnchorStart
	switch e.cfg.VAlign {
	case config.AlignMiddle:
		lbl.Y, lbl.Anchor = r.Y+r.H/2, AnchorMiddle
	case config.AlignTop:
		lbl.Y, lbl.Anchor = r.Y+pad, AnchorEnd
	}
	lbl.X, lbl.Baseline = r.X+pad, BaselineTop
	if fitsAcross {
		switch e.cfg.HAlign {
		case config.AlignCenter:
			lbl.X, lbl.Baseline = r.X+r.W/2, BaselineMiddle
		case config.AlignRight:
			lbl.X, lbl.Baseline = r.Right()-pad, BaselineBottom
		}
	}
	return lbl, nil
}

// =============================================================================
// Totals
// =============================================================================

// layoutTotals places one label beyond each stack, on the side of the sign
// of the group total. Vertical charts bottom-align the label above the
// stack; horizontal charts left-align it after the stack.
func (e *engine) layoutTotals() {
	if !e.cfg.ShowTexts.Totals() || e.m.Normalized || e.cfg.BarsHidden() {
		return
	}
	pad := e.cfg.TextPadding
	bw := e.s.Dim.Bandwidth()
	budgetAcross := math.Max(bw, e.s.Dim.Step())

	for _, g := range e.m.Groups {
		s := TotalLabelText(g, e.m.Normalized, e.cfg, e.values)
		if s == "" {
			continue
		}
		positive := g.Total() >= 0
		top := g.PositiveStackTop
		if !positive {
			top = g.NegativeStackTop
		}
		edge := e.measurePx(top)
		band := e.bandPx(g.Key)

		var lbl Label
		var budget float64
		if e.s.Horizontal {
			lbl.Y, lbl.Baseline = band+bw/2, BaselineMiddle
			if positive {
				lbl.X, lbl.Anchor = edge+pad, AnchorStart
				budget = e.frame.Plot.Right() - lbl.X
			} else {
				lbl.X, lbl.Anchor = edge-pad, AnchorEnd
				budget = lbl.X - e.frame.Plot.X
			}
		} else {
			lbl.X, lbl.Anchor = band+bw/2, AnchorMiddle
			budget = budgetAcross
			if positive {
				lbl.Y, lbl.Baseline = edge-pad, BaselineBottom
			} else {
				lbl.Y, lbl.Baseline = edge+pad, BaselineTop
			}
		}

		fitted, err := text.Fit(e.measurer, s, budget, true)
		if err != nil {
			e.skip(LabelTotal, g.Key, "", err)
			continue
		}
		if fitted == "" {
			continue
		}
		lbl.Kind, lbl.Group, lbl.Text = LabelTotal, g.Key, fitted
		lbl.Color = palette.TextColor(e.cfg.TextColor, "")
		e.out.Labels = append(e.out.Labels, lbl)
	}
}

func (e *engine) skip(kind LabelKind, group, series string, err error) {
	e.logger.Debug("label skipped", "kind", kind, "group", group, "series", series, "err", err)
	e.out.Skipped = append(e.out.Skipped, Skipped{Kind: kind, Group: group, Series: series, Reason: err.Error()})
}
