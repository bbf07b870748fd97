package layout

import (
	"math"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/intent"
	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/chart/palette"
	"github.com/matzehuels/stackchart/pkg/chart/text"
)

// Legend is the series legend panel.
type Legend struct {
	Position   config.LegendPosition `json:"position"`
	Rect       Rect                  `json:"rect"`
	ItemWidth  float64               `json:"item_width"`
	ItemHeight float64               `json:"item_height"`
	Columns    int                   `json:"columns"`
	Rows       int                   `json:"rows"`
	Pages      int                   `json:"pages"`
	Paging     bool                  `json:"paging"`
	Controls   Rect                  `json:"controls"`
	Items      []LegendItem          `json:"items"`
}

// PerPage returns how many items one legend page shows.
func (l *Legend) PerPage() int { return max(1, l.Columns*l.Rows) }

// LegendItem is one series entry. Swatch and the text anchor (X, Y) are
// absolute coordinates for the item's page.
type LegendItem struct {
	Key    string         `json:"key"`
	Text   string         `json:"text"`
	Color  string         `json:"color"`
	Page   int            `json:"page"`
	Swatch Rect           `json:"swatch"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Intent *intent.Intent `json:"intent,omitempty"`
}

// planLegend sizes the legend inside inner, or returns nil when there is not
// enough room. Items are fitted and paginated; their positions are filled in
// by place once the plot area is known.
func planLegend(m *model.Model, cfg config.Config, inner Rect, measurer text.Measurer) *Legend {
	side := cfg.LegendPosition.IsSide()
	main, cross := inner.H, inner.W
	if side {
		main, cross = inner.W, inner.H
	}
	if !(main > minLegendMain && cross > minLegendCross) {
		return nil
	}

	sizeIdx := cfg.LegendSize.Index()
	lg := &Legend{Position: cfg.LegendPosition, ItemHeight: legendItemHeight(cfg.LegendSpacing)}
	n := len(m.SeriesKeys)

	if side {
		lg.Rect.W = math.Floor(inner.W * sideLegendFraction[sizeIdx])
		lg.Rect.H = inner.H
		lg.ItemWidth = lg.Rect.W
		lg.Columns = 1
		lg.Rows = max(1, int(lg.Rect.H/lg.ItemHeight))
		if n > lg.Rows {
			lg.Paging = true
			lg.Rows = max(1, int((lg.Rect.H-pagingHeight)/lg.ItemHeight))
		}
	} else {
		lg.Rect.W = inner.W
		lg.Rect.H = lg.ItemHeight * float64(3-sizeIdx)
		lg.ItemWidth = math.Min(lg.Rect.W, widestItem(m.SeriesKeys, measurer))
		lg.Rows = max(1, int(lg.Rect.H/lg.ItemHeight))
		lg.Columns = max(1, int(lg.Rect.W/lg.ItemWidth))
		if ceilDiv(n, lg.Columns) > lg.Rows {
			lg.Paging = true
			lg.Columns = max(1, int((lg.Rect.W-pagingWidth)/lg.ItemWidth))
		}
	}
	lg.Pages = max(1, ceilDiv(n, lg.PerPage()))

	pal := palette.FromConfig(cfg)
	budget := lg.ItemWidth - legendSymbol - legendSymbolGap
	for i, key := range m.SeriesKeys {
		label, err := text.Fit(measurer, key, budget, true)
		if err != nil {
			label = ""
		}
		lg.Items = append(lg.Items, LegendItem{
			Key:    key,
			Text:   label,
			Color:  pal.Color(i),
			Page:   i / lg.PerPage(),
			Intent: intent.Select(1, seriesElemID(m, key)),
		})
	}
	return lg
}

// widestItem returns the item width needed by the longest key, capped.
func widestItem(keys []string, measurer text.Measurer) float64 {
	widest := 0.0
	for _, k := range keys {
		size, err := measurer.Measure(k)
		if err != nil {
			return legendMaxItemWidth
		}
		widest = math.Max(widest, size.Width)
	}
	return math.Min(legendMaxItemWidth, math.Ceil(legendSymbol+legendSymbolGap+widest))
}

// seriesElemID returns the element id of the first real point of a series.
func seriesElemID(m *model.Model, key string) model.ElementID {
	for _, p := range m.Values {
		if p.SeriesKey == key && !p.Placeholder && !p.ElemID.IsEmpty() {
			return p.ElemID
		}
	}
	return nil
}

// place positions the panel next to the plot area and lays out its items.
func (l *Legend) place(f Frame) {
	switch l.Position {
	case config.LegendLeft:
		l.Rect.X, l.Rect.Y = EdgePadding, f.Plot.Y
		l.Rect.H = f.Plot.H
	case config.LegendTop:
		l.Rect.X, l.Rect.Y = f.Plot.X, EdgePadding
		l.Rect.W = f.Plot.W
	case config.LegendBottom:
		l.Rect.X, l.Rect.Y = f.Plot.X, f.Height-l.Rect.H
		l.Rect.W = f.Plot.W
	default:
		l.Rect.X, l.Rect.Y = f.Width-EdgePadding-l.Rect.W, f.Plot.Y
		l.Rect.H = f.Plot.H
	}

	if l.Paging {
		if l.Position.IsSide() {
			l.Controls = Rect{X: l.Rect.X, Y: l.Rect.Y + l.Rect.H - pagingHeight, W: l.Rect.W, H: pagingHeight}
		} else {
			l.Controls = Rect{X: l.Rect.X + l.Rect.W - pagingWidth, Y: l.Rect.Y, W: pagingWidth, H: l.Rect.H}
		}
	}

	per := l.PerPage()
	for i := range l.Items {
		k := i % per
		col, row := k%l.Columns, k/l.Columns
		x := l.Rect.X + float64(col)*l.ItemWidth
		y := l.Rect.Y + float64(row)*l.ItemHeight
		it := &l.Items[i]
		it.Swatch = Rect{X: x, Y: y + (l.ItemHeight-legendSymbol)/2, W: legendSymbol, H: legendSymbol}
		it.X = x + legendSymbol + legendSymbolGap
		it.Y = y + l.ItemHeight/2
	}
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
