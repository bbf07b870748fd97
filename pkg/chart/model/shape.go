package model

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/topo"
)

// PlaceholderText is the display text of a missing series slot.
const PlaceholderText = "-"

// ShapeOption configures [Shape].
type ShapeOption func(*shaper)

// WithLogger routes soft conditions (cyclic series order, duplicate rows) to
// l. By default they are discarded.
func WithLogger(l *log.Logger) ShapeOption {
	return func(s *shaper) {
		if l != nil {
			s.logger = l
		}
	}
}

type shaper struct {
	logger *log.Logger
}

// shapedRow is a raw row normalized to (dim1, dim2, measure). dim2 is unused
// for one-dimensional tables.
type shapedRow struct {
	d1, d2, m Cell
}

type table struct {
	dims         int
	dimTitles    []string
	measureTitle string
	rows         []shapedRow
}

// Shape converts a dataset into a chart model. It reads cfg.Normalized and
// cfg.ShowDeltas only; deltas are computed for normalized two-dimensional
// data alone. Shape never fails: malformed input (wrong row widths,
// no rows, no measures, more than two dimensions) yields [Empty].
func Shape(ds Dataset, cfg config.Config, opts ...ShapeOption) *Model {
	s := shaper{logger: log.NewWithOptions(io.Discard, log.Options{})}
	for _, opt := range opts {
		opt(&s)
	}

	t, ok := s.normalize(ds)
	if !ok {
		return Empty()
	}
	if t.dims == 1 {
		return s.shapeOneDim(t)
	}
	return s.shapeTwoDim(t, cfg)
}

// =============================================================================
// Input normalization
// =============================================================================

func (s *shaper) normalize(ds Dataset) (table, bool) {
	nd, nm := len(ds.Dimensions), len(ds.Measures)
	if len(ds.Rows) == 0 || nm == 0 || nd > 2 {
		s.logger.Debug("empty model", "rows", len(ds.Rows), "dimensions", nd, "measures", nm)
		return table{}, false
	}
	for i, row := range ds.Rows {
		if len(row) != ds.Width() {
			s.logger.Debug("row shape mismatch", "row", i, "cells", len(row), "want", ds.Width())
			return table{}, false
		}
	}

	switch {
	case nd == 0:
		t := table{dims: 1, dimTitles: []string{""}, measureTitle: strings.Join(ds.Measures, ", ")}
		for ri, row := range ds.Rows {
			for mi, name := range ds.Measures {
				pseudo := Cell{ElemID: ElementID{ri, mi}, Num: float64(mi), Text: name}
				t.rows = append(t.rows, shapedRow{d1: pseudo, m: row[mi]})
			}
		}
		return t, true

	case nd == 1 && nm > 1:
		t := table{dims: 2, dimTitles: []string{ds.Dimensions[0], ""}, measureTitle: strings.Join(ds.Measures, ", ")}
		for _, row := range ds.Rows {
			for mi, name := range ds.Measures {
				pseudo := Cell{ElemID: ElementID{firstID(row[0].ElemID), mi}, Num: float64(mi), Text: name}
				t.rows = append(t.rows, shapedRow{d1: row[0], d2: pseudo, m: row[1+mi]})
			}
		}
		return t, true

	case nd == 1:
		t := table{dims: 1, dimTitles: []string{ds.Dimensions[0]}, measureTitle: ds.Measures[0]}
		for _, row := range ds.Rows {
			t.rows = append(t.rows, shapedRow{d1: row[0], m: row[1]})
		}
		return t, true

	default:
		if nm > 1 {
			s.logger.Debug("two dimensions with several measures, using the first", "measure", ds.Measures[0])
		}
		t := table{dims: 2, dimTitles: []string{ds.Dimensions[0], ds.Dimensions[1]}, measureTitle: ds.Measures[0]}
		for _, row := range ds.Rows {
			t.rows = append(t.rows, shapedRow{d1: row[0], d2: row[1], m: row[2]})
		}
		return t, true
	}
}

func firstID(id ElementID) int {
	if len(id) == 0 {
		return -1
	}
	return id[0]
}

// finite maps NaN and infinities, which hosts use for nulls, to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// =============================================================================
// One dimension
// =============================================================================

func (s *shaper) shapeOneDim(t table) *Model {
	m := &Model{
		NDims:        1,
		DimTitles:    t.dimTitles,
		MeasureTitle: t.measureTitle,
		SeriesKeys:   []string{t.measureTitle},
	}

	seen := make(map[string]bool, len(t.rows))
	for _, r := range t.rows {
		key := r.d1.Text
		if seen[key] {
			s.logger.Debug("duplicate category ignored", "category", key)
			continue
		}
		seen[key] = true

		v := finite(r.m.Num)
		p := DataPoint{
			GroupKey:    key,
			SeriesKey:   t.measureTitle,
			GroupIndex:  len(m.Groups),
			Value:       v,
			DisplayText: r.m.Text,
			ElemID:      r.d1.ElemID,
			GroupElemID: r.d1.ElemID,
		}
		g := Group{Key: key, ElemID: r.d1.ElemID, Values: []DataPoint{p}}
		if v >= 0 {
			g.PositiveStackTop, g.PositiveTotal = v, v
		} else {
			g.NegativeStackTop, g.NegativeTotal = v, v
		}
		m.Groups = append(m.Groups, g)
		m.Values = append(m.Values, p)
	}
	return m
}

// =============================================================================
// Two dimensions
// =============================================================================

func (s *shaper) shapeTwoDim(t table, cfg config.Config) *Model {
	m := &Model{
		NDims:        2,
		Normalized:   cfg.Normalized,
		DimTitles:    t.dimTitles,
		MeasureTitle: t.measureTitle,
	}

	series, fallback := s.seriesOrder(t.rows)
	m.SeriesKeys = series
	m.OrderFallback = fallback

	// First occurrence of every (dim1, dim2) pair, plus dim1 encounter order.
	var groupOrder []string
	groupIDs := make(map[string]ElementID)
	cells := make(map[string]map[string]shapedRow)
	for _, r := range t.rows {
		byS, ok := cells[r.d1.Text]
		if !ok {
			byS = make(map[string]shapedRow)
			cells[r.d1.Text] = byS
			groupOrder = append(groupOrder, r.d1.Text)
			groupIDs[r.d1.Text] = r.d1.ElemID
		}
		if _, dup := byS[r.d2.Text]; dup {
			s.logger.Debug("duplicate cell ignored", "group", r.d1.Text, "series", r.d2.Text)
			continue
		}
		byS[r.d2.Text] = r
	}

	for gi, key := range groupOrder {
		g := Group{Key: key, ElemID: groupIDs[key], Values: make([]DataPoint, 0, len(series))}
		var pos, neg float64
		for si, sk := range series {
			p := DataPoint{GroupKey: key, SeriesKey: sk, GroupIndex: gi, SeriesIndex: si, GroupElemID: groupIDs[key]}
			r, ok := cells[key][sk]
			if !ok {
				p.DisplayText = PlaceholderText
				p.Placeholder = true
				p.StackOffset = pos
				g.Values = append(g.Values, p)
				continue
			}
			p.Value = finite(r.m.Num)
			p.DisplayText = r.m.Text
			p.ElemID = r.d2.ElemID
			if p.Value >= 0 {
				p.StackOffset = pos
				pos += p.Value
			} else {
				p.StackOffset = neg
				neg += p.Value
			}
			g.Values = append(g.Values, p)
		}
		g.PositiveStackTop, g.PositiveTotal = pos, pos
		g.NegativeStackTop, g.NegativeTotal = neg, neg

		if cfg.Normalized {
			normalizeGroup(&g)
		}
		m.Groups = append(m.Groups, g)
	}

	for _, g := range m.Groups {
		m.Values = append(m.Values, g.Values...)
	}
	switch {
	case cfg.ShowDeltas && cfg.Normalized:
		m.Deltas = computeDeltas(m.Groups)
	case cfg.ShowDeltas:
		s.logger.Debug("deltas skipped, data is not normalized")
	}
	return m
}

// seriesOrder sorts the second-dimension values topologically under the
// precedence observed in rows, falling back to encounter order on a cycle.
func (s *shaper) seriesOrder(rows []shapedRow) ([]string, bool) {
	nodes, edges := seriesEdges(rows)
	order, ok := topo.Order(nodes, edges)
	if !ok {
		s.logger.Warn("series order is cyclic, using encounter order",
			"cycle", topo.FindCycle(nodes, edges), "series", len(nodes))
		return order, true
	}
	return order, false
}

// seriesEdges collects the second-dimension values in encounter order and
// the orderings observed between consecutive rows of the same
// first-dimension run. Only run-internal transitions produce edges, so a
// series missing from some groups is under-constrained.
func seriesEdges(rows []shapedRow) ([]string, []topo.Edge) {
	var nodes []string
	seen := make(map[string]bool)
	var edges []topo.Edge
	for i, r := range rows {
		if !seen[r.d2.Text] {
			seen[r.d2.Text] = true
			nodes = append(nodes, r.d2.Text)
		}
		if i == 0 {
			continue
		}
		prev := rows[i-1]
		if prev.d1.Text == r.d1.Text && prev.d2.Text != r.d2.Text {
			edges = append(edges, topo.Edge{From: prev.d2.Text, To: r.d2.Text})
		}
	}
	return nodes, edges
}

// SeriesPrecedence returns the series of ds in encounter order together
// with every precedence edge the series ordering is derived from, one per
// observed transition. It returns nothing for data that does not shape into
// two dimensions.
func SeriesPrecedence(ds Dataset) ([]string, []topo.Edge) {
	s := shaper{logger: log.NewWithOptions(io.Discard, log.Options{})}
	t, ok := s.normalize(ds)
	if !ok || t.dims != 2 {
		return nil, nil
	}
	return seriesEdges(t.rows)
}

// normalizeGroup rescales every point by the stack top of its own sign so
// that each stack sums to 1 (or -1).
func normalizeGroup(g *Group) {
	pos, neg := g.PositiveStackTop, -g.NegativeStackTop
	for i := range g.Values {
		p := &g.Values[i]
		d := pos
		if p.Value < 0 {
			d = neg
		}
		if d > 0 {
			p.Value /= d
			p.StackOffset /= d
		}
		if !p.Placeholder {
			p.PercentText = FormatPercent(p.Value)
		}
	}
	g.PositiveStackTop, g.NegativeStackTop = 0, 0
	if pos > 0 {
		g.PositiveStackTop = 1
	}
	if neg > 0 {
		g.NegativeStackTop = -1
	}
}

// FormatPercent renders a fraction with one decimal, e.g. 0.374 as "37.4%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// computeDeltas pairs every group with its predecessor slot by slot. A delta
// exists only when both slots hold real points.
func computeDeltas(groups []Group) []Delta {
	var deltas []Delta
	for gi := 1; gi < len(groups); gi++ {
		prev, cur := groups[gi-1], groups[gi]
		for slot := 0; slot < len(cur.Values) && slot < len(prev.Values); slot++ {
			a, b := prev.Values[slot], cur.Values[slot]
			if a.Placeholder || b.Placeholder {
				continue
			}
			deltas = append(deltas, Delta{
				FromGroup:  prev.Key,
				ToGroup:    cur.Key,
				FromIndex:  gi - 1,
				ToIndex:    gi,
				SeriesKey:  b.SeriesKey,
				Slot:       slot,
				Value:      b.Value - a.Value,
				FromOffset: a.StackOffset,
				ToOffset:   b.StackOffset,
				FromValue:  a.Value,
				ToValue:    b.Value,
			})
		}
	}
	return deltas
}
