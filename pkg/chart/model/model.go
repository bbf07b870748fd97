// Package model turns raw tabular query rows into the normalized chart data
// model consumed by the scale builder and the layout engine.
//
// # Input
//
// A [Dataset] carries zero, one or two dimension columns followed by one or
// more measure columns. [Shape] first normalizes that shape into either a
// one-dimensional (category, value) table or a two-dimensional
// (category, series, value) table:
//
//   - no dimensions: each measure becomes a category of its own
//   - one dimension, several measures: the measure names become the series
//   - two dimensions, several measures: only the first measure is used
//
// # Output
//
// A [Model] lists the categories ("groups") in encounter order. Within each
// group the data points follow the canonical series order, every group has a
// slot for every series, and missing combinations are filled with
// placeholders. Non-negative values stack upward from zero and negative
// values stack downward; each point records the running total before it in
// StackOffset.
//
// Malformed input never produces an error. Shape returns an empty model
// (NDims == 0) and the caller renders nothing.
package model

import (
	"fmt"
	"strings"
)

// ElementID is the host's opaque back-reference to the value behind a cell.
// A nil ElementID is empty, one element is a plain id and two elements form
// a pair (used for synthesized dimensions).
type ElementID []int

// IsEmpty reports whether the id carries no reference.
func (e ElementID) IsEmpty() bool { return len(e) == 0 }

// String renders the id as "7" or "3:1", and "" when empty.
func (e ElementID) String() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ":")
}

// Cell is one value of a raw row.
type Cell struct {
	ElemID ElementID `json:"id,omitempty"`
	Num    float64   `json:"num"`
	Text   string    `json:"text"`
}

// RawRow holds the dimension cells followed by the measure cells.
type RawRow []Cell

// Dataset is one delivery of query results.
type Dataset struct {
	Dimensions []string `json:"dimensions"`
	Measures   []string `json:"measures"`
	Rows       []RawRow `json:"rows"`
}

// Width returns the number of cells every row must have.
func (d Dataset) Width() int { return len(d.Dimensions) + len(d.Measures) }

// DataPoint is one stacked slice.
type DataPoint struct {
	GroupKey    string    `json:"group"`
	SeriesKey   string    `json:"series"`
	GroupIndex  int       `json:"group_index"`
	SeriesIndex int       `json:"series_index"`
	Value       float64   `json:"value"`
	DisplayText string    `json:"text"`
	PercentText string    `json:"percent,omitempty"`
	ElemID      ElementID `json:"id,omitempty"`
	GroupElemID ElementID `json:"group_id,omitempty"`
	StackOffset float64   `json:"offset"`
	Placeholder bool      `json:"placeholder,omitempty"`
}

// End returns the stack position on the far side of the point's own value.
func (p DataPoint) End() float64 { return p.StackOffset + p.Value }

// Group holds the points of one first-dimension value.
type Group struct {
	Key              string      `json:"key"`
	ElemID           ElementID   `json:"id,omitempty"`
	Values           []DataPoint `json:"values"`
	PositiveStackTop float64     `json:"positive_top"`
	NegativeStackTop float64     `json:"negative_top"`

	// Raw sums, kept when the stack tops are normalized.
	PositiveTotal float64 `json:"positive_total"`
	NegativeTotal float64 `json:"negative_total"`
}

// Total returns the raw sum of every value in the group.
func (g Group) Total() float64 { return g.PositiveTotal + g.NegativeTotal }

// Delta connects one series between two adjacent groups.
type Delta struct {
	FromGroup  string  `json:"from"`
	ToGroup    string  `json:"to"`
	FromIndex  int     `json:"from_index"`
	ToIndex    int     `json:"to_index"`
	SeriesKey  string  `json:"series"`
	Slot       int     `json:"slot"`
	Value      float64 `json:"value"`
	FromOffset float64 `json:"from_offset"`
	ToOffset   float64 `json:"to_offset"`
	FromValue  float64 `json:"from_value"`
	ToValue    float64 `json:"to_value"`
}

// Model is the shaped chart data. It is rebuilt wholesale for every data
// delivery and never mutated afterwards.
type Model struct {
	NDims        int         `json:"ndims"`
	Normalized   bool        `json:"normalized"`
	DimTitles    []string    `json:"dim_titles"`
	MeasureTitle string      `json:"measure_title"`
	Groups       []Group     `json:"groups"`
	Values       []DataPoint `json:"values"`
	SeriesKeys   []string    `json:"series"`
	Deltas       []Delta     `json:"deltas,omitempty"`

	// OrderFallback is set when the series ordering contained a cycle and
	// encounter order was used instead.
	OrderFallback bool `json:"order_fallback,omitempty"`
}

// Empty returns the model produced for malformed or empty input.
func Empty() *Model {
	return &Model{}
}

// IsEmpty reports whether the model has nothing to draw.
func (m *Model) IsEmpty() bool { return m == nil || m.NDims == 0 || len(m.Groups) == 0 }

// HasPositive reports whether any group stacks above zero.
func (m *Model) HasPositive() bool {
	for _, g := range m.Groups {
		if g.PositiveStackTop > 0 {
			return true
		}
	}
	return false
}

// HasNegative reports whether any group stacks below zero.
func (m *Model) HasNegative() bool {
	for _, g := range m.Groups {
		if g.NegativeStackTop < 0 {
			return true
		}
	}
	return false
}

// Extent returns the lowest and highest stack positions over every point,
// always including zero.
func (m *Model) Extent() (lo, hi float64) {
	for _, p := range m.Values {
		lo = min(lo, p.StackOffset, p.End())
		hi = max(hi, p.StackOffset, p.End())
	}
	return lo, hi
}

// GroupKeys returns the group keys in encounter order.
func (m *Model) GroupKeys() []string {
	keys := make([]string, len(m.Groups))
	for i, g := range m.Groups {
		keys[i] = g.Key
	}
	return keys
}

// SeriesIndex returns the canonical position of a series key, or -1.
func (m *Model) SeriesIndex(key string) int {
	for i, k := range m.SeriesKeys {
		if k == key {
			return i
		}
	}
	return -1
}
