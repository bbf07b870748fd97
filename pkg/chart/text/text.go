// Package text measures label strings and fits them into pixel budgets.
//
// Layout code never measures glyphs itself; it goes through a [Measurer] so
// that tests and hosts can substitute their own metrics. [NewFontMeasurer]
// provides real metrics from the Go Regular typeface.
package text

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended to truncated labels.
const Ellipsis = "…"

// Size is a measured text extent in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Measurer reports the rendered size of a string. Implementations may fail
// transiently; callers skip the affected label.
type Measurer interface {
	Measure(s string) (Size, error)
}

// MeasureFunc adapts a function to [Measurer].
type MeasureFunc func(s string) (Size, error)

// Measure calls f.
func (f MeasureFunc) Measure(s string) (Size, error) { return f(s) }

// Fit shortens s until it is at most maxWidth wide.
//
// Text that already fits is returned unchanged. Otherwise, when
// allowEllipsis is false the result is "". With ellipsis, the last rune is
// dropped (together with any trailing '.' or '-') and "…" appended, repeating
// until the text fits; if nothing is left the result is "". Fitting a result
// again returns it unchanged.
func Fit(m Measurer, s string, maxWidth float64, allowEllipsis bool) (string, error) {
	if s == "" || !(maxWidth > 0) {
		return "", nil
	}
	size, err := m.Measure(s)
	if err != nil {
		return "", err
	}
	if size.Width <= maxWidth {
		return s, nil
	}
	if !allowEllipsis {
		return "", nil
	}

	base := s
	for {
		_, n := utf8.DecodeLastRuneInString(base)
		base = strings.TrimRight(base[:len(base)-n], ".-")
		if base == "" {
			return "", nil
		}
		candidate := base + Ellipsis
		size, err := m.Measure(candidate)
		if err != nil {
			return "", err
		}
		if size.Width <= maxWidth {
			return candidate, nil
		}
	}
}

// Fits reports whether s fits into a box of the given size, either upright
// or rotated by 90 degrees.
func Fits(m Measurer, s string, width, height float64) (upright, rotated bool, err error) {
	size, err := m.Measure(s)
	if err != nil {
		return false, false, err
	}
	upright = size.Width <= width && size.Height <= height
	rotated = size.Width <= height && size.Height <= width
	return upright, rotated, nil
}
