package format

import "math"

var prefixSymbols = []string{"y", "z", "a", "f", "p", "n", "µ", "m", "", "k", "M", "G", "T", "P", "E", "Z", "Y"}

// SIPrefix is one entry of the SI prefix table.
type SIPrefix struct {
	Symbol string
	index  int
}

// Scale converts v into units of the prefix.
func (p SIPrefix) Scale(v float64) float64 {
	k := math.Pow(10, float64(abs(8-p.index)*3))
	if p.index > 8 {
		return v / k
	}
	return v * k
}

// Prefix picks the SI prefix for v. A positive precision rounds v to that
// many significant digits first, so 999.5 at two digits selects "k".
func Prefix(v float64, precision int) SIPrefix {
	i := 0
	if v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
		v = math.Abs(v)
		if precision > 0 {
			v = roundTo(v, significantPrecision(v, precision))
		}
		i = 1 + int(math.Floor(1e-12+math.Log10(v)))
		i = max(-24, min(24, floorDiv(i-1, 3)*3))
	}
	idx := 8 + i/3
	return SIPrefix{Symbol: prefixSymbols[idx], index: idx}
}

// Precision returns the number of decimals needed to tell apart ticks that
// are step apart. It is negative for steps of ten and above.
func Precision(step float64) int {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return 0
	}
	return -int(math.Floor(math.Log10(step) + .01))
}

func floorDiv(a, b int) int {
	return int(math.Floor(float64(a) / float64(b)))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
