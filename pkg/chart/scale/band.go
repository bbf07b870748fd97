package scale

import "math"

// Band maps categorical keys to evenly spaced pixel bands with rounded
// positions, following D3's ordinal rangeRoundBands.
type Band struct {
	keys      []string
	index     map[string]int
	positions []float64
	bandwidth float64
	step      float64
	r0, r1    float64
}

// NewBand lays keys out over [r0, r1]. padding is the fraction of one step
// left empty between bands and outer the number of steps of margin before
// the first and after the last band. A reversed range (r1 < r0) places the
// first key at the high end.
func NewBand(keys []string, r0, r1, padding, outer float64) *Band {
	b := &Band{
		keys:  append([]string(nil), keys...),
		index: make(map[string]int, len(keys)),
		r0:    r0,
		r1:    r1,
	}
	for i, k := range b.keys {
		if _, dup := b.index[k]; !dup {
			b.index[k] = i
		}
	}

	n := float64(len(keys))
	if n == 0 {
		return b
	}
	reverse := r1 < r0
	start, stop := r0, r1
	if reverse {
		start, stop = r1, r0
	}

	denom := n - padding + 2*outer
	step := 0.0
	if denom > 0 {
		step = math.Floor((stop - start) / denom)
	}
	if math.IsNaN(step) || math.IsInf(step, 0) || step < 0 {
		step = 0
	}
	errPx := stop - start - (n-padding)*step
	first := start + math.Round(errPx/2)

	b.positions = make([]float64, len(keys))
	for i := range b.positions {
		b.positions[i] = first + step*float64(i)
	}
	if reverse {
		for l, r := 0, len(b.positions)-1; l < r; l, r = l+1, r-1 {
			b.positions[l], b.positions[r] = b.positions[r], b.positions[l]
		}
	}
	b.step = step
	b.bandwidth = math.Round(step * (1 - padding))
	return b
}

// Pos returns the leading pixel of key's band.
func (b *Band) Pos(key string) (float64, bool) {
	i, ok := b.index[key]
	if !ok {
		return 0, false
	}
	return b.positions[i], true
}

// Center returns the middle pixel of key's band.
func (b *Band) Center(key string) (float64, bool) {
	p, ok := b.Pos(key)
	return p + b.bandwidth/2, ok
}

// Bandwidth returns the rounded band width.
func (b *Band) Bandwidth() float64 { return b.bandwidth }

// Step returns the distance between the starts of adjacent bands.
func (b *Band) Step() float64 { return b.step }

// Domain returns the keys in domain order.
func (b *Band) Domain() []string { return append([]string(nil), b.keys...) }

// Range returns the pixel interval the bands were laid out over.
func (b *Band) Range() (r0, r1 float64) { return b.r0, b.r1 }

// Len returns the number of bands.
func (b *Band) Len() int { return len(b.keys) }
