package scale

import (
	"math"
	"strconv"

	"github.com/matzehuels/stackchart/pkg/chart/format"
)

// DefaultTicks is the tick count used when none is given.
const DefaultTicks = 10

// Linear is a continuous scale mapping a numeric domain onto a pixel range.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear returns a scale mapping [d0, d1] onto [r0, r1].
func NewLinear(d0, d1, r0, r1 float64) *Linear {
	return &Linear{d0: finite(d0), d1: finite(d1), r0: finite(r0), r1: finite(r1)}
}

// Forward maps a domain value to a pixel. A collapsed domain maps every
// value to the start of the range, and non-finite input maps like zero.
func (l *Linear) Forward(v float64) float64 {
	v = finite(v)
	if l.d0 == l.d1 {
		return l.r0
	}
	t := (v - l.d0) / (l.d1 - l.d0)
	return finite(l.r0 + t*(l.r1-l.r0))
}

// Invert maps a pixel back into the domain.
func (l *Linear) Invert(px float64) float64 {
	px = finite(px)
	if l.r0 == l.r1 {
		return l.d0
	}
	t := (px - l.r0) / (l.r1 - l.r0)
	return finite(l.d0 + t*(l.d1-l.d0))
}

// Domain returns the domain bounds.
func (l *Linear) Domain() (d0, d1 float64) { return l.d0, l.d1 }

// Range returns the range bounds.
func (l *Linear) Range() (r0, r1 float64) { return l.r0, l.r1 }

// Nice returns a copy whose domain is extended outward to multiples of the
// tick step for m ticks. Like D3, the rounding runs twice because the first
// pass can change the step.
func (l *Linear) Nice(m int) *Linear {
	out := *l
	for range 2 {
		_, _, step := tickRange(out.d0, out.d1, m)
		out.d0, out.d1 = niceDomain(out.d0, out.d1, step)
	}
	return &out
}

// Ticks returns roughly m evenly spaced round values inside the domain.
func (l *Linear) Ticks(m int) []float64 {
	lo, hi, step := tickRange(l.d0, l.d1, m)
	if step == 0 {
		return []float64{l.d0}
	}
	return arange(lo, hi, step)
}

// TickFormat returns the formatter D3 would use for m ticks. pattern may be
// empty, in which case ticks get exactly as many decimals as the tick step
// needs. A pattern without precision gets one derived from the step.
func (l *Linear) TickFormat(m int, pattern string) format.Formatter {
	lo, hi, step := tickRange(l.d0, l.d1, m)
	if pattern == "" {
		return format.MustParse(",." + strconv.Itoa(max(0, format.Precision(step))) + "f")
	}
	spec, err := format.Parse(pattern)
	if err != nil {
		return format.MustParse(",." + strconv.Itoa(max(0, format.Precision(step))) + "f")
	}
	largest := math.Max(math.Abs(lo), math.Abs(hi))

	if spec.Type == 's' {
		prefix := format.Prefix(largest, -1)
		if spec.Precision < 0 {
			spec.Precision = max(0, format.Precision(prefix.Scale(step)))
		}
		spec.Type = 'f'
		return format.Func(func(v float64) string {
			return spec.Format(prefix.Scale(v)) + prefix.Symbol
		})
	}
	if spec.Precision < 0 {
		p := format.Precision(step)
		switch spec.Type {
		case 's', 'g', 'p', 'r', 'e':
			p = absInt(p - format.Precision(largest))
			if spec.Type != 'e' {
				p++
			}
		case '%':
			p -= 2
		}
		spec.Precision = max(0, p)
	}
	return spec
}

// tickRange returns the first tick, an exclusive upper bound and the tick
// step for m ticks over [d0, d1]. The step is zero for an empty span.
func tickRange(d0, d1 float64, m int) (lo, hi, step float64) {
	if m <= 0 {
		m = DefaultTicks
	}
	lo, hi = math.Min(d0, d1), math.Max(d0, d1)
	span := hi - lo
	if !(span > 0) || math.IsInf(span, 0) {
		return lo, hi, 0
	}
	step = math.Pow(10, math.Floor(math.Log10(span/float64(m))))
	e := float64(m) / span * step
	switch {
	case e <= .15:
		step *= 10
	case e <= .35:
		step *= 5
	case e <= .75:
		step *= 2
	}
	lo = math.Ceil(lo/step) * step
	hi = math.Floor(hi/step)*step + step*.5
	return lo, hi, step
}

func niceDomain(d0, d1, step float64) (float64, float64) {
	if step == 0 {
		return d0, d1
	}
	reversed := d1 < d0
	if reversed {
		d0, d1 = d1, d0
	}
	d0 = math.Floor(d0/step) * step
	d1 = math.Ceil(d1/step) * step
	if reversed {
		return d1, d0
	}
	return d0, d1
}

// arange scales to integers before stepping so that 0.1 steps don't
// accumulate binary error.
func arange(start, stop, step float64) []float64 {
	k := 1.0
	for math.Mod(math.Abs(step)*k, 1) != 0 && k < 1e15 {
		k *= 10
	}
	start, stop, step = start*k, stop*k, step*k
	var out []float64
	for i := 0; ; i++ {
		j := start + step*float64(i)
		if j >= stop || i > 10000 {
			break
		}
		out = append(out, j/k)
	}
	return out
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
