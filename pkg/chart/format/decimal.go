package format

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// decimal is the exact decimal expansion of a non-negative float64:
// value = 0.d[0]d[1]... × 10^exp. Zero has no digits.
type decimal struct {
	d   []byte
	exp int
}

// exactDigits is enough to print any float64 without rounding.
const exactDigits = 800

func exact(x float64) decimal {
	x = math.Abs(x)
	if x == 0 {
		return decimal{}
	}
	s := new(big.Float).SetFloat64(x).Text('e', exactDigits)
	mant, expPart, _ := strings.Cut(s, "e")
	e, _ := strconv.Atoi(expPart)
	digits := []byte(strings.Replace(mant, ".", "", 1))
	digits = []byte(strings.TrimRight(string(digits), "0"))
	return decimal{d: digits, exp: e + 1}
}

// round keeps n significant digits, rounding half away from zero. n <= 0
// keeps nothing, which may still round up into a new leading digit.
func (dec decimal) round(n int) decimal {
	if n >= len(dec.d) {
		return dec
	}
	if n < 0 {
		return decimal{}
	}
	up := dec.d[n] >= '5'
	out := append([]byte(nil), dec.d[:n]...)
	exp := dec.exp
	if up {
		i := len(out) - 1
		for i >= 0 && out[i] == '9' {
			out[i] = '0'
			i--
		}
		if i >= 0 {
			out[i]++
		} else {
			out = append([]byte{'1'}, out...)
			exp++
		}
	}
	out = []byte(strings.TrimRight(string(out), "0"))
	if len(out) == 0 {
		return decimal{}
	}
	return decimal{d: out, exp: exp}
}

func (dec decimal) digit(i int) byte {
	if i < 0 || i >= len(dec.d) {
		return '0'
	}
	return dec.d[i]
}

// toFixed mirrors JavaScript's Number.prototype.toFixed for |x| < 1e21.
func toFixed(x float64, p int) string {
	if math.IsNaN(x) {
		return "NaN"
	}
	neg := x < 0
	if math.Abs(x) >= 1e21 {
		return jsString(x)
	}
	dec := exact(x).round(exact(x).exp + p)
	var sb strings.Builder
	if neg && len(dec.d) > 0 {
		sb.WriteByte('-')
	}
	if dec.exp <= 0 || len(dec.d) == 0 {
		sb.WriteByte('0')
	} else {
		for i := 0; i < dec.exp; i++ {
			sb.WriteByte(dec.digit(i))
		}
	}
	if p > 0 {
		sb.WriteByte('.')
		for i := 0; i < p; i++ {
			sb.WriteByte(dec.digit(dec.exp + i))
		}
	}
	return sb.String()
}

// toExponential mirrors Number.prototype.toExponential(p).
func toExponential(x float64, p int) string {
	if math.IsNaN(x) {
		return "NaN"
	}
	var sb strings.Builder
	if x < 0 {
		sb.WriteByte('-')
	}
	dec := exact(x).round(p + 1)
	e := dec.exp - 1
	if len(dec.d) == 0 {
		e = 0
	}
	sb.WriteByte(dec.digit(0))
	if p > 0 {
		sb.WriteByte('.')
		for i := 1; i <= p; i++ {
			sb.WriteByte(dec.digit(i))
		}
	}
	sb.WriteString(expSuffix(e))
	return sb.String()
}

// toPrecision mirrors Number.prototype.toPrecision(p).
func toPrecision(x float64, p int) string {
	if math.IsNaN(x) {
		return "NaN"
	}
	if x == 0 {
		if p <= 1 {
			return "0"
		}
		return "0." + strings.Repeat("0", p-1)
	}
	dec := exact(x).round(p)
	e := dec.exp - 1
	if e < -6 || e >= p {
		return toExponential(x, p-1)
	}
	var sb strings.Builder
	if x < 0 {
		sb.WriteByte('-')
	}
	if e >= 0 {
		for i := 0; i <= e; i++ {
			sb.WriteByte(dec.digit(i))
		}
		if p > e+1 {
			sb.WriteByte('.')
			for i := e + 1; i < p; i++ {
				sb.WriteByte(dec.digit(i))
			}
		}
		return sb.String()
	}
	sb.WriteString("0.")
	sb.WriteString(strings.Repeat("0", -e-1))
	for i := 0; i < p; i++ {
		sb.WriteByte(dec.digit(i))
	}
	return sb.String()
}

// jsString mirrors the default Number-to-String conversion.
func jsString(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	case x == 0:
		return "0"
	}
	s := strconv.FormatFloat(math.Abs(x), 'e', -1, 64)
	mant, expPart, _ := strings.Cut(s, "e")
	e, _ := strconv.Atoi(expPart)
	digits := strings.Replace(mant, ".", "", 1)

	var sb strings.Builder
	if x < 0 {
		sb.WriteByte('-')
	}
	n := e + 1
	switch {
	case n >= 22 || n <= -6:
		sb.WriteByte(digits[0])
		if len(digits) > 1 {
			sb.WriteByte('.')
			sb.WriteString(digits[1:])
		}
		sb.WriteString(expSuffix(e))
	case n >= len(digits):
		sb.WriteString(digits)
		sb.WriteString(strings.Repeat("0", n-len(digits)))
	case n > 0:
		sb.WriteString(digits[:n])
		sb.WriteByte('.')
		sb.WriteString(digits[n:])
	default:
		sb.WriteString("0.")
		sb.WriteString(strings.Repeat("0", -n))
		sb.WriteString(digits)
	}
	return sb.String()
}

func expSuffix(e int) string {
	if e < 0 {
		return "e-" + strconv.Itoa(-e)
	}
	return "e+" + strconv.Itoa(e)
}

// roundTo mirrors d3.round: n decimal places, halves rounded up.
func roundTo(x float64, n int) float64 {
	if n == 0 {
		return math.Floor(x + 0.5)
	}
	k := math.Pow(10, float64(n))
	return math.Floor(x*k+0.5) / k
}

// significantPrecision returns the number of decimals that keeps p
// significant digits of x.
func significantPrecision(x float64, p int) int {
	if x == 0 {
		return p - 1
	}
	return p - int(math.Ceil(math.Log10(x)))
}
