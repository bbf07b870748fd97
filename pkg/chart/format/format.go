// Package format formats numbers for axis ticks, totals and labels.
//
// [Parse] accepts the D3 (v3) format specifier mini-language
//
//	[[fill]align][sign][symbol][0][width][,][.precision][type]
//
// and the resulting [Spec] reproduces D3's output, including its rounding
// (JavaScript toFixed/toPrecision semantics), thousands grouping and SI
// prefixes. [New] maps a configured [config.NumberFormat] to a [Formatter]
// for single values.
package format

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/errors"
)

// Formatter formats one number.
type Formatter interface {
	Format(v float64) string
}

// Func adapts a function to [Formatter].
type Func func(v float64) string

// Format calls f.
func (f Func) Format(v float64) string { return f(v) }

// Spec is a parsed format specifier.
type Spec struct {
	Fill      string
	Align     byte // '<', '>', '^' or '='
	Sign      byte // '-', '+' or ' '
	Symbol    byte // '$', '#' or 0
	Zero      bool
	Width     int
	Comma     bool
	Precision int // -1 when absent
	Type      byte
}

var specRE = regexp.MustCompile(`^(?:(.)?([<>=^]))?([+\- ])?([$#])?(0)?(\d+)?(,)?(\.-?\d+)?([a-zA-Z%])?$`)

// Parse parses a D3 format specifier.
func Parse(specifier string) (Spec, error) {
	m := specRE.FindStringSubmatch(specifier)
	if m == nil {
		return Spec{}, errors.New(errors.ErrCodeInvalidFormat, "invalid format specifier: %q", specifier)
	}
	s := Spec{Fill: " ", Align: '>', Sign: '-', Precision: -1}
	if m[1] != "" {
		s.Fill = m[1]
	}
	if m[2] != "" {
		s.Align = m[2][0]
	}
	if m[3] != "" {
		s.Sign = m[3][0]
	}
	if m[4] != "" {
		s.Symbol = m[4][0]
	}
	s.Zero = m[5] != ""
	if m[6] != "" {
		s.Width, _ = strconv.Atoi(m[6])
	}
	s.Comma = m[7] != ""
	if m[8] != "" {
		s.Precision, _ = strconv.Atoi(m[8][1:])
		s.Precision = max(0, s.Precision)
	}
	if m[9] != "" {
		s.Type = m[9][0]
		if !strings.ContainsRune("bcdefgnoprsxX%", rune(s.Type)) {
			return Spec{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported format type %q in %q", m[9], specifier)
		}
	}
	return s, nil
}

// MustParse is like [Parse] but panics on error. Use it for constants.
func MustParse(specifier string) Spec {
	s, err := Parse(specifier)
	if err != nil {
		panic(err)
	}
	return s
}

// String reassembles the specifier.
func (s Spec) String() string {
	var sb strings.Builder
	if s.Fill != " " || s.Align != '>' {
		sb.WriteString(s.Fill)
		sb.WriteByte(s.Align)
	}
	if s.Sign != '-' {
		sb.WriteByte(s.Sign)
	}
	if s.Symbol != 0 {
		sb.WriteByte(s.Symbol)
	}
	if s.Zero {
		sb.WriteByte('0')
	}
	if s.Width > 0 {
		sb.WriteString(strconv.Itoa(s.Width))
	}
	if s.Comma {
		sb.WriteByte(',')
	}
	if s.Precision >= 0 {
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(s.Precision))
	}
	if s.Type != 0 {
		sb.WriteByte(s.Type)
	}
	return sb.String()
}

// Format renders v.
func (s Spec) Format(v float64) string {
	fill, align, zfill := s.Fill, s.Align, s.Zero
	if zfill || (fill == "0" && align == '=') {
		zfill, fill, align = true, "0", '='
	}

	typ := s.Type
	precision := s.Precision
	comma := s.Comma
	scale := 1.0
	prefix, suffix := "", ""
	integer, exponent := false, true

	switch typ {
	case 'n':
		comma, typ = true, 'g'
	case '%':
		scale, suffix, typ = 100, "%", 'f'
	case 'p':
		scale, suffix, typ = 100, "%", 'r'
	case 'b', 'o', 'x', 'X':
		if s.Symbol == '#' {
			prefix = "0" + strings.ToLower(string(typ))
		}
		exponent, integer, precision = false, true, 0
	case 'c':
		exponent, integer, precision = false, true, 0
	case 'd':
		integer, precision = true, 0
	case 's':
		scale, typ = -1, 'r'
	}
	if s.Symbol == '$' {
		prefix = "$"
	}
	if typ == 'r' && precision <= 0 {
		typ = 'g'
		precision = -1
	}
	if precision >= 0 {
		switch typ {
		case 'g':
			precision = max(1, min(21, precision))
		case 'e', 'f':
			precision = max(0, min(20, precision))
		}
	}
	zcomma := zfill && comma

	if integer && math.Mod(v, 1) != 0 {
		return ""
	}

	negative := ""
	if v < 0 || (v == 0 && math.Signbit(v)) {
		v = -v
		negative = "-"
	} else if s.Sign != '-' {
		negative = string(s.Sign)
	}

	fullSuffix := suffix
	if scale < 0 {
		p := Prefix(v, precision)
		v = p.Scale(v)
		fullSuffix = p.Symbol + suffix
	} else {
		v *= scale
	}

	str := formatType(typ, v, precision)

	var before, after string
	if i := strings.LastIndexByte(str, '.'); i >= 0 {
		before, after = str[:i], "."+str[i+1:]
	} else {
		j := -1
		if exponent {
			j = strings.LastIndexByte(str, 'e')
		}
		if j < 0 {
			before = str
		} else {
			before, after = str[:j], str[j:]
		}
	}

	if !zfill && comma {
		before = group(before, math.MaxInt)
	}

	length := len(prefix) + len(before) + len(after)
	if !zcomma {
		length += len(negative)
	}
	padding := ""
	if length < s.Width {
		padding = strings.Repeat(fill, s.Width-length)
	}
	if zcomma {
		w := math.MaxInt
		if padding != "" {
			w = s.Width - len(after)
		}
		before = group(padding+before, w)
	}
	negative += prefix
	value := before + after

	var out string
	switch align {
	case '<':
		out = negative + value + padding
	case '>':
		out = padding + negative + value
	case '^':
		half := len(padding) / 2
		out = padding[:half] + negative + value + padding[half:]
	default:
		if zcomma {
			out = negative + value
		} else {
			out = negative + padding + value
		}
	}
	return out + fullSuffix
}

func formatType(typ byte, v float64, precision int) string {
	switch typ {
	case 'd':
		return jsString(v)
	case 'e':
		if precision < 0 {
			return jsExponential(v)
		}
		return toExponential(v, precision)
	case 'f':
		if precision < 0 {
			precision = 0
		}
		return toFixed(v, precision)
	case 'g':
		if precision < 0 {
			return jsString(v)
		}
		return toPrecision(v, precision)
	case 'r':
		v = roundTo(v, significantPrecision(v, precision))
		p := significantPrecision(v*(1+1e-15), precision)
		return toFixed(v, max(0, min(20, p)))
	case 'b':
		return strconv.FormatInt(int64(v), 2)
	case 'o':
		return strconv.FormatInt(int64(v), 8)
	case 'x':
		return strconv.FormatInt(int64(v), 16)
	case 'X':
		return strings.ToUpper(strconv.FormatInt(int64(v), 16))
	case 'c':
		return string(rune(int(v)))
	default:
		return jsString(v)
	}
}

// jsExponential mirrors toExponential() without an argument: as many digits
// as needed to represent the value uniquely.
func jsExponential(v float64) string {
	s := strconv.FormatFloat(v, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	e, _ := strconv.Atoi(exp)
	return mant + expSuffix(e)
}

// group inserts thousands separators every three digits, stopping once the
// grouped string would exceed width.
func group(value string, width int) string {
	i := len(value)
	var parts []string
	length := 0
	g := 3
	for i > 0 && g > 0 {
		if length+g+1 > width {
			g = max(1, width-length)
		}
		start := max(0, i-g)
		parts = append(parts, value[start:i])
		i = start
		length += g + 1
		if length > width {
			break
		}
	}
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	return strings.Join(parts, ",")
}

// =============================================================================
// Configured formatters
// =============================================================================

// New returns the formatter for single values (totals and labels).
//
//   - Auto: shortest representation with grouping, at most two decimals
//   - Number: grouped, two decimals unless integral
//   - Percent: ".1%"
//   - SI: ".3s"
//   - Custom: nf.Pattern
//
// An unparsable custom pattern falls back to Auto.
func New(nf config.NumberFormat) Formatter {
	switch nf.Kind {
	case config.FormatNumber:
		return Func(func(v float64) string {
			if v == math.Trunc(v) {
				return MustParse(",.0f").Format(v)
			}
			return MustParse(",.2f").Format(v)
		})
	case config.FormatPercent:
		return MustParse(".1%")
	case config.FormatSI:
		return MustParse(".3s")
	case config.FormatCustom:
		if s, err := Parse(nf.Pattern); err == nil {
			return s
		}
	}
	return Func(Auto)
}

// Auto formats v with grouping and up to two decimals, trimming zeros.
func Auto(v float64) string {
	s := MustParse(",.2f").Format(v)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// TickPattern returns the D3 specifier used for measure-axis ticks. An empty
// result asks the scale for its default tick format.
func TickPattern(nf config.NumberFormat, normalized bool) string {
	switch nf.Kind {
	case config.FormatNumber:
		return ",f"
	case config.FormatPercent:
		return "%"
	case config.FormatSI:
		return "s"
	case config.FormatCustom:
		return nf.Pattern
	}
	if normalized {
		return "%"
	}
	return ""
}
