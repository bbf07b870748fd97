package text

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/stackchart/pkg/errors"
)

// maxCached bounds the measurement cache of a FontMeasurer.
const maxCached = 4096

// FontMeasurer measures strings with a font face at a fixed pixel size. It
// is safe for concurrent use.
type FontMeasurer struct {
	mu     sync.Mutex
	face   font.Face
	scale  float64
	height float64
	cache  map[string]Size
}

// NewFontMeasurer returns a measurer for Go Regular at sizePx pixels. If the
// embedded font cannot be loaded it falls back to the 7x13 bitmap face,
// scaled to sizePx.
func NewFontMeasurer(sizePx float64) *FontMeasurer {
	if !(sizePx > 0) {
		sizePx = 11
	}
	m, err := newOpenTypeMeasurer(sizePx)
	if err == nil {
		return m
	}
	return newBasicMeasurer(sizePx)
}

func newOpenTypeMeasurer(sizePx float64) (*FontMeasurer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse embedded font")
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: sizePx, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create font face")
	}
	metrics := face.Metrics()
	return &FontMeasurer{
		face:   face,
		scale:  1,
		height: fromFixed(metrics.Ascent + metrics.Descent),
		cache:  make(map[string]Size),
	}, nil
}

func newBasicMeasurer(sizePx float64) *FontMeasurer {
	face := basicfont.Face7x13
	scale := sizePx / float64(face.Height)
	return &FontMeasurer{
		face:   face,
		scale:  scale,
		height: float64(face.Height) * scale,
		cache:  make(map[string]Size),
	}
}

// Measure returns the advance width and line height of s.
func (m *FontMeasurer) Measure(s string) (Size, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if size, ok := m.cache[s]; ok {
		return size, nil
	}
	size := Size{
		Width:  fromFixed(font.MeasureString(m.face, s)) * m.scale,
		Height: m.height,
	}
	if len(m.cache) >= maxCached {
		clear(m.cache)
	}
	m.cache[s] = size
	return size, nil
}

// Face returns the underlying font face. Callers must not use it
// concurrently with Measure.
func (m *FontMeasurer) Face() font.Face { return m.face }

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// FixedMeasurer gives every rune the same advance. It is meant for tests and
// terminal output.
type FixedMeasurer struct {
	RuneWidth  float64
	LineHeight float64
}

// Measure implements [Measurer].
func (f FixedMeasurer) Measure(s string) (Size, error) {
	n := 0
	for range s {
		n++
	}
	return Size{Width: float64(n) * f.RuneWidth, Height: f.LineHeight}, nil
}
