// Package palette assigns series colors and picks readable label colors.
package palette

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/stackchart/pkg/chart/config"
)

// Category10 is the default series palette.
var Category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

const (
	// Dark and Light are the automatic label colors.
	Dark  = "#000000"
	Light = "#ffffff"

	// Outside is the automatic color for labels drawn outside any bar.
	Outside = "#333333"
)

// Palette cycles through a list of colors.
type Palette struct {
	colors []string
}

// New returns a palette of the given colors, ignoring entries that are not
// valid hex colors. An empty result falls back to [Category10].
func New(colors []string) Palette {
	var valid []string
	for _, c := range colors {
		if _, err := colorful.Hex(c); err == nil {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		valid = Category10
	}
	return Palette{colors: valid}
}

// FromConfig returns the palette configured in cfg.
func FromConfig(cfg config.Config) Palette { return New(cfg.Palette) }

// Color returns the i-th color, wrapping around.
func (p Palette) Color(i int) string {
	if len(p.colors) == 0 {
		return Category10[0]
	}
	if i < 0 {
		i = -i
	}
	return p.colors[i%len(p.colors)]
}

// Len returns the number of distinct colors.
func (p Palette) Len() int { return len(p.colors) }

// Contrast returns black or white, whichever reads better on fill. Fills
// that do not parse get black.
func Contrast(fill string) string {
	c, err := colorful.Hex(fill)
	if err != nil {
		return Dark
	}
	l, _, _ := c.Lab()
	if l < 0.6 {
		return Light
	}
	return Dark
}

// TextColor resolves the configured label color for a label drawn on fill.
// An empty fill means the label sits outside any bar.
func TextColor(setting, fill string) string {
	if setting != "" && setting != config.AutoText {
		return setting
	}
	if fill == "" {
		return Outside
	}
	return Contrast(fill)
}
