// Package config defines the immutable chart configuration snapshot read by
// the scale builder and the layout engine.
//
// A [Config] is a flat value: every enumerated option is a short string code
// (for example "H"/"V" for orientation) so that host adapters can pass the
// property values through unchanged. Use [Default] for a complete baseline,
// [Load] to read a TOML file on top of it, and [Config.Validate] before
// handing the value to the pipeline. The core packages never validate; an
// invalid enumeration is a configuration-layer concern.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackchart/pkg/errors"
)

// =============================================================================
// Enumerations
// =============================================================================

// Orientation selects the bar direction.
type Orientation string

const (
	Horizontal Orientation = "H" // bars grow left to right, categories on the y axis
	Vertical   Orientation = "V" // columns grow bottom to top, categories on the x axis
)

// Size is a three-level size lookup shared by axis margins and legend options.
type Size string

const (
	Wide   Size = "W"
	Medium Size = "M"
	Narrow Size = "N"
)

// Index returns 0 for Wide, 1 for Medium and 2 for Narrow.
func (s Size) Index() int {
	switch s {
	case Wide:
		return 0
	case Medium:
		return 1
	default:
		return 2
	}
}

// LabelTitle selects what an axis shows.
type LabelTitle string

const (
	LabelsAndTitle LabelTitle = "B"
	LabelsOnly     LabelTitle = "L"
	TitleOnly      LabelTitle = "T"
	NoLabels       LabelTitle = "N"
)

// ShowLabels reports whether tick labels are drawn.
func (l LabelTitle) ShowLabels() bool { return l == LabelsAndTitle || l == LabelsOnly }

// ShowTitle reports whether the axis title is drawn.
func (l LabelTitle) ShowTitle() bool { return l == LabelsAndTitle || l == TitleOnly }

// LabelStyle controls how dimension tick labels are arranged.
type LabelStyle string

const (
	LabelHorizontal LabelStyle = "H"
	LabelStaggered  LabelStyle = "S"
	LabelTilted     LabelStyle = "T"
)

// LegendPosition places the legend panel.
type LegendPosition string

const (
	LegendTop    LegendPosition = "T"
	LegendRight  LegendPosition = "R"
	LegendBottom LegendPosition = "B"
	LegendLeft   LegendPosition = "L"
)

// IsSide reports whether the legend is a single-column side panel.
func (p LegendPosition) IsSide() bool { return p == LegendLeft || p == LegendRight }

// ShowTexts selects which value labels are drawn.
type ShowTexts string

const (
	TextsNone  ShowTexts = "N"
	TextsOnBar ShowTexts = "B"
	TextsTotal ShowTexts = "T"
	TextsAll   ShowTexts = "A"
)

// OnBars reports whether in-bar labels are requested.
func (s ShowTexts) OnBars() bool { return s == TextsOnBar || s == TextsAll }

// Totals reports whether stack-total labels are requested.
func (s ShowTexts) Totals() bool { return s == TextsTotal || s == TextsAll }

// ShowDim selects the content of in-bar labels.
type ShowDim string

const (
	DimMeasure   ShowDim = "M" // the formatted measure value
	DimDimension ShowDim = "D" // the series (second dimension) text
	DimPercent   ShowDim = "P" // the normalized percentage
)

// ShowTot selects the content of total labels.
type ShowTot string

const (
	TotMeasure   ShowTot = "M"
	TotDimension ShowTot = "D"
)

// HAlign is the horizontal label alignment inside a bar.
type HAlign string

const (
	AlignCenter HAlign = "C"
	AlignLeft   HAlign = "L"
	AlignRight  HAlign = "R"
)

// VAlign is the vertical label alignment inside a bar.
type VAlign string

const (
	AlignMiddle VAlign = "C"
	AlignTop    VAlign = "T"
	AlignBottom VAlign = "B"
)

// ChartKind selects bars or stacked areas. Areas reuse the bar layout with a
// zero band gap.
type ChartKind string

const (
	KindBar  ChartKind = "bar"
	KindArea ChartKind = "area"
)

// FormatKind selects a number formatting strategy.
type FormatKind string

const (
	FormatAuto    FormatKind = "Auto"
	FormatNumber  FormatKind = "Number"
	FormatPercent FormatKind = "Percent"
	FormatSI      FormatKind = "SI"
	FormatCustom  FormatKind = "Custom"
)

// NumberFormat describes how axis or total values are formatted. Pattern is
// only read for FormatCustom and uses the D3 format specifier syntax.
type NumberFormat struct {
	Kind    FormatKind `toml:"kind" json:"kind"`
	Pattern string     `toml:"pattern" json:"pattern,omitempty"`
}

// AutoText is the TextColor value requesting contrast-based label colors.
const AutoText = "Auto"

// =============================================================================
// Config
// =============================================================================

// Config is the flat configuration snapshot. The zero value is not usable;
// start from [Default].
type Config struct {
	Kind        ChartKind   `toml:"chart_kind" json:"chart_kind"`
	Orientation Orientation `toml:"orientation" json:"orientation"`
	Normalized  bool        `toml:"normalized" json:"normalized"`
	ShowDeltas  bool        `toml:"show_deltas" json:"show_deltas"`
	BarGap      float64     `toml:"bar_gap" json:"bar_gap"`
	OuterGap    float64     `toml:"outer_gap" json:"outer_gap"`
	GridHeight  float64     `toml:"grid_height" json:"grid_height"`

	AxisMarginDim     Size       `toml:"axis_margin_dim" json:"axis_margin_dim"`
	AxisMarginMeasure Size       `toml:"axis_margin_measure" json:"axis_margin_measure"`
	LabelTitleDim     LabelTitle `toml:"label_title_dim" json:"label_title_dim"`
	LabelTitleMeasure LabelTitle `toml:"label_title_measure" json:"label_title_measure"`
	LabelStyleDim     LabelStyle `toml:"label_style_dim" json:"label_style_dim"`
	LabelStyleMeasure LabelStyle `toml:"label_style_measure" json:"label_style_measure"`

	ShowLegend     bool           `toml:"show_legend" json:"show_legend"`
	LegendPosition LegendPosition `toml:"legend_position" json:"legend_position"`
	LegendSize     Size           `toml:"legend_size" json:"legend_size"`
	LegendSpacing  Size           `toml:"legend_spacing" json:"legend_spacing"`

	ShowTexts   ShowTexts `toml:"show_texts" json:"show_texts"`
	ShowDim     ShowDim   `toml:"show_dim" json:"show_dim"`
	ShowTot     ShowTot   `toml:"show_tot" json:"show_tot"`
	TextColor   string    `toml:"text_color" json:"text_color"`
	HAlign      HAlign    `toml:"h_align" json:"h_align"`
	VAlign      VAlign    `toml:"v_align" json:"v_align"`
	FontSize    float64   `toml:"font_size" json:"font_size"`
	TextPadding float64   `toml:"text_padding" json:"text_padding"`

	AxisFormat  NumberFormat `toml:"axis_format" json:"axis_format"`
	TotalFormat NumberFormat `toml:"total_format" json:"total_format"`

	// Transition timings in milliseconds; descriptive data for renderers.
	TransitionDelay    float64 `toml:"transition_delay" json:"transition_delay"`
	TransitionDuration float64 `toml:"transition_duration" json:"transition_duration"`

	Palette []string `toml:"palette" json:"palette,omitempty"`
}

// Default returns the baseline configuration used by the CLI and the HTTP API.
func Default() Config {
	return Config{
		Kind:               KindBar,
		Orientation:        Vertical,
		BarGap:             0.3,
		OuterGap:           0.15,
		GridHeight:         1.05,
		AxisMarginDim:      Medium,
		AxisMarginMeasure:  Medium,
		LabelTitleDim:      LabelsAndTitle,
		LabelTitleMeasure:  LabelsAndTitle,
		LabelStyleDim:      LabelHorizontal,
		LabelStyleMeasure:  LabelHorizontal,
		ShowLegend:         true,
		LegendPosition:     LegendRight,
		LegendSize:         Medium,
		LegendSpacing:      Medium,
		ShowTexts:          TextsOnBar,
		ShowDim:            DimMeasure,
		ShowTot:            TotMeasure,
		TextColor:          AutoText,
		HAlign:             AlignCenter,
		VAlign:             AlignMiddle,
		FontSize:           11,
		TextPadding:        3,
		AxisFormat:         NumberFormat{Kind: FormatAuto},
		TotalFormat:        NumberFormat{Kind: FormatAuto},
		TransitionDelay:    0,
		TransitionDuration: 500,
	}
}

// IsHorizontal reports whether bars grow along the x axis.
func (c Config) IsHorizontal() bool { return c.Orientation == Horizontal }

// EffectiveBarGap returns the band gap after applying the chart kind. Area
// charts always use touching bands.
func (c Config) EffectiveBarGap() float64 {
	if c.Kind == KindArea {
		return 0
	}
	return c.BarGap
}

// BarsHidden reports the "texts and deltas only" mode where bars have zero
// thickness and every label is suppressed.
func (c Config) BarsHidden() bool { return c.EffectiveBarGap() >= 1 }

// =============================================================================
// Loading & Validation
// =============================================================================

// Load reads a TOML file on top of [Default]. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
		}
		return cfg, err
	}
	if err := Decode(string(data), &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode parses TOML text into cfg, leaving absent keys untouched.
func Decode(text string, cfg *Config) error {
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Encode writes cfg as TOML.
func Encode(cfg Config) (string, error) {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Validate checks every enumerated option and numeric range.
func (c Config) Validate() error {
	checks := []struct {
		name  string
		value string
		valid []string
	}{
		{"chart_kind", string(c.Kind), []string{"bar", "area"}},
		{"orientation", string(c.Orientation), []string{"H", "V"}},
		{"axis_margin_dim", string(c.AxisMarginDim), []string{"W", "M", "N"}},
		{"axis_margin_measure", string(c.AxisMarginMeasure), []string{"W", "M", "N"}},
		{"label_title_dim", string(c.LabelTitleDim), []string{"B", "L", "T", "N"}},
		{"label_title_measure", string(c.LabelTitleMeasure), []string{"B", "L", "T", "N"}},
		{"label_style_dim", string(c.LabelStyleDim), []string{"H", "S", "T"}},
		{"label_style_measure", string(c.LabelStyleMeasure), []string{"H", "S", "T"}},
		{"legend_position", string(c.LegendPosition), []string{"T", "R", "B", "L"}},
		{"legend_size", string(c.LegendSize), []string{"N", "M", "W"}},
		{"legend_spacing", string(c.LegendSpacing), []string{"N", "M", "W"}},
		{"show_texts", string(c.ShowTexts), []string{"N", "B", "T", "A"}},
		{"show_dim", string(c.ShowDim), []string{"M", "D", "P"}},
		{"show_tot", string(c.ShowTot), []string{"M", "D"}},
		{"h_align", string(c.HAlign), []string{"C", "L", "R"}},
		{"v_align", string(c.VAlign), []string{"C", "T", "B"}},
		{"axis_format.kind", string(c.AxisFormat.Kind), formatKinds},
		{"total_format.kind", string(c.TotalFormat.Kind), formatKinds},
	}
	for _, chk := range checks {
		if !slices.Contains(chk.valid, chk.value) {
			return errors.New(errors.ErrCodeInvalidConfig, "invalid %s: %q (must be one of: %s)",
				chk.name, chk.value, strings.Join(chk.valid, ", "))
		}
	}

	if c.BarGap < 0 || c.BarGap > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "bar_gap must be within [0,1], got %v", c.BarGap)
	}
	if c.OuterGap < 0 || c.OuterGap > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "outer_gap must be within [0,1], got %v", c.OuterGap)
	}
	if c.GridHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid_height must be positive, got %v", c.GridHeight)
	}
	if c.FontSize <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "font_size must be positive, got %v", c.FontSize)
	}
	if c.TextPadding < 0 || c.TransitionDelay < 0 || c.TransitionDuration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "text_padding and transition timings must not be negative")
	}
	if c.AxisFormat.Kind == FormatCustom && c.AxisFormat.Pattern == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "axis_format: custom format requires a pattern")
	}
	if c.TotalFormat.Kind == FormatCustom && c.TotalFormat.Pattern == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "total_format: custom format requires a pattern")
	}
	if c.TextColor == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "text_color must be %q or a color string", AutoText)
	}
	return nil
}

var formatKinds = []string{"Auto", "Number", "Percent", "SI", "Custom"}

// String returns a compact one-line description for logs.
func (c Config) String() string {
	return fmt.Sprintf("kind=%s orientation=%s normalized=%t deltas=%t gap=%.2f/%.2f legend=%t:%s texts=%s",
		c.Kind, c.Orientation, c.Normalized, c.ShowDeltas, c.BarGap, c.OuterGap,
		c.ShowLegend, c.LegendPosition, c.ShowTexts)
}
