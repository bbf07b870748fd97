// Package pipeline runs the import → shape → layout → render chain shared
// by the CLI and the HTTP API.
//
// # Stages
//
//  1. Import: read a dataset from a JSON or CSV file, or take it inline
//  2. Layout: shape the rows into a model and compute the chart geometry
//  3. Render: produce artifacts (SVG, PNG, PDF, JSON)
//
// A [Runner] adds caching around the layout and render stages. Keys are
// derived from the dataset content, the configuration and the render
// options, so identical requests never recompute.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "sales.csv",
//	    Dims:    2,
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackchart/pkg/cache"
	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/intent"
	"github.com/matzehuels/stackchart/pkg/chart/layout"
	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/errors"
	dataio "github.com/matzehuels/stackchart/pkg/io"
	"github.com/matzehuels/stackchart/pkg/render/styles"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 500.0

	// DefaultScale is the PNG pixel density.
	DefaultScale = 2.0

	// DefaultStyle is the default visual style.
	DefaultStyle = styles.NameSimple
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidStyles is the set of supported visual styles.
var ValidStyles = map[string]bool{
	styles.NameSimple:  true,
	styles.NameOutline: true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run. It doubles as the body of render
// requests of the HTTP API.
type Options struct {
	// Import options. Dataset takes precedence over Input.
	Input   string         `json:"input,omitempty"`
	Dims    int            `json:"dims,omitempty"`
	Dataset *model.Dataset `json:"dataset,omitempty"`

	// Layout options
	Config *config.Config `json:"config,omitempty"`
	Width  float64        `json:"width,omitempty"`
	Height float64        `json:"height,omitempty"`

	// Render options
	Formats     []string        `json:"formats,omitempty"`
	Style       string          `json:"style,omitempty"`
	Scale       float64         `json:"scale,omitempty"`
	LegendPage  int             `json:"legend_page,omitempty"`
	Interactive bool            `json:"interactive,omitempty"`
	Background  *string         `json:"background,omitempty"`
	Selection   []intent.Intent `json:"selection,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Dataset   model.Dataset
	Model     *model.Model
	Layout    *layout.Layout
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	Groups     int
	Series     int
	ImportTime time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is supported.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid style: %q (must be one of: simple, outline)", style)
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Dataset == nil && o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "a dataset or an input file is required")
	}
	if o.Dims < 0 || o.Dims > 2 {
		return errors.New(errors.ErrCodeInvalidInput, "dims must be 0, 1 or 2, got %d", o.Dims)
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if err := errors.ValidateCanvas(o.Width, o.Height); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	for _, in := range o.Selection {
		if err := in.Validate(); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Config == nil {
		cfg := config.Default()
		o.Config = &cfg
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// background resolves the canvas color; nil means white.
func (o *Options) background() string {
	if o.Background == nil {
		return "#ffffff"
	}
	return *o.Background
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	cfg, _ := json.Marshal(o.Config)
	return cache.LayoutKeyOpts{ConfigHash: cache.Hash(cfg), Width: o.Width, Height: o.Height}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, LegendPage: o.LegendPage, Background: o.background()}
	switch format {
	case FormatSVG, FormatPDF:
		k.Style = o.Style
		k.Interactive = o.Interactive && format == FormatSVG
	case FormatPNG:
		k.Scale = o.Scale
	}
	return k
}

// cacheable reports whether artifacts may be cached. Selections are
// per-session state and are never cached.
func (o *Options) cacheable() bool { return !o.Refresh && len(o.Selection) == 0 }

// datasetBytes is the canonical encoding used for hashing.
func datasetBytes(ds model.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := dataio.WriteJSON(ds, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
