package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string  // output file (single format) or base path
	formats     string  // comma-separated output formats
	configPath  string  // TOML configuration file
	dims        int     // leading CSV columns read as dimensions
	width       float64 // canvas width in pixels
	height      float64 // canvas height in pixels
	style       string  // visual style: simple or outline
	scale       float64 // PNG pixel density
	legendPage  int     // legend page to draw
	interactive bool    // emit selection attributes in SVG
	transparent bool    // omit the background rectangle
	noCache     bool    // bypass the on-disk cache entirely
	refresh     bool    // recompute and overwrite cached entries

	// Configuration overrides, applied on top of the config file when set.
	kind       string
	horizontal bool
	normalized bool
	deltas     bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		dims:   defaultDims,
		width:  pipeline.DefaultWidth,
		height: pipeline.DefaultHeight,
		style:  pipeline.DefaultStyle,
		scale:  pipeline.DefaultScale,
	}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a dataset (JSON or CSV) to chart files",
		Long: `Render a dataset to one or more chart files.

CSV input treats the first --dims columns as dimensions and every remaining
column as a measure. JSON input carries its own column layout.`,
		Example: `  stackchart render sales.csv --dims 2
  stackchart render sales.json -f svg,png -o out/sales --config chart.toml
  stackchart render sales.csv --kind area --normalized`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			applyOverrides(cmd, &cfg, &opts)
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], cfg, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple formats)")
	f.StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	f.StringVarP(&opts.configPath, "config", "c", "", "chart configuration file (TOML)")
	f.IntVar(&opts.dims, "dims", opts.dims, "number of leading CSV columns that are dimensions (0-2)")
	f.Float64Var(&opts.width, "width", opts.width, "canvas width")
	f.Float64Var(&opts.height, "height", opts.height, "canvas height")
	f.StringVar(&opts.style, "style", opts.style, "visual style: simple (default), outline")
	f.Float64Var(&opts.scale, "scale", opts.scale, "PNG pixel density")
	f.IntVar(&opts.legendPage, "legend-page", 0, "legend page to draw when the legend overflows")
	f.BoolVar(&opts.interactive, "interactive", false, "emit selection attributes for host scripts (SVG)")
	f.BoolVar(&opts.transparent, "transparent", false, "omit the background")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the layout cache")
	f.BoolVar(&opts.refresh, "refresh", false, "recompute cached layouts and outputs")
	f.StringVar(&opts.kind, "kind", "", "chart kind override: bar, area")
	f.BoolVar(&opts.horizontal, "horizontal", false, "grow bars along the x axis")
	f.BoolVar(&opts.normalized, "normalized", false, "stack to 100% per group")
	f.BoolVar(&opts.deltas, "deltas", false, "draw series deltas between adjacent groups (with --normalized)")

	cmd.ValidArgsFunction = completeDataset
	completeConfigFlag(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	completeChoices(cmd, "style", styleNames())
	completeChoices(cmd, "kind", kindNames())

	return cmd
}

// applyOverrides copies explicitly set flags into cfg.
func applyOverrides(cmd *cobra.Command, cfg *config.Config, opts *renderOpts) {
	f := cmd.Flags()
	if f.Changed("kind") {
		cfg.Kind = config.ChartKind(opts.kind)
	}
	if f.Changed("horizontal") {
		cfg.Orientation = config.Vertical
		if opts.horizontal {
			cfg.Orientation = config.Horizontal
		}
	}
	if f.Changed("normalized") {
		cfg.Normalized = opts.normalized
	}
	if f.Changed("deltas") {
		cfg.ShowDeltas = opts.deltas
	}
}

// pipelineOptions converts the render flags into pipeline options.
func (o *renderOpts) pipelineOptions(input string, cfg config.Config) pipeline.Options {
	p := pipeline.Options{
		Input:       input,
		Dims:        o.dims,
		Config:      &cfg,
		Width:       o.width,
		Height:      o.height,
		Formats:     parseFormats(o.formats),
		Style:       o.style,
		Scale:       o.scale,
		LegendPage:  o.legendPage,
		Interactive: o.interactive,
		Refresh:     o.refresh,
	}
	if o.transparent {
		none := ""
		p.Background = &none
	}
	return p
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, w io.Writer, input string, cfg config.Config, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := opts.pipelineOptions(input, cfg)
	popts.Logger = logger
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	prog := newProgress(logger)
	spinner := newStageSpinner(ctx, c.status, filepath.Base(input))
	restore := spinner.Track()
	spinner.Start()
	result, err := runner.Execute(ctx, popts)
	spinner.Stop()
	restore()
	if err != nil {
		return err
	}

	paths := outputPaths(opts.output, input, popts.Formats)
	for _, format := range popts.Formats {
		if err := writeOutput(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Rendered %s", input))

	out := newPrinter(w)
	out.success("Rendered %s chart", cfg.Kind)
	out.stats(result.Stats.Rows, result.Stats.Groups, result.Stats.Series, result.CacheInfo.LayoutHit)
	for _, format := range popts.Formats {
		out.file(paths[format])
	}
	if n := len(result.Layout.Skipped); n > 0 {
		out.warning("%d labels did not fit and were skipped", n)
	}
	out.nextStep("Browse interactively", fmt.Sprintf("%s preview %s", appName, input))
	return nil
}

// outputPaths maps every format to its output file. A single format writes
// to output verbatim; otherwise output (or the input name) is a base path
// and each format adds its extension.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path. Known format extensions on output
// and the extension of input are stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
