package pipeline

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stackchart/pkg/chart/layout"
	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/errors"
	"github.com/matzehuels/stackchart/pkg/observability"
	"github.com/matzehuels/stackchart/pkg/render/sink"
	"github.com/matzehuels/stackchart/pkg/render/styles"
)

// Render produces every requested format of l concurrently. m is only used
// by the JSON format and may be nil.
func Render(ctx context.Context, l *layout.Layout, m *model.Model, opts Options) (map[string][]byte, error) {
	return renderFormats(ctx, l, m, opts, opts.Formats)
}

func renderFormats(ctx context.Context, l *layout.Layout, m *model.Model, opts Options, formats []string) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}
	style, ok := styles.ByName(opts.Style)
	if !ok {
		return nil, ValidateStyle(opts.Style)
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, formats)

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	for _, format := range slices.Compact(slices.Sorted(slices.Values(formats))) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := renderOne(l, m, opts, style, format)
			if err != nil {
				return err
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	observability.Pipeline().OnRenderComplete(ctx, formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderOne(l *layout.Layout, m *model.Model, opts Options, style styles.Style, format string) ([]byte, error) {
	svgOpts := []sink.SVGOption{
		sink.WithStyle(style),
		sink.WithSelection(opts.Selection),
		sink.WithLegendPage(opts.LegendPage),
		sink.WithBackground(opts.background()),
	}
	switch format {
	case FormatSVG:
		if opts.Interactive {
			svgOpts = append(svgOpts, sink.WithInteraction())
		}
		return sink.RenderSVG(l, svgOpts...), nil
	case FormatPNG:
		return sink.RenderPNG(l,
			sink.WithScale(opts.Scale),
			sink.WithPNGLegendPage(opts.LegendPage),
			sink.WithPNGBackground(opts.background()))
	case FormatPDF:
		return sink.RenderPDF(l, svgOpts...)
	case FormatJSON:
		jsonOpts := []sink.JSONOption{sink.WithJSONSelection(opts.Selection)}
		if m != nil {
			jsonOpts = append(jsonOpts, sink.WithJSONModel(m))
		}
		if opts.Config != nil {
			jsonOpts = append(jsonOpts, sink.WithJSONConfig(*opts.Config))
		}
		return sink.RenderJSON(l, jsonOpts...)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
}
