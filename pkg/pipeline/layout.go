package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/stackchart/pkg/chart/layout"
	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/chart/text"
	"github.com/matzehuels/stackchart/pkg/errors"
	dataio "github.com/matzehuels/stackchart/pkg/io"
	"github.com/matzehuels/stackchart/pkg/observability"
)

// =============================================================================
// Import
// =============================================================================

// Import returns the inline dataset or reads opts.Input.
func Import(opts Options) (model.Dataset, error) {
	var ds model.Dataset
	if opts.Dataset != nil {
		ds = *opts.Dataset
	} else {
		if opts.Input == "" {
			return ds, errors.New(errors.ErrCodeInvalidInput, "no input file")
		}
		var err error
		if ds, err = dataio.ImportFile(opts.Input, opts.Dims); err != nil {
			return ds, err
		}
	}
	return ds, errors.ValidateRowCount(len(ds.Rows))
}

// =============================================================================
// Layout
// =============================================================================

// Shape builds the chart model for ds.
func Shape(ctx context.Context, ds model.Dataset, opts Options) *model.Model {
	opts.SetLayoutDefaults()
	start := time.Now()
	observability.Pipeline().OnShapeStart(ctx, len(ds.Rows))
	m := model.Shape(ds, *opts.Config, model.WithLogger(opts.Logger))
	observability.Pipeline().OnShapeComplete(ctx, len(m.Groups), len(m.SeriesKeys), time.Since(start))
	return m
}

// GenerateLayout computes the geometry of m. Labels are measured with the
// same font the PNG sink draws with.
func GenerateLayout(ctx context.Context, m *model.Model, opts Options) *layout.Layout {
	opts.SetLayoutDefaults()
	cfg := *opts.Config
	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, string(cfg.Kind), len(m.Groups))
	l, _ := layout.Run(m, cfg, opts.Width, opts.Height,
		layout.WithMeasurer(text.NewFontMeasurer(cfg.FontSize)),
		layout.WithLogger(opts.Logger))
	observability.Pipeline().OnLayoutComplete(ctx, string(cfg.Kind), time.Since(start), nil)
	return l
}
