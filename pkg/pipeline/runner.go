package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackchart/pkg/cache"
	"github.com/matzehuels/stackchart/pkg/chart/layout"
	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/errors"
)

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner may serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer selects the default keyer and a
// nil cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: cache.Instrumented(c), Keyer: keyer, Logger: logger}
}

// Execute runs import → layout → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{}

	importStart := time.Now()
	ds, err := Import(opts)
	if err != nil {
		return nil, err
	}
	result.Dataset = ds
	result.Stats.Rows = len(ds.Rows)
	result.Stats.ImportTime = time.Since(importStart)
	r.Logger.Info("imported dataset", "rows", len(ds.Rows), "dimensions", len(ds.Dimensions), "measures", len(ds.Measures))

	layoutStart := time.Now()
	m, l, hit, err := r.ComputeLayoutWithCacheInfo(ctx, ds, opts)
	if err != nil {
		return nil, err
	}
	result.Model, result.Layout = m, l
	result.Stats.Groups, result.Stats.Series = len(m.Groups), len(m.SeriesKeys)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = hit
	r.Logger.Info("computed layout", "groups", len(m.Groups), "series", len(m.SeriesKeys),
		"bars", len(l.Bars), "cached", hit, "duration", result.Stats.LayoutTime)
	if len(l.Skipped) > 0 {
		r.Logger.Warn("labels skipped", "count", len(l.Skipped))
	}

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, l, m, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit
	r.Logger.Info("rendered outputs", "formats", opts.Formats, "cached", hit, "duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo shapes ds and returns the layout, taken from
// the cache when possible. The model is always rebuilt; it is cheap and the
// cached layout alone does not carry it.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, ds model.Dataset, opts Options) (*model.Model, *layout.Layout, bool, error) {
	r.applyLogger(&opts)
	opts.SetLayoutDefaults()
	if err := opts.Config.Validate(); err != nil {
		return nil, nil, false, err
	}

	m := Shape(ctx, ds, opts)

	raw, err := datasetBytes(ds)
	if err != nil {
		return nil, nil, false, errors.Wrap(errors.ErrCodeInvalidDataset, err, "encode dataset")
	}
	key := r.Keyer.LayoutKey(r.Keyer.DatasetHash(raw), opts.LayoutKeyOpts())

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		} else if hit {
			var cached layout.Layout
			if err := json.Unmarshal(data, &cached); err == nil {
				return m, &cached, true, nil
			}
			r.Logger.Debug("discarding undecodable cached layout", "key", key)
		}
	}

	l := GenerateLayout(ctx, m, opts)
	if data, err := json.Marshal(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.LayoutTTL); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		}
	}
	return m, l, false, nil
}

// RenderWithCacheInfo renders the requested formats, reusing cached
// artifacts. It reports a hit only when every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *layout.Layout, m *model.Model, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	if err := ValidateStyle(opts.Style); err != nil {
		return nil, false, err
	}

	layoutData, err := json.Marshal(l)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for cache key")
	}
	base := cache.Hash(layoutData)
	keys := make(map[string]string, len(opts.Formats))
	for _, f := range opts.Formats {
		keys[f] = r.Keyer.ArtifactKey(base, opts.ArtifactKeyOpts(f))
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, f := range opts.Formats {
		if _, done := artifacts[f]; done {
			continue
		}
		if opts.cacheable() {
			data, hit, err := r.Cache.Get(ctx, keys[f])
			if err != nil {
				r.Logger.Warn("cache read failed", "key", keys[f], "err", err)
			} else if hit {
				artifacts[f] = data
				continue
			}
		}
		missing = append(missing, f)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	rendered, err := renderFormats(ctx, l, m, opts, missing)
	if err != nil {
		return nil, false, err
	}
	for f, data := range rendered {
		artifacts[f] = data
		if opts.cacheable() {
			if err := r.Cache.Set(ctx, keys[f], data, cache.ArtifactTTL); err != nil {
				r.Logger.Warn("cache write failed", "key", keys[f], "err", err)
			}
		}
	}
	return artifacts, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
