// Package instance holds the state of one rendered chart.
//
// An [Instance] owns the current dataset, configuration, canvas size and the
// derived model, scales and layout. Every update (new rows, a resize, a new
// configuration) runs the whole pipeline
//
//	dataset → model.Shape → layout.Run (frame, scales, geometry) → render
//
// as one unit. Two refreshes of the same instance never overlap: a request
// that arrives while a refresh is running marks the instance dirty and the
// running refresh repeats once when it finishes. A layout computed from data
// that changed mid-refresh is discarded, never patched.
//
// Instances are independent; there is no state shared between them.
package instance

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/intent"
	"github.com/matzehuels/stackchart/pkg/chart/layout"
	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/chart/scale"
	"github.com/matzehuels/stackchart/pkg/errors"
	"github.com/matzehuels/stackchart/pkg/observability"
)

// Snapshot is the committed result of one refresh.
type Snapshot struct {
	Generation uint64
	Model      *model.Model
	Scales     scale.Scales
	Layout     *layout.Layout
	Selection  []intent.Intent
}

// RenderFunc draws a committed snapshot. It runs inside the refresh guard.
type RenderFunc func(ctx context.Context, s Snapshot) error

// Stats counts refresh outcomes.
type Stats struct {
	Refreshes int `json:"refreshes"`
	Coalesced int `json:"coalesced"`
	Discarded int `json:"discarded"`
}

// Option configures an [Instance].
type Option func(*Instance)

// WithLogger sets the logger. By default logs are discarded.
func WithLogger(l *log.Logger) Option {
	return func(i *Instance) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithRenderer installs the render step of the pipeline.
func WithRenderer(fn RenderFunc) Option {
	return func(i *Instance) { i.render = fn }
}

// WithLayoutOptions passes options to every layout run.
func WithLayoutOptions(opts ...layout.Option) Option {
	return func(i *Instance) { i.layoutOpts = append(i.layoutOpts, opts...) }
}

// WithID overrides the generated instance id.
func WithID(id string) Option {
	return func(i *Instance) {
		if id != "" {
			i.id = id
		}
	}
}

// Instance is one chart. It is safe for concurrent use.
type Instance struct {
	id         string
	logger     *log.Logger
	render     RenderFunc
	layoutOpts []layout.Option

	mu            sync.Mutex
	cfg           config.Config
	dataset       model.Dataset
	width, height float64
	generation    uint64
	inFlight      bool
	pending       bool
	current       Snapshot
	selection     []intent.Intent
	stats         Stats
}

// New creates an instance with the given configuration and canvas size. It
// holds no data until [Instance.SetData] is called.
func New(cfg config.Config, width, height float64, opts ...Option) *Instance {
	i := &Instance{
		id:     uuid.NewString(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		cfg:    cfg,
		width:  width,
		height: height,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.current = Snapshot{Model: model.Empty(), Layout: &layout.Layout{}}
	return i
}

// ID returns the instance id.
func (i *Instance) ID() string { return i.id }

// =============================================================================
// Refresh guard
// =============================================================================

// BeginRefresh claims the instance for a refresh. It returns false when a
// refresh is already running; the request is then recorded and the running
// refresh repeats once it ends.
func (i *Instance) BeginRefresh() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.inFlight {
		i.pending = true
		i.stats.Coalesced++
		return false
	}
	i.inFlight = true
	return true
}

// EndRefresh releases the instance. It reports whether a request arrived in
// the meantime, in which case the caller must run the pipeline again; the
// instance stays claimed for that rerun.
func (i *Instance) EndRefresh() (rerun bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.pending {
		i.pending = false
		return true
	}
	i.inFlight = false
	return false
}

// Refresh runs the pipeline for the current inputs. If another refresh is
// running, Refresh returns immediately and the running one repeats. An
// error from ctx or the renderer ends the refresh; the last committed
// snapshot stays in place.
func (i *Instance) Refresh(ctx context.Context) error {
	if !i.BeginRefresh() {
		observability.Refresh().OnCoalesced(ctx, i.id)
		i.logger.Debug("refresh coalesced", "chart", i.id)
		return nil
	}
	for {
		err := i.runOnce(ctx)
		if err != nil {
			i.abort()
			return err
		}
		if !i.EndRefresh() {
			return nil
		}
	}
}

// abort releases the guard after a failed run. A pending request is kept so
// the next refresh picks it up.
func (i *Instance) abort() {
	i.mu.Lock()
	i.inFlight = false
	i.mu.Unlock()
}

func (i *Instance) runOnce(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()

		i.mu.Lock()
		gen, ds, cfg, w, h := i.generation, i.dataset, i.cfg, i.width, i.height
		i.mu.Unlock()

		pipe := observability.Pipeline()
		pipe.OnShapeStart(ctx, len(ds.Rows))
		m := model.Shape(ds, cfg, model.WithLogger(i.logger))
		pipe.OnShapeComplete(ctx, len(m.Groups), len(m.SeriesKeys), time.Since(start))

		layoutStart := time.Now()
		pipe.OnLayoutStart(ctx, string(cfg.Kind), len(m.Groups))
		l, s := layout.Run(m, cfg, w, h, append([]layout.Option{layout.WithLogger(i.logger)}, i.layoutOpts...)...)
		pipe.OnLayoutComplete(ctx, string(cfg.Kind), time.Since(layoutStart), nil)

		i.mu.Lock()
		if gen != i.generation {
			i.stats.Discarded++
			i.mu.Unlock()
			observability.Refresh().OnDiscarded(ctx, i.id, gen)
			i.logger.Debug("stale layout discarded", "chart", i.id, "generation", gen)
			continue
		}
		snap := Snapshot{Generation: gen, Model: m, Scales: s, Layout: l, Selection: slices.Clone(i.selection)}
		i.current = snap
		i.stats.Refreshes++
		i.mu.Unlock()

		if i.render != nil {
			if err := i.render(ctx, snap); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "render chart %s", i.id)
			}
		}
		observability.Refresh().OnRefresh(ctx, i.id, gen, time.Since(start))
		i.logger.Debug("refreshed", "chart", i.id, "generation", gen, "bars", len(l.Bars), "elapsed", time.Since(start))
		return nil
	}
}

// =============================================================================
// Inputs
// =============================================================================

// SetData replaces the dataset and refreshes. Any layout still being
// computed for the previous rows is discarded.
func (i *Instance) SetData(ctx context.Context, ds model.Dataset) error {
	i.mu.Lock()
	i.dataset = ds
	i.generation++
	i.selection = nil
	i.mu.Unlock()
	return i.Refresh(ctx)
}

// Resize changes the canvas size and refreshes.
func (i *Instance) Resize(ctx context.Context, width, height float64) error {
	i.mu.Lock()
	i.width, i.height = width, height
	i.generation++
	i.mu.Unlock()
	return i.Refresh(ctx)
}

// Configure validates and applies a new configuration, then refreshes.
func (i *Instance) Configure(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	i.mu.Lock()
	i.cfg = cfg
	i.generation++
	i.mu.Unlock()
	return i.Refresh(ctx)
}

// Config returns the current configuration.
func (i *Instance) Config() config.Config {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cfg
}

// Snapshot returns the last committed refresh.
func (i *Instance) Snapshot() Snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()
	s := i.current
	s.Selection = slices.Clone(i.selection)
	return s
}

// Stats returns the refresh counters.
func (i *Instance) Stats() Stats {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stats
}

// =============================================================================
// Selection
// =============================================================================

// Select applies a selection intent and returns the resulting selection.
// Replace keeps only in, Toggle adds or removes it, Add adds it once.
func (i *Instance) Select(in intent.Intent) ([]intent.Intent, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.ElemID = append(model.ElementID(nil), in.ElemID...)

	i.mu.Lock()
	defer i.mu.Unlock()
	idx := slices.IndexFunc(i.selection, func(s intent.Intent) bool { return sameTarget(s, in) })
	switch in.Mode {
	case intent.Replace:
		i.selection = []intent.Intent{in}
	case intent.Toggle:
		if idx >= 0 {
			i.selection = slices.Delete(i.selection, idx, idx+1)
		} else {
			i.selection = append(i.selection, in)
		}
	case intent.Add:
		if idx < 0 {
			i.selection = append(i.selection, in)
		}
	}
	i.logger.Debug("selection changed", "chart", i.id, "intent", in.String(), "selected", len(i.selection))
	return slices.Clone(i.selection), nil
}

// ClearSelection drops every selected element.
func (i *Instance) ClearSelection() {
	i.mu.Lock()
	i.selection = nil
	i.mu.Unlock()
}

func sameTarget(a, b intent.Intent) bool {
	return a.DimensionIndex == b.DimensionIndex && slices.Equal(a.ElemID, b.ElemID)
}
