package server

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/stackchart/pkg/chart/instance"
	"github.com/matzehuels/stackchart/pkg/chart/text"
)

// registry holds the live charts, dropping the least recently used one when
// full. released is called for every chart that leaves the registry, both
// on eviction and on removal.
type registry struct {
	charts *lru.Cache[string, *instance.Instance]
}

func newRegistry(size int, released func(id string)) *registry {
	// NewWithEvict only fails for non-positive sizes.
	charts, _ := lru.NewWithEvict(max(size, 1), func(id string, _ *instance.Instance) {
		if released != nil {
			released(id)
		}
	})
	return &registry{charts: charts}
}

// add stores inst and reports whether another chart was evicted for it.
func (r *registry) add(inst *instance.Instance) (evicted bool) {
	return r.charts.Add(inst.ID(), inst)
}

// get returns the chart and marks it as recently used.
func (r *registry) get(id string) (*instance.Instance, bool) {
	return r.charts.Get(id)
}

func (r *registry) remove(id string) bool {
	return r.charts.Remove(id)
}

func (r *registry) len() int {
	return r.charts.Len()
}

// fontMeasurer measures with a font face matching the font size of the
// chart's current configuration. Faces are not safe for concurrent use, so
// each chart owns one.
type fontMeasurer struct {
	mu   sync.Mutex
	size func() float64
	cur  float64
	m    *text.FontMeasurer
}

func (f *fontMeasurer) Measure(s string) (text.Size, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if size := f.size(); f.m == nil || size != f.cur {
		f.m, f.cur = text.NewFontMeasurer(size), size
	}
	return f.m.Measure(s)
}
