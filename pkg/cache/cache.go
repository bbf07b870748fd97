// Package cache stores pipeline results keyed by content hashes.
//
// The render pipeline caches two tiers:
//
//   - layouts: the computed [layout.Layout] JSON for a dataset, configuration
//     and canvas size
//   - artifacts: rendered bytes (SVG, PNG, PDF, JSON) for a layout and a set
//     of render options
//
// Backends implement [Cache]: [FileCache] for the CLI, [RedisCache] and
// [MongoCache] for shared deployments, [MemoryCache] for the HTTP server and
// tests, and [NullCache] when caching is disabled. Keys are produced by a
// [Keyer]; [ScopedKeyer] prefixes them per tenant.
//
// [layout.Layout]: github.com/matzehuels/stackchart/pkg/chart/layout
package cache

import (
	"context"
	"strings"
	"time"
)

// Default time-to-live per tier.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 30 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiration. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// =============================================================================
// Keys
// =============================================================================

// LayoutKeyOpts are the inputs that change a layout besides the dataset.
type LayoutKeyOpts struct {
	ConfigHash string  `json:"config"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Style       string  `json:"style,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
	LegendPage  int     `json:"legend_page,omitempty"`
	Interactive bool    `json:"interactive,omitempty"`
	Background  string  `json:"background,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// DatasetHash identifies a dataset by its canonical encoding.
	DatasetHash(data []byte) string
	// LayoutKey is the key of a layout computed from a dataset hash.
	LayoutKey(datasetHash string, opts LayoutKeyOpts) string
	// ArtifactKey is the key of a rendered artifact.
	ArtifactKey(layoutKey string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) DatasetHash(data []byte) string { return Hash(data) }

func (DefaultKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", datasetHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutKey string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutKey, opts)
}

// KeyType returns the tier prefix of a key ("layout", "artifact"), ignoring
// any scope prefix. It is the label passed to cache hooks.
func KeyType(key string) string {
	for _, t := range []string{"layout", "artifact"} {
		if strings.Contains(key, t+":") {
			return t
		}
	}
	return "other"
}
