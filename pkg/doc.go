// Package pkg provides the libraries behind Stackchart, a stacked bar,
// column and area chart engine.
//
// # Overview
//
// Stackchart turns tabular query results (zero to two dimension columns
// followed by measure columns) into the geometry of a stacked chart and
// renders it. The pkg directory is organized into these areas:
//
//  1. [chart] - Domain logic (shaping, scales, layout, text fitting, chart instances)
//  2. [render] - Output sinks (SVG, PNG, PDF, JSON) and visual styles
//  3. [pipeline] - Orchestration (import → shape → layout → render) with caching
//  4. [cache] - Cache backends (file, memory, Redis, MongoDB)
//  5. [io] - Dataset import and export (JSON, CSV)
//
// # Architecture
//
// The typical data flow:
//
//	JSON / CSV rows
//	       ↓
//	  [io] package (dataset import)
//	       ↓
//	  [chart/model] package (normalize, order series, stack)
//	       ↓
//	  [chart/layout] package (frame, scales, bars, deltas, labels, legend)
//	       ↓
//	  [render/sink] package (SVG/PNG/PDF/JSON output)
//
// # Quick Start
//
//	ds, _ := io.ImportFile("sales.csv", 2)
//	cfg := config.Default()
//	m := model.Shape(ds, cfg)
//	l, _ := layout.Run(m, cfg, 800, 500)
//	svg := sink.RenderSVG(l)
//
// A live chart that receives data, resizes and selections over time is an
// [chart/instance] Instance; it serializes refreshes and discards layouts
// computed from stale data.
//
// # Main Packages
//
// [chart/topo] - Topological ordering of series keys from per-group
// encounter order, with cycle detection.
//
// [chart/format] - D3-compatible number formatting (specifiers, SI prefixes).
//
// [chart/scale] - Linear and band scales with nice domains and ticks.
//
// [chart/text] - Font measurement and truncation with ellipsis.
//
// [chart/intent] - Selection intents emitted by interactive renderers.
//
// [observability] - Hooks for metrics and tracing, no-ops by default.
//
// [errors] - Error codes shared by the CLI and the HTTP API.
//
// [chart]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/chart
// [chart/model]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/chart/model
// [chart/layout]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/chart/layout
// [chart/instance]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/chart/instance
// [chart/topo]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/chart/topo
// [chart/format]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/chart/format
// [chart/scale]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/chart/scale
// [chart/text]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/chart/text
// [chart/intent]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/chart/intent
// [render]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/cache
// [io]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/io
// [observability]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/stackchart/pkg/errors
package pkg
