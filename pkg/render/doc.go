// Package render turns a computed chart layout into output formats.
//
// # Sinks
//
// The [sink] subpackage writes a [layout.Layout] as:
//
//   - SVG: a standalone document, optionally with a hover and click script
//     that turns clicks into selection intents
//   - PNG: rasterized in-process with the same font the layout was
//     measured with
//   - JSON: the layout (plus model and configuration) for hosts that draw
//     the chart themselves
//   - PDF: the SVG converted with rsvg-convert, see [ToPDF]
//
// Visual details of bars, areas, deltas and labels live in the [styles]
// subpackage.
//
// [sink]: github.com/matzehuels/stackchart/pkg/render/sink
// [styles]: github.com/matzehuels/stackchart/pkg/render/styles
// [layout.Layout]: github.com/matzehuels/stackchart/pkg/chart/layout.Layout
package render
