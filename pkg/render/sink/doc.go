// Package sink writes chart layouts as SVG, PNG, JSON and PDF.
//
// Every sink takes a computed [layout.Layout] and draws exactly what it
// describes; no sink measures text or moves elements. Renderers are
// configured with functional options:
//
//	svg := sink.RenderSVG(l, sink.WithInteraction(), sink.WithSelection(sel))
//	png, err := sink.RenderPNG(l, sink.WithScale(2))
//	data, err := sink.RenderJSON(l, sink.WithJSONModel(m))
//
// Area charts (chart kind "area") reuse the bar geometry: each series is
// drawn as one polygon through the band centers of its slices.
//
// [layout.Layout]: github.com/matzehuels/stackchart/pkg/chart/layout.Layout
package sink
