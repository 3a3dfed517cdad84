// Package render holds output helpers shared by the graph renderers.
//
// [ToPDF] and [ToPNG] convert SVG to other formats with the external
// rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// The [nodelink] subpackage draws planning graphs as layered node-link
// diagrams with Graphviz.
//
// [nodelink]: github.com/matzehuels/plangraph/pkg/render/nodelink
package render
