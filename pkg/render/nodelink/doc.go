// Package nodelink draws planning graphs as layered node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT, then render it:
//
//	g.Fill(-1)
//	dot := nodelink.ToDOT(g, nodelink.Options{ShowMutexes: true, HideNoOps: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Layer i of the diagram holds literal layer i, preceded by the action layer
// that produced it. Precondition edges run from literals to actions, effect
// edges from actions to literals. Mutex pairs, when shown, are dashed red
// edges that do not affect ranking.
//
// Large graphs get crowded quickly; [Options.HideNoOps] and
// [Options.MaxLevel] are the usual knobs.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
