package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/plangraph/pkg/errors"
	"github.com/matzehuels/plangraph/pkg/plangraph"
	"github.com/matzehuels/plangraph/pkg/planning"
	"github.com/matzehuels/plangraph/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// ShowMutexes draws mutex pairs as dashed red edges inside each layer.
	ShowMutexes bool

	// HideNoOps leaves persistence actions and their edges out.
	HideNoOps bool

	// MaxLevel limits the drawing to literal layers 0..MaxLevel.
	// Zero draws every layer built so far.
	MaxLevel int
}

// ToDOT converts the layers built so far into Graphviz DOT source.
//
// Layers run left to right. Literals are ellipses, actions are boxes and
// persistence actions are small grey points. Goal literals are bold.
func ToDOT(g *plangraph.Graph, opts Options) string {
	last := g.Levels()
	if opts.MaxLevel > 0 && opts.MaxLevel < last {
		last = opts.MaxLevel
	}
	goal := make(map[planning.Literal]bool)
	for _, l := range g.Goal() {
		goal[l] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=14, style=filled, fillcolor=white];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.2;\n")

	for i := 0; i <= last; i++ {
		if i > 0 {
			writeActions(&buf, g.ActionLayer(i), i, opts)
		}
		writeLiterals(&buf, g.LiteralLayer(i), i, goal, opts)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeActions(buf *bytes.Buffer, layer *plangraph.ActionLayer, level int, opts Options) {
	fmt.Fprintf(buf, "\n  subgraph actions_%d {\n    rank=same;\n", level)
	for _, a := range layer.Nodes() {
		if opts.HideNoOps && a.NoOp {
			continue
		}
		fmt.Fprintf(buf, "    %q [%s];\n", actionID(level, a), strings.Join(actionAttrs(a), ", "))
	}
	buf.WriteString("  }\n")

	for _, a := range layer.Nodes() {
		if opts.HideNoOps && a.NoOp {
			continue
		}
		for _, p := range layer.Parents(a) {
			fmt.Fprintf(buf, "  %q -> %q;\n", literalID(level-1, p), actionID(level, a))
		}
		for _, e := range layer.Children(a) {
			fmt.Fprintf(buf, "  %q -> %q;\n", actionID(level, a), literalID(level, e))
		}
	}

	if opts.ShowMutexes {
		for _, p := range layer.MutexPairs() {
			if opts.HideNoOps && (p[0].NoOp || p[1].NoOp) {
				continue
			}
			fmt.Fprintf(buf, "  %q -> %q [%s];\n", actionID(level, p[0]), actionID(level, p[1]), mutexAttrs)
		}
	}
}

func writeLiterals(buf *bytes.Buffer, layer *plangraph.LiteralLayer, level int, goal map[planning.Literal]bool, opts Options) {
	fmt.Fprintf(buf, "\n  subgraph literals_%d {\n    rank=same;\n", level)
	for _, l := range layer.Nodes() {
		attrs := []string{fmt.Sprintf("label=%q", l.String()), "shape=ellipse"}
		if goal[l] {
			attrs = append(attrs, "penwidth=2", "fontname=\"bold\"")
		}
		if l.Negated {
			attrs = append(attrs, "fillcolor=\"#f2f2f2\"")
		}
		fmt.Fprintf(buf, "    %q [%s];\n", literalID(level, l), strings.Join(attrs, ", "))
	}
	buf.WriteString("  }\n")

	if opts.ShowMutexes {
		for _, p := range layer.MutexPairs() {
			fmt.Fprintf(buf, "  %q -> %q [%s];\n", literalID(level, p[0]), literalID(level, p[1]), mutexAttrs)
		}
	}
}

const mutexAttrs = `dir=none, style=dashed, color=red, constraint=false`

func literalID(level int, l planning.Literal) string {
	return "L" + strconv.Itoa(level) + ":" + l.String()
}

func actionID(level int, a *plangraph.ActionNode) string {
	return "A" + strconv.Itoa(level) + ":" + a.Name
}

func actionAttrs(a *plangraph.ActionNode) []string {
	if a.NoOp {
		return []string{fmt.Sprintf("label=%q", ""), fmt.Sprintf("tooltip=%q", a.Name), "shape=point", "width=0.08", "color=grey"}
	}
	return []string{fmt.Sprintf("label=%q", a.Name), "shape=box", "style=\"rounded,filled\"", "fillcolor=\"#e8f0fe\""}
}

// RenderSVG renders DOT source to SVG using Graphviz.
// The result can be converted further with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing starts at the
// origin and carries explicit pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders DOT source as PDF via SVG.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG at the given scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
