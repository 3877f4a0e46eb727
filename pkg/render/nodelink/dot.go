package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/debstatus/pkg/errors"
	"github.com/matzehuels/debstatus/pkg/graph"
	"github.com/matzehuels/debstatus/pkg/udd"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the Debian version and status to node labels.
	Detailed bool
}

// Fill colours per packaging tier.
var tierColors = map[udd.Progress]string{
	udd.Available:      "#c8e6c9",
	udd.AvailableInNew: "#bbdefb",
	udd.NeedsUpdate:    "#fff59d",
	udd.Missing:        "#ffcdd2",
}

// ToDOT converts an annotated graph to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG].
//
// Nodes are filled by packaging tier and roots are drawn with a bold
// outline. Build dependencies are dashed and dev dependencies dotted.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	roots := make(map[graph.NodeID]bool)
	for _, id := range g.RootIDs() {
		roots[id] = true
	}

	for _, id := range g.Nodes() {
		p := g.Node(id)
		attrs := fmtAttrs(p, fmtLabel(p, opts.Detailed), roots[id])
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeName(id), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, id := range g.Nodes() {
		for _, e := range g.Edges(id, graph.Outgoing) {
			fmt.Fprintf(&buf, "  %q -> %q%s;\n", nodeName(e.From), nodeName(e.To), edgeAttrs(e.Kind))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(id graph.NodeID) string { return "n" + strconv.Itoa(int(id)) }

func fmtLabel(p *graph.Package, detailed bool) string {
	label := p.Name + " v" + p.Version.String()
	if !detailed {
		return label
	}
	status := p.Progress().String()
	if p.Debian != nil && p.Debian.Version() != "" {
		status = p.Debian.Version() + " " + status
	}
	return label + "\n" + status
}

func fmtAttrs(p *graph.Package, label string, root bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", tierColors[p.Progress()]),
	}
	if root {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

func edgeAttrs(kind graph.Kind) string {
	switch kind {
	case graph.KindBuild:
		return " [style=dashed]"
	case graph.KindDevelopment:
		return " [style=dotted]"
	}
	return ""
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
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
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render SVG")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one
// that scales to its container.
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

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(header))
}
