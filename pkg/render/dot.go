// Package render turns dependency trees into Graphviz output for debugging.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/relock/pkg/locktree"
)

// ToDOT converts a canonical dependency tree to Graphviz DOT format. Nodes
// are identified by lock-path so repeated name@version occurrences at
// different depths stay distinct. The resulting DOT string can be rendered
// with [RenderSVG].
func ToDOT(root *locktree.Node, title string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=lightgrey];\n", "", title)
	writeNodes(&buf, root, "")
	buf.WriteString("\n")
	writeEdges(&buf, root, "")

	buf.WriteString("}\n")
	return buf.String()
}

func writeNodes(buf *bytes.Buffer, n *locktree.Node, path string) {
	for _, dep := range n.Dependencies {
		id := childPath(path, dep.Name)
		fmt.Fprintf(buf, "  %q [label=%q];\n", id, dep.Tag())
		writeNodes(buf, dep, id)
	}
}

func writeEdges(buf *bytes.Buffer, n *locktree.Node, path string) {
	for _, dep := range n.Dependencies {
		id := childPath(path, dep.Name)
		fmt.Fprintf(buf, "  %q -> %q;\n", path, id)
		writeEdges(buf, dep, id)
	}
}

func childPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + locktree.PathSeparator + name
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
