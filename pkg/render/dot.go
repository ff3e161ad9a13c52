package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/geoexpr/pkg/expr"
)

// ToDOT converts an expression to Graphviz DOT source. Each table entry
// becomes a node labelled with its name, kind and summary; each reference
// becomes an edge labelled with the key that holds it. The result entry is
// drawn with a heavy outline and definitions with a dashed one.
//
// References to missing entries are drawn to a red placeholder node so a
// malformed table can still be inspected.
func ToDOT(e expr.Expression) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	idx := e.Values.Index()
	for _, entry := range e.Values {
		attrs := nodeAttrs(entry, entry.Name == e.Result)
		fmt.Fprintf(&buf, "  %q [%s];\n", entry.Name, strings.Join(attrs, ", "))
	}

	missing := make(map[string]bool)
	if _, ok := idx[e.Result]; !ok {
		missing[e.Result] = true
	}

	buf.WriteString("\n")
	for _, entry := range e.Values {
		for _, ed := range edges(entry.Value) {
			if _, ok := idx[ed.to]; !ok {
				missing[ed.to] = true
			}
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", entry.Name, ed.to, ed.label)
		}
	}

	if len(missing) > 0 {
		buf.WriteString("\n")
		for _, name := range expr.SortedKeys(missing) {
			fmt.Fprintf(&buf, "  %q [label=%q, color=red, fontcolor=red, style=\"rounded,dashed\"];\n",
				name, name+"\nmissing")
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(entry expr.Entry, result bool) []string {
	label := entry.Name + "\n" + Kind(entry.Value) + "\n" + summary(entry.Value)
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if result {
		attrs = append(attrs, "penwidth=2.5")
	}
	if _, ok := entry.Value.(expr.Definition); ok {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [ToPDF] or [ToPNG].
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

// normalizeViewBox replaces the Graphviz svg tag with one whose viewBox
// starts at the origin and whose size matches it.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
