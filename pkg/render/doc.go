// Package render draws reference-table expressions for humans.
//
// # Overview
//
// Three renderings are provided:
//
//   - [ToDOT] emits Graphviz DOT source with one node per table entry and
//     one edge per reference, labelled by the argument or member key
//   - [RenderSVG] lays out DOT source in-process and returns SVG
//   - [Tree] prints the expression expanded from its result as an
//     indented tree
//
// # Usage
//
//	dot := render.ToDOT(e)
//	svg, err := render.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//
//	fmt.Print(render.Tree(e))
//
// The graph view shows sharing: an entry used twice has two incoming edges.
// The tree view duplicates shared entries at each use, which makes deep
// nesting easier to follow.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG using the external rsvg-convert tool
// (from librsvg).
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for SVG layout and
// [github.com/xlab/treeprint] for tree text.
package render
