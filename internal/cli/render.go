package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/geoexpr/pkg/render"
)

// Graph output formats.
const (
	graphFormatDOT = "dot"
	graphFormatSVG = "svg"
	graphFormatPDF = "pdf"
	graphFormatPNG = "png"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "render <expression.json>",
		Short: "Draw a reference-table document as a graph",
		Long: `Draw a reference-table document as a node-link graph.

Each table entry is a node; each reference is an edge labelled with the
argument or member key holding it. The result entry has a heavy outline.

PDF and PNG output require librsvg (rsvg-convert).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadExpression(args[0])
			if err != nil {
				return err
			}
			data, err := c.renderGraph(render.ToDOT(e), format)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), output, data); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			if output != "" {
				printSuccess("Rendered %d entries", len(e.Values))
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", graphFormatDOT, "output format: dot, svg, pdf, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

// renderGraph converts DOT source to the requested format.
func (c *CLI) renderGraph(dot, format string) ([]byte, error) {
	if format == graphFormatDOT {
		return []byte(dot), nil
	}

	prog := newProgress(c.Logger)
	svg, err := render.RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	prog.done("Rendered SVG")

	switch format {
	case graphFormatSVG:
		return svg, nil
	case graphFormatPDF:
		return render.ToPDF(svg)
	case graphFormatPNG:
		return render.ToPNG(svg, 2.0)
	}
	return nil, fmt.Errorf("unknown format: %s", format)
}
