package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/geoexpr/pkg/expr"
	"github.com/matzehuels/geoexpr/pkg/render"
)

// loadExpression reads and parses a reference-table document.
func loadExpression(path string) (expr.Expression, error) {
	data, err := readInput(path)
	if err != nil {
		return expr.Expression{}, fmt.Errorf("read %s: %w", path, err)
	}
	var e expr.Expression
	if err := json.Unmarshal(data, &e); err != nil {
		return expr.Expression{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return e, nil
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var statsOnly bool

	cmd := &cobra.Command{
		Use:   "inspect <expression.json>",
		Short: "Show a reference-table document as a tree",
		Long: `Show a reference-table document as a tree, followed by entry counts.

Shared entries are printed under each of their users and marked with
their table name ($name).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadExpression(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !statsOnly {
				fmt.Fprint(w, render.Tree(e))
				fmt.Fprintln(w)
			}
			printEntryStats(w, e)
			return nil
		},
	}

	cmd.Flags().BoolVar(&statsOnly, "stats", false, "print entry counts only")

	return cmd
}

// printEntryStats prints the number of entries of each kind and how often
// each entry is referenced.
func printEntryStats(w io.Writer, e expr.Expression) {
	kinds := make(map[string]int)
	uses := make(map[string]int)
	for _, entry := range e.Values {
		kinds[render.Kind(entry.Value)]++
		for _, ref := range expr.References(entry.Value) {
			uses[ref]++
		}
	}
	shared := 0
	for _, n := range uses {
		if n > 1 {
			shared++
		}
	}

	fmt.Fprintln(w, StyleTitle.Render("Entries"))
	printKeyValueTo(w, "result", "$"+e.Result)
	printKeyValueTo(w, "total", strconv.Itoa(len(e.Values)))
	printKeyValueTo(w, "shared", strconv.Itoa(shared))
	for _, kind := range expr.SortedKeys(kinds) {
		printKeyValueTo(w, kind, strconv.Itoa(kinds[kind]))
	}
}
