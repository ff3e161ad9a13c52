package cli

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/matzehuels/geoexpr/pkg/expr"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var ordered bool

	cmd := &cobra.Command{
		Use:   "validate <expression.json>",
		Short: "Check a reference-table document for dangling references and cycles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadExpression(args[0])
			if err != nil {
				return err
			}
			err = expr.Validate(e)
			if err == nil && ordered {
				err = expr.CheckTopological(e.Values)
			}
			if err != nil {
				if merr, ok := err.(*multierror.Error); ok {
					for _, e := range merr.Errors {
						printError("%v", e)
					}
				} else {
					printError("%v", err)
				}
				return fmt.Errorf("%s is invalid", args[0])
			}
			printSuccess("%s is valid", args[0])
			printDetail("%d entries, result $%s", len(e.Values), e.Result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&ordered, "ordered", false, "also require entries to follow the entries they reference")

	return cmd
}
