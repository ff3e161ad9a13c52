package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/geoexpr/pkg/pipeline"
)

// optimizeCommand creates the optimize command.
func (c *CLI) optimizeCommand() *cobra.Command {
	var (
		output     string
		depthLimit int
		noRefcount bool
		readable   bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "optimize <expression.json>",
		Short: "Re-optimize a reference-table document",
		Long: `Re-optimize a reference-table document.

Unreachable entries are dropped, single-use entries and small constants are
inlined, constant arrays and dictionaries are folded, and the surviving
entries are renamed in order of first use.

A depth limit of 0 disables the nesting bound.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			opts := pipeline.FromConfig(cfg)
			opts.Format = pipeline.FormatModern
			if readable {
				opts.Format = pipeline.FormatModernReadable
			}
			if cmd.Flags().Changed("depth-limit") {
				opts.DepthLimit = depthLimit
				if depthLimit == 0 {
					opts.DepthLimit = -1
				}
			}
			opts.Expand = opts.Expand || noRefcount
			opts.Logger = c.Logger

			data, err := readInput(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			result, err := withSpinner(ctx, cmd.ErrOrStderr(), "Optimizing "+args[0]+"...", &opts, func() (*pipeline.Result, error) {
				return runner.Optimize(ctx, data, opts)
			})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Optimized to %d entries", result.Stats.Entries))

			if err := writeOutput(cmd.OutOrStdout(), output, result.Output); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			if output != "" {
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&depthLimit, "depth-limit", 0, "maximum inlined nesting depth (0 disables)")
	cmd.Flags().BoolVar(&noRefcount, "no-refcount", false, "inline every value regardless of use count")
	cmd.Flags().BoolVar(&readable, "readable", false, "expand the result into an indented tree")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
