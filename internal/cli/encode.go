package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/geoexpr/pkg/config"
	"github.com/matzehuels/geoexpr/pkg/observability"
	"github.com/matzehuels/geoexpr/pkg/pipeline"
)

// encodeFlags holds the flags of the encode command.
type encodeFlags struct {
	format  string
	output  string
	indent  string
	noCache bool
	refresh bool
	expand  bool
}

// encodeCommand creates the encode command.
func (c *CLI) encodeCommand() *cobra.Command {
	var flags encodeFlags

	cmd := &cobra.Command{
		Use:   "encode <legacy.json>",
		Short: "Encode a compound-value document",
		Long: `Encode a compound-value document into another format.

The input is a compound-value JSON document ("-" reads standard input).
Formats:
  compact          compound value with shared subgraphs in a scope
  readable         nested compound value, indented
  modern           optimized reference table (default)
  modern-readable  reference table expanded into a tree, indented

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEncode(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: "+strings.Join(config.Formats, ", "))
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&flags.indent, "indent", "", "indent for the readable formats")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached output")
	cmd.Flags().BoolVar(&flags.expand, "expand", false, "inline every shared value")

	return cmd
}

func (c *CLI) runEncode(cmd *cobra.Command, input string, flags encodeFlags) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	opts := pipeline.FromConfig(cfg)
	if flags.format != "" {
		opts.Format = flags.format
	}
	if flags.indent != "" {
		opts.Indent = flags.indent
	}
	opts.Expand = opts.Expand || flags.expand
	opts.Refresh = flags.refresh
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	if opts.Input, err = readInput(input); err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := withSpinner(ctx, cmd.ErrOrStderr(), "Decoding "+input+"...", &opts, func() (*pipeline.Result, error) {
		return runner.Run(ctx, opts)
	})
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), flags.output, result.Output); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if flags.output != "" {
		printSuccess("Encoded %s as %s", input, opts.Format)
		printFile(flags.output)
		printStats(result.Stats.Entries, result.CacheInfo.Hit)
		if opts.Format == pipeline.FormatModern {
			printNextStep("Inspect it", appName+" inspect "+flags.output)
		}
	}
	return nil
}

// withSpinner runs fn while a spinner on w shows which stage of the run is
// in progress. The spinner follows the run through opts.Hooks, so fn must
// pass the same opts to the runner.
func withSpinner(ctx context.Context, w io.Writer, stage string, opts *pipeline.Options, fn func() (*pipeline.Result, error)) (*pipeline.Result, error) {
	spinner := newSpinner(ctx, w, stage)
	prev := opts.Hooks
	next := prev
	if next == nil {
		next = observability.Encode()
	}
	opts.Hooks = stageHooks{s: spinner, next: next}
	defer func() { opts.Hooks = prev }()

	spinner.Start()
	result, err := fn()
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
		} else {
			spinner.StopWithError()
		}
		return nil, err
	}
	spinner.Stop()
	return result, nil
}
