// =============================================================================
// Promotion Ledger Reconciler - Compare Command
// =============================================================================
//
// This file defines the 'compare' command, the main command of the tool. It
// runs one comparison and prints the dashboard.
//
// COMMAND USAGE:
//   promodiff compare --original FILE --updated FILE [flags]
//
// FLAGS:
//   --original, -o : The original snapshot ("-" for stdin)
//   --updated, -u  : The updated snapshot ("-" for stdin)
//   --filter       : "all" or "changes" (results table only)
//   --format       : "text" (rendered), "markdown" or "json"
//   --top          : Length of the ranking table
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/pipeline"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/render"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/segment"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
	"github.com/spf13/cobra"
)

// Output formats of the compare command.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// =============================================================================
// SHARED INPUT FLAGS
// =============================================================================

// inputFlags are the flags of every command that runs a comparison.
type inputFlags struct {
	original string
	updated  string
	filter   string
	top      int
}

// register adds the input flags to cmd.
func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.original, "original", "o", "", "Original snapshot file (\"-\" for stdin)")
	cmd.Flags().StringVarP(&f.updated, "updated", "u", "", "Updated snapshot file (\"-\" for stdin)")
	cmd.Flags().StringVar(&f.filter, "filter", string(segment.FilterAll), "Rows to show: all or changes")
	cmd.Flags().IntVar(&f.top, "top", 0, "Length of the ranking lists (default from config)")
	_ = cmd.MarkFlagRequired("original")
	_ = cmd.MarkFlagRequired("updated")
}

// options resolves the render options against the configuration.
func (f *inputFlags) options(a *app) (render.Options, error) {
	mode, err := segment.ParseFilterMode(f.filter)
	if err != nil {
		return render.Options{}, err
	}
	top := f.top
	if top == 0 {
		top = a.cfg.Analysis.TopN
	}
	return render.Options{Filter: mode, TopN: top}, nil
}

// run executes the comparison.
func (f *inputFlags) run(a *app) (*pipeline.Report, render.Options, error) {
	opts, err := f.options(a)
	if err != nil {
		return nil, opts, err
	}
	report, err := a.pipeline().RunFiles(f.original, f.updated)
	if err != nil {
		return nil, opts, fmt.Errorf("comparison failed: %w", withColumnHint(err))
	}
	return report, opts, nil
}

// withColumnHint points a missing column error at the column mapping of the
// configuration.
func withColumnHint(err error) error {
	if types.IsMissingColumn(err) {
		return fmt.Errorf("%w (header names are set in the columns section of the config file)", err)
	}
	return err
}

// =============================================================================
// COMPARE COMMAND DEFINITION
// =============================================================================

func newCompareCmd(a *app) *cobra.Command {
	var input inputFlags
	var format string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two snapshots and print the dashboard",
		Long: `The compare command matches the promotions of the original snapshot with
the updated snapshot by promotion number and prints the quantity change of
each match, the summary statistics and the segment breakdowns.

Promotions that exist in only one snapshot are not reported. The --filter
flag only affects the results table: the summary always describes every
matched promotion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			report, opts, err := input.run(a)
			if err != nil {
				return err
			}
			return writeReport(a, cmd.OutOrStdout(), report, opts, format)
		},
	}

	input.register(cmd)
	cmd.Flags().StringVar(&format, "format", FormatText, "Output format: text, markdown or json")

	return cmd
}

func checkFormat(format string) error {
	switch format {
	case FormatText, FormatMarkdown, FormatJSON:
		return nil
	}
	return fmt.Errorf("unknown format %q (use %s)", format, strings.Join([]string{FormatText, FormatMarkdown, FormatJSON}, ", "))
}

// writeReport prints report in the given format.
func writeReport(a *app, w io.Writer, report *pipeline.Report, opts render.Options, format string) error {
	switch format {
	case FormatJSON:
		return render.JSON(w, report, opts)
	case FormatMarkdown:
		_, err := io.WriteString(w, render.Markdown(report, opts))
		return err
	default:
		out, err := render.Terminal(render.Markdown(report, opts), a.cfg.Output.Style, a.cfg.Output.WordWrap)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}
}
