// =============================================================================
// Promotion Ledger Reconciler - Charts Command
// =============================================================================
//
// This file defines the 'charts' command. It prints every chart series of a
// comparison as JSON for plotting tools:
//   - top absolute, increase, decrease, percentage and volume rankings
//   - cumulative change and the sign distribution
//   - quantity range and change category distributions
//   - customer group and timeline series when the data has those columns
//
// =============================================================================

package cmd

import (
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/render"
	"github.com/spf13/cobra"
)

func newChartsCmd(a *app) *cobra.Command {
	var input inputFlags

	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Print the chart series of a comparison as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, opts, err := input.run(a)
			if err != nil {
				return err
			}
			return render.ChartsJSON(cmd.OutOrStdout(), report, opts.TopN)
		},
	}

	input.register(cmd)
	// Charts always describe every matched promotion.
	_ = cmd.Flags().MarkHidden("filter")
	return cmd
}
