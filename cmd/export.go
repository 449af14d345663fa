// =============================================================================
// Promotion Ledger Reconciler - Export Command
// =============================================================================
//
// This file defines the 'export' command, which writes a comparison to an
// .xlsx workbook with a "Comparison Results" and a "Summary Statistics"
// sheet.
//
// COMMAND USAGE:
//   promodiff export --original FILE --updated FILE [--output-dir DIR]
//
// The file name follows output.file_name_format; {uuid} is the run ID.
// An output directory of "-" writes the workbook to stdout instead.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/ginjaninja78/promotion-ledger-reconciler/pkg/utils"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var input inputFlags
	var outputDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Compare two snapshots and export the results to a workbook",
		Long: `The export command runs the same comparison as compare and writes it to an
.xlsx workbook in the output directory. The results sheet honours --filter;
the summary sheet always describes every matched promotion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, opts, err := input.run(a)
			if err != nil {
				return err
			}
			rows := len(report.Filtered(opts.Filter))

			if outputDir == utils.StdinPath {
				if err := a.pipeline().ExportTo(cmd.OutOrStdout(), report, opts.Filter); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d result(s) to stdout\n", rows)
				return nil
			}

			path, err := a.pipeline().Export(report, outputDir, opts.Filter)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d result(s) to %s\n", rows, path)
			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for the workbook (default from config, \"-\" for stdout)")

	return cmd
}
