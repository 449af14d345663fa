// =============================================================================
// Promotion Ledger Reconciler - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks snapshots without
// comparing them.
//
// COMMAND USAGE:
//   promodiff validate FILE [FILE...] [--strict] [--error-log PATH]
//
// CHECKS:
//   - Required columns are present (fatal)
//   - Malformed rows that compare would skip (error)
//   - Quantities that could not be read and count as 0 (warning)
//   - Duplicate promotion numbers; only the first is matched (warning)
//   - Unreadable start/end dates and end before start (warning)
//
// The command fails when any snapshot is invalid.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/validation"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var strict bool
	var errorLog string

	cmd := &cobra.Command{
		Use:   "validate FILE [FILE...]",
		Short: "Check snapshots for rows that compare would skip or coerce",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p := a.pipeline()
			validator := validation.NewValidator(validation.ValidationOptions{
				TreatWarningsAsErrors: strict,
				DateLayouts:           a.cfg.Parsing.DateLayouts,
			})

			var results []*validation.ValidationResult
			invalid := 0

			for _, path := range args {
				ds, err := p.Load(path, path)
				if err != nil {
					return withColumnHint(err)
				}

				result := validator.Validate(ds)
				results = append(results, result)

				status := "OK"
				if !result.IsValid {
					status = "INVALID"
					invalid++
				}
				fmt.Fprintf(out, "%s: %s (%d row(s), %d error(s), %d warning(s))\n",
					result.Snapshot, status, result.RowsValidated, result.ErrorCount, result.WarningCount)
				if len(result.Errors) > 0 {
					fmt.Fprintln(out, validation.FormatErrors(result.Errors))
				}

				a.log().Debug("validated snapshot", "snapshot", result.Snapshot, "errors", result.ErrorCount, "warnings", result.WarningCount)
			}

			if errorLog != "" {
				if err := validation.WriteErrorLog(results, errorLog); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote validation log to %s\n", errorLog)
			}

			if invalid > 0 {
				return fmt.Errorf("validation failed for %d of %d snapshot(s)", invalid, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	cmd.Flags().StringVar(&errorLog, "error-log", "", "Also write the findings to this file")

	return cmd
}
