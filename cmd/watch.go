// =============================================================================
// Promotion Ledger Reconciler - Watch Command
// =============================================================================
//
// This file defines the 'watch' command. It prints the dashboard once and
// again every time one of the two snapshot files changes, until interrupted.
//
// Every run is a complete comparison of the current files. A run that fails
// (for example while an export is still being written) is logged and the
// command keeps watching.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/watch"
	"github.com/ginjaninja78/promotion-ledger-reconciler/pkg/utils"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var input inputFlags
	var format string
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the comparison whenever a snapshot file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.original == utils.StdinPath || input.updated == utils.StdinPath {
				return errors.New("watch needs two files, not stdin")
			}
			for _, path := range []string{input.original, input.updated} {
				if !utils.FileExists(path) {
					return fmt.Errorf("snapshot %s does not exist", path)
				}
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			if _, err := input.options(a); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, a, cmd, &input, format, debounce)
		},
	}

	input.register(cmd)
	cmd.Flags().StringVar(&format, "format", FormatText, "Output format: text, markdown or json")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-running")

	return cmd
}

func runWatch(ctx context.Context, a *app, cmd *cobra.Command, input *inputFlags, format string, debounce time.Duration) error {
	out := cmd.OutOrStdout()

	compare := func() {
		report, opts, err := input.run(a)
		if err != nil {
			a.log().Error("comparison failed", "error", err)
			return
		}
		if err := writeReport(a, out, report, opts, format); err != nil {
			a.log().Error("failed to write report", "error", err)
		}
	}

	w, err := watch.New([]string{input.original, input.updated}, debounce, a.log())
	if err != nil {
		return err
	}
	defer w.Close()

	compare()
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s and %s (Ctrl+C to stop)\n", input.original, input.updated)

	return w.Run(ctx, func(changed string) {
		a.log().Info("snapshot changed, comparing again", "path", changed)
		compare()
	})
}
