// =============================================================================
// Promotion Ledger Reconciler - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (promodiff)
//   ├── compareCmd  (promodiff compare)
//   ├── exportCmd   (promodiff export)
//   ├── chartsCmd   (promodiff charts)
//   ├── validateCmd (promodiff validate)
//   ├── watchCmd    (promodiff watch)
//   └── versionCmd  (promodiff version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the YAML configuration (--config) with environment overrides
//   2. Sets up logging (--verbose forces debug)
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/config"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/logging"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/pipeline"
	"github.com/spf13/cobra"
)

// =============================================================================
// APPLICATION STATE
// =============================================================================

// app holds what the commands share: global flags, the resolved
// configuration and the logger.
type app struct {
	// cfgFile is the path to the configuration file (--config).
	cfgFile string

	// verbose enables debug logging (--verbose).
	verbose bool

	cfg    *config.Config
	logger *logging.Logger

	// stderr receives the logs.
	stderr io.Writer
}

// log returns the configured logger, or a discarding one before setup.
func (a *app) log() *slog.Logger {
	if a.logger == nil {
		return logging.Discard()
	}
	return a.logger.Logger
}

// pipeline returns a pipeline for the resolved configuration.
func (a *app) pipeline() *pipeline.Pipeline {
	return pipeline.New(a.cfg, a.log())
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// newRootCmd builds the command tree of a, writing output to stdout.
func newRootCmd(a *app, stdout io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "promodiff",
		Short: "Promotion Ledger Reconciler - compare two promotion ledger snapshots",
		Long: `promodiff reconciles two exports of a promotion ledger, an original and an
updated snapshot, matched by promotion number. It reports the quantity change
of every promotion together with summary statistics, quantity ranges,
change categories and, when the export carries them, customer group and
timeline breakdowns.

Snapshots are tab separated text (or another configured delimiter) or .xlsx
workbooks. Use "-" to read one snapshot from standard input.

Example Usage:
  promodiff compare --original old.tsv --updated new.tsv
  promodiff compare -o old.tsv -u new.xlsx --filter changes --format markdown
  promodiff export  -o old.tsv -u new.tsv --output-dir ./reports
  promodiff charts  -o old.tsv -u new.tsv --top 10
  promodiff validate old.tsv new.tsv
  promodiff watch   -o old.tsv -u new.tsv`,

		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(a.stderr)

	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVar(
		&a.cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&a.verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.AddCommand(
		newCompareCmd(a),
		newExportCmd(a),
		newChartsCmd(a),
		newValidateCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)

	return rootCmd
}

// setup loads the configuration and creates the logger. An explicitly given
// --config file must exist; the default one is optional.
func (a *app) setup(cmd *cobra.Command) error {
	mustExist := cmd.Flags().Changed("config")

	cfg, err := config.Load(a.cfgFile, mustExist)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Logging, a.verbose, a.stderr)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	a.logger = logger

	a.log().Debug("configuration loaded", "path", a.cfgFile, "required", mustExist)
	return nil
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// run executes the command tree with args. The log file opened by setup is
// closed afterwards, whether or not the command succeeded.
func (a *app) run(args []string, stdout io.Writer) error {
	rootCmd := newRootCmd(a, stdout)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if closeErr := a.logger.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("failed to close log file: %w", closeErr)
	}
	return err
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	a := &app{stderr: os.Stderr}
	if err := a.run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
