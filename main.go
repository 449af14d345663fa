// =============================================================================
// Promotion Ledger Reconciler - Main Entry Point
// =============================================================================
//
// This is the main entry point of the promodiff CLI. It delegates to the cmd
// package.
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Parsing, reconciliation, statistics and rendering
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/promotion-ledger-reconciler/cmd"
)

func main() {
	cmd.Execute()
}
