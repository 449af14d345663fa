// =============================================================================
// Promotion Ledger Reconciler - Filter & Segmentation
// =============================================================================
//
// Read-only views over a comparison set:
//   - Filter: the display filter (all vs. changed-only)
//   - ClassifySign: presentation tag per result
//   - QuantityRangeBins / ChangeMagnitudeBins: categorical binning
//   - ByCustomerGroup / Timeline: grouping over optional enrichment columns
//
// Nothing here mutates the results it is given. Bins are recomputed on
// every call.
//
// =============================================================================

package segment

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
)

// FilterMode selects which results the display filter keeps.
type FilterMode string

const (
	// FilterAll passes every result through unchanged.
	FilterAll FilterMode = "all"

	// FilterChangesOnly keeps results with a non-zero change.
	FilterChangesOnly FilterMode = "changes_only"
)

// ParseFilterMode accepts "all", "changes_only" and the short "changes".
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "changes_only", "changes", "changes-only":
		return FilterChangesOnly, nil
	}
	return "", fmt.Errorf("unknown filter mode %q (want all or changes_only)", s)
}

// Filter applies the display filter. The returned slice is always a new
// slice in the original order.
func Filter(results []types.ComparisonResult, mode FilterMode) []types.ComparisonResult {
	out := make([]types.ComparisonResult, 0, len(results))
	for _, r := range results {
		if Keep(r, mode) {
			out = append(out, r)
		}
	}
	return out
}

// Keep reports whether the display filter keeps r.
func Keep(r types.ComparisonResult, mode FilterMode) bool {
	return mode != FilterChangesOnly || !r.Change.IsZero()
}

// ClassifySign tags a result by the sign of its change.
func ClassifySign(r types.ComparisonResult) types.Sign {
	return r.Sign()
}
