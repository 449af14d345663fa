// =============================================================================
// Promotion Ledger Reconciler - Reconciliation Engine
// =============================================================================
//
// Compare joins the "original" and "updated" snapshots on the promotion
// identifier and produces one ComparisonResult per matched original record.
//
// JOIN SEMANTICS:
//   - The join is asymmetric: results follow the original dataset's order
//   - Originals with no updated counterpart produce nothing
//   - Updated-only identifiers are never surfaced
//   - When an identifier repeats in the updated snapshot, the first row wins
//   - Identifiers compare by exact string equality, no normalization
//
// Downstream statistics and charts rely on every result having both a pre
// and a post value, so none of the above may be relaxed here.
//
// =============================================================================

package reconcile

import (
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
)

// Compare reconciles two datasets. It is pure and deterministic: the same
// inputs always yield the same ordered results. Nil datasets are empty.
func Compare(original, updated *types.Dataset) []types.ComparisonResult {
	index := indexByID(updated)

	results := make([]types.ComparisonResult, 0, original.Len())
	for i := 0; i < original.Len(); i++ {
		o := original.At(i)

		u, ok := index[o.ID]
		if !ok {
			continue
		}

		results = append(results, types.NewComparisonResult(o.ID, o.Description, o.Quantity, u.Quantity))
	}

	return results
}

// indexByID maps each identifier to its first record.
func indexByID(ds *types.Dataset) map[string]types.Record {
	index := make(map[string]types.Record, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		if _, seen := index[r.ID]; !seen {
			index[r.ID] = r
		}
	}
	return index
}
