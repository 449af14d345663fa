// =============================================================================
// Promotion Ledger Reconciler - Result Projection
// =============================================================================
//
// This package turns comparison results and summaries into values that a
// renderer or exporter can consume directly:
//   - TableRows: one display row per result
//   - Series:    chart-ready label/value sequences (see series.go)
//   - SummaryLines, AnalysisItems, SummaryMetrics: dashboard and export text
//
// Nothing here mutates the results it is given. Callers own the returned
// slices.
//
// =============================================================================

package projection

import (
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
	"github.com/shopspring/decimal"
)

// =============================================================================
// TABLE ROWS
// =============================================================================

// TableRow is one line of the comparison table.
type TableRow struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Original    string `json:"original"`
	Updated     string `json:"updated"`
	Change      string `json:"change"`

	// Tag is "increase", "decrease" or "unchanged".
	Tag string `json:"tag"`
}

// TableRows projects results into display rows, in result order.
//
// Quantities are shown with zero decimals using banker's rounding; the
// change always carries a sign ("+20", "-5", "+0").
func TableRows(results []types.ComparisonResult) []TableRow {
	rows := make([]TableRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, NewTableRow(r))
	}
	return rows
}

// NewTableRow projects one result.
func NewTableRow(r types.ComparisonResult) TableRow {
	return TableRow{
		ID:          r.ID,
		Description: r.Description,
		Original:    FormatQuantity(r.OriginalQuantity),
		Updated:     FormatQuantity(r.UpdatedQuantity),
		Change:      FormatChange(r.Change),
		Tag:         r.Sign().String(),
	}
}

// FormatQuantity renders a quantity with zero decimals.
func FormatQuantity(d decimal.Decimal) string {
	return d.StringFixedBank(0)
}

// FormatChange renders a change with zero decimals and an explicit sign.
func FormatChange(d decimal.Decimal) string {
	s := d.StringFixedBank(0)
	if d.Sign() < 0 {
		if s == "0" {
			return "-0"
		}
		return s
	}
	return "+" + s
}
