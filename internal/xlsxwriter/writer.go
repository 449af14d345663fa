// =============================================================================
// Promotion Ledger Reconciler - Spreadsheet Exporter
// =============================================================================
//
// This module writes a comparison run to an .xlsx workbook with two sheets:
//
//   Comparison Results
//   | TD No | TD Description | Original Qty | Updated Qty | Change |
//
//   Summary Statistics
//   | Metric | Value |
//
// Quantities and metric values are written as numeric cells. Metrics that are
// undefined for the run (for example the largest increase of an empty set)
// leave the value cell blank.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"io"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/projection"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the export.
const (
	ResultsSheet = "Comparison Results"
	SummarySheet = "Summary Statistics"
)

// Column headers of the export.
var (
	ResultsHeader = []string{"TD No", "TD Description", "Original Qty", "Updated Qty", "Change"}
	SummaryHeader = []string{"Metric", "Value"}
)

// =============================================================================
// WRITER FUNCTIONS
// =============================================================================

// Write saves the workbook to path.
//
// PARAMETERS:
//   - path: The target .xlsx path. Its directory must exist.
//   - results: The comparison results, written in order.
//   - metrics: The summary rows, see projection.SummaryMetrics.
//
// RETURNS:
//   - An error if the workbook cannot be built or saved.
func Write(path string, results []types.ComparisonResult, metrics []projection.Metric) error {
	f, err := Build(results, metrics)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteTo streams the workbook to w.
func WriteTo(w io.Writer, results []types.ComparisonResult, metrics []projection.Metric) error {
	f, err := Build(results, metrics)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Build returns the in-memory workbook. The caller must Close it.
func Build(results []types.ComparisonResult, metrics []projection.Metric) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), ResultsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name results sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to add summary sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeResults(f, header, results); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, header, metrics); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// =============================================================================
// SHEETS
// =============================================================================

func writeResults(f *excelize.File, headerStyle int, results []types.ComparisonResult) error {
	if err := writeHeader(f, ResultsSheet, headerStyle, ResultsHeader); err != nil {
		return err
	}

	for i, r := range results {
		row := []any{
			r.ID,
			r.Description,
			r.OriginalQuantity.InexactFloat64(),
			r.UpdatedQuantity.InexactFloat64(),
			r.Change.InexactFloat64(),
		}
		if err := setRow(f, ResultsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(ResultsSheet, "A", "A", 14); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(ResultsSheet, "B", "B", 40); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(ResultsSheet, "C", "E", 14); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, headerStyle int, metrics []projection.Metric) error {
	if err := writeHeader(f, SummarySheet, headerStyle, SummaryHeader); err != nil {
		return err
	}

	for i, m := range metrics {
		row := []any{m.Name, nil}
		if m.Value.Valid {
			row[1] = m.Value.Decimal.InexactFloat64()
		}
		if err := setRow(f, SummarySheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SummarySheet, "A", "A", 28); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func writeHeader(f *excelize.File, sheet string, style int, names []string) error {
	row := make([]any, len(names))
	for i, n := range names {
		row[i] = n
	}
	if err := setRow(f, sheet, 1, row); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(names), 1)
	if err != nil {
		return fmt.Errorf("failed to resolve header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return nil
}

// setRow writes values starting at column A of the 1-based row.
func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
