// =============================================================================
// Promotion Ledger Reconciler - Workbook Loader
// =============================================================================
//
// This module reads one sheet of an .xlsx ledger export into a Dataset. The
// sheet is expected to look like the tab-separated export:
//
//   | Td No | Td Desc      | Balance Qty | Customer Group | Start Date | End Date   |
//   |-------|--------------|-------------|----------------|------------|------------|
//   | P001  | Summer Promo | 100         | Retail         | 2024-06-01 | 2024-06-30 |
//
// The first non-empty row is the header. Column checks, the quantity rules
// and the skip-and-continue row policy are shared with the text parser
// through csvparser.FromRows.
//
// CELL VALUES:
//   excelize returns formatted cell text by default, so a quantity shown as
//   "1,234" would not parse. The quantity column is read as the raw stored
//   value instead. Date cells hold Excel serial numbers; numeric start and
//   end dates are converted to YYYY-MM-DD. Every other column keeps its
//   formatted text.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/csvparser"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned for a workbook without worksheets.
var ErrNoSheets = errors.New("workbook has no sheets")

// Load reads the named sheet of a workbook, or the first sheet when sheet
// is empty.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//   - sheet: The sheet name, or "" for the first sheet.
//   - columns: The column mapping.
//
// RETURNS:
//   - The parsed dataset, named after the file.
//   - An error if the workbook cannot be opened, the sheet does not exist,
//     or a required column is missing.
func Load(path, sheet string, columns types.Columns) (*types.Dataset, error) {
	return LoadNamed(path, path, sheet, columns)
}

// LoadNamed is Load with an explicit dataset name.
func LoadNamed(name, path, sheet string, columns types.Columns) (*types.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, ErrNoSheets
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	s := sheetValues{formatted: rows, raw: raw, date1904: uses1904(f)}
	return s.dataset(name, columns)
}

// uses1904 reports whether the workbook counts dates from 1904.
func uses1904(f *excelize.File) bool {
	props, err := f.GetWorkbookProps()
	return err == nil && props.Date1904 != nil && *props.Date1904
}

// =============================================================================
// SHEET VALUES
// =============================================================================

// sheetValues holds the formatted and the raw text of one sheet. raw may be
// nil, in which case the formatted text is used throughout.
type sheetValues struct {
	formatted [][]string
	raw       [][]string
	date1904  bool
}

// rawCell returns the raw value at (row, col), or "" when there is none.
func (s sheetValues) rawCell(row, col int) (string, bool) {
	if row >= len(s.raw) || col >= len(s.raw[row]) {
		return "", false
	}
	return s.raw[row][col], true
}

// dataset splits the sheet into header and data rows. Line numbers are the
// 1-based sheet row numbers.
func (s sheetValues) dataset(name string, columns types.Columns) (*types.Dataset, error) {
	rows := s.formatted

	headerAt := -1
	for i, row := range rows {
		if !isRowEmpty(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, types.ErrEmptyInput
	}

	header := rows[headerAt]
	width := len(header)

	quantityAt := columnIndex(header, columns.Quantity)
	dateAt := []int{columnIndex(header, columns.StartDate), columnIndex(header, columns.EndDate)}

	var data []csvparser.Row
	for i := headerAt + 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		// excelize drops trailing empty cells.
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		} else {
			row = append([]string(nil), row...)
		}

		if quantityAt >= 0 {
			if v, ok := s.rawCell(i, quantityAt); ok {
				row[quantityAt] = v
			}
		}
		for _, at := range dateAt {
			if at < 0 {
				continue
			}
			if v, ok := s.rawCell(i, at); ok {
				if date, ok := s.serialDate(v); ok {
					row[at] = date
				}
			}
		}

		data = append(data, csvparser.Row{Line: i + 1, Fields: row})
	}

	return csvparser.FromRows(name, header, data, columns)
}

// serialDate converts a raw Excel date serial to YYYY-MM-DD. Text that is
// not a number is left to the date parsers.
func (s sheetValues) serialDate(v string) (string, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, s.date1904)
	if err != nil {
		return "", false
	}
	return t.Format(time.DateOnly), true
}

// columnIndex returns the position of the first header named name, or -1.
func columnIndex(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
