// =============================================================================
// Promotion Ledger Reconciler - Record Parser
// =============================================================================
//
// This module converts a pasted or exported ledger snapshot into a typed
// Dataset. The input is plain delimited text:
//   - The first non-blank line is the header and defines the column names
//   - Every following non-blank line is one data row
//   - Fields are separated by a fixed delimiter (tab by default)
//
// PARSING POLICY:
//   - The id and quantity columns must be present, otherwise the snapshot is
//     rejected with a MissingColumn error
//   - Quantities that do not parse are coerced to 0 and the row is kept
//   - Rows whose field count differs from the header, or whose identifier is
//     blank, are skipped and reported as MalformedRow issues on the Dataset
//   - Blank and whitespace-only lines are skipped silently
//
// The parser is a pure function over its input text. It never reads files;
// callers hand it the text (see pkg/utils.ReadInput).
//
// =============================================================================

package csvparser

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings controls how raw text is split into fields.
type Settings struct {
	// Delimiter is the field separator. Aliases such as "tab", "\\t" and
	// "pipe" are accepted. Default: tab.
	Delimiter string
}

// DefaultSettings returns the settings for tab-separated spreadsheet pastes.
func DefaultSettings() Settings {
	return Settings{Delimiter: "\t"}
}

// Row is one pre-split data row with its 1-based source line.
type Row struct {
	Line   int
	Fields []string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse parses tab-separated text using the given column mapping.
//
// RETURNS:
//   - The parsed Dataset (malformed rows are listed in Dataset.Issues).
//   - types.ErrEmptyInput if text is empty or whitespace-only.
//   - A *types.ParseError of kind MissingColumn if a required column is absent.
func Parse(text string, columns types.Columns) (*types.Dataset, error) {
	return ParseNamed("", text, columns, DefaultSettings())
}

// ParseNamed is Parse with a snapshot name and explicit settings.
func ParseNamed(name, text string, columns types.Columns, settings Settings) (*types.Dataset, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	if strings.TrimSpace(text) == "" {
		return nil, types.ErrEmptyInput
	}

	delimiter := resolveDelimiter(settings.Delimiter)

	var header []string
	var rows []Row

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, delimiter)
		if header == nil {
			header = fields
			continue
		}

		// Lines made only of delimiters count as blank.
		if isRowEmpty(fields) {
			continue
		}

		rows = append(rows, Row{Line: i + 1, Fields: fields})
	}

	return FromRows(name, header, rows, columns)
}

// FromRows builds a Dataset from a header and pre-split rows. It applies the
// same column checks and row policy as Parse and is shared with the workbook
// loader.
func FromRows(name string, header []string, rows []Row, columns types.Columns) (*types.Dataset, error) {
	if len(header) == 0 {
		return nil, types.ErrEmptyInput
	}

	header = cleanHeaders(header)
	index := indexHeaders(header)

	// Required columns are validated once, here.
	for _, required := range []struct{ field, name string }{
		{types.FieldID, columns.ID},
		{types.FieldQuantity, columns.Quantity},
	} {
		if _, ok := index[required.name]; !ok || required.name == "" {
			return nil, &types.ParseError{
				Kind:   types.MissingColumn,
				Column: required.name,
				Reason: fmt.Sprintf("%s column is required", required.field),
			}
		}
	}

	present := make(map[string]bool)
	for _, field := range []string{
		types.FieldID,
		types.FieldDescription,
		types.FieldQuantity,
		types.FieldCustomerGroup,
		types.FieldStartDate,
		types.FieldEndDate,
	} {
		if h := columns.Header(field); h != "" {
			_, present[field] = index[h]
		}
	}

	records := make([]types.Record, 0, len(rows))
	var issues []*types.ParseError

	for _, row := range rows {
		if len(row.Fields) != len(header) {
			issues = append(issues, &types.ParseError{
				Kind:     types.MalformedRow,
				Line:     row.Line,
				Expected: len(header),
				Got:      len(row.Fields),
			})
			continue
		}

		get := func(h string) string {
			i, ok := index[h]
			if !ok || h == "" {
				return ""
			}
			return strings.TrimSpace(row.Fields[i])
		}

		id := get(columns.ID)
		if id == "" {
			issues = append(issues, &types.ParseError{
				Kind:   types.MalformedRow,
				Line:   row.Line,
				Column: columns.ID,
				Reason: "blank identifier",
			})
			continue
		}

		raw := get(columns.Quantity)
		records = append(records, types.Record{
			ID:            id,
			Description:   get(columns.Description),
			Quantity:      ParseQuantity(raw),
			RawQuantity:   raw,
			CustomerGroup: get(columns.CustomerGroup),
			StartDate:     get(columns.StartDate),
			EndDate:       get(columns.EndDate),
			Line:          row.Line,
		})
	}

	return types.NewDataset(name, columns, present, records, issues), nil
}

// ParseQuantity parses a quantity field. Blank or non-numeric text is 0.
func ParseQuantity(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// IsQuantity reports whether raw parses as a quantity. Blank text is not a
// quantity; ParseQuantity maps both cases to 0.
func IsQuantity(raw string) bool {
	_, err := decimal.NewFromString(strings.TrimSpace(raw))
	return err == nil
}

// =============================================================================
// HELPERS
// =============================================================================

// resolveDelimiter maps the configured delimiter to the separator string.
// Handle special cases for common delimiters.
func resolveDelimiter(delimiter string) string {
	switch delimiter {
	case "", "\\t", "tab", "TAB":
		return "\t"
	case "pipe", "PIPE":
		return "|"
	case "semicolon":
		return ";"
	case "comma":
		return ","
	default:
		return delimiter
	}
}

// cleanHeaders trims header names and names empty ones after their position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// indexHeaders maps header name to position. The first occurrence of a
// duplicated name wins.
func indexHeaders(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, exists := index[h]; !exists {
			index[h] = i
		}
	}
	return index
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
