// =============================================================================
// Promotion Ledger Reconciler - Shared Types
// =============================================================================
//
// This package contains the types shared by the parser, the reconciliation
// engine, segmentation, statistics and the exporters. Keeping them here avoids
// import cycles between those packages.
//
// =============================================================================

package types

import "github.com/shopspring/decimal"

// =============================================================================
// COLUMN MAPPING
// =============================================================================

// Field names the engine knows about. The header names they map to are
// configuration, see Columns.
const (
	FieldID            = "id"
	FieldDescription   = "description"
	FieldQuantity      = "quantity"
	FieldCustomerGroup = "customer_group"
	FieldStartDate     = "start_date"
	FieldEndDate       = "end_date"
)

// Columns maps engine fields to the header names of one ledger export.
// ID and Quantity are required; the other columns are optional capabilities
// and are only read when present in the header.
type Columns struct {
	ID            string
	Description   string
	Quantity      string
	CustomerGroup string
	StartDate     string
	EndDate       string
}

// DefaultColumns returns the header names used by the promotion ledger export.
func DefaultColumns() Columns {
	return Columns{
		ID:            "Td No",
		Description:   "Td Desc",
		Quantity:      "Balance Qty",
		CustomerGroup: "Customer Group",
		StartDate:     "Start Date",
		EndDate:       "End Date",
	}
}

// Header returns the header name configured for a field, or "" for unknown
// fields.
func (c Columns) Header(field string) string {
	switch field {
	case FieldID:
		return c.ID
	case FieldDescription:
		return c.Description
	case FieldQuantity:
		return c.Quantity
	case FieldCustomerGroup:
		return c.CustomerGroup
	case FieldStartDate:
		return c.StartDate
	case FieldEndDate:
		return c.EndDate
	}
	return ""
}

// =============================================================================
// RECORDS AND DATASETS
// =============================================================================

// Record is the typed projection of one ledger row.
type Record struct {
	// ID is the promotion identifier and the join key. Never empty.
	ID string

	// Description defaults to "" when the column is absent.
	Description string

	// Quantity is the balance quantity. Unparseable or missing text is 0.
	Quantity decimal.Decimal

	// RawQuantity keeps the trimmed source text of the quantity field.
	RawQuantity string

	// Optional enrichment fields, raw text.
	CustomerGroup string
	StartDate     string
	EndDate       string

	// Line is the 1-based line (or sheet row) the record was read from.
	Line int
}

// Dataset is an ordered, immutable sequence of records built from one
// snapshot. The zero value is an empty dataset.
type Dataset struct {
	name    string
	columns Columns
	present map[string]bool
	records []Record
	issues  []*ParseError
}

// NewDataset builds a dataset. The slices are copied, so later changes by the
// caller do not affect the dataset.
func NewDataset(name string, columns Columns, present map[string]bool, records []Record, issues []*ParseError) *Dataset {
	p := make(map[string]bool, len(present))
	for k, v := range present {
		p[k] = v
	}
	return &Dataset{
		name:    name,
		columns: columns,
		present: p,
		records: append([]Record(nil), records...),
		issues:  append([]*ParseError(nil), issues...),
	}
}

// Name returns the snapshot name (e.g. "original").
func (d *Dataset) Name() string {
	if d == nil {
		return ""
	}
	return d.name
}

// Columns returns the column mapping the dataset was parsed with.
func (d *Dataset) Columns() Columns {
	if d == nil {
		return Columns{}
	}
	return d.columns
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the i-th record.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns a copy of the records in source order.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return append([]Record(nil), d.records...)
}

// HasField reports whether the header contained the column mapped to field.
func (d *Dataset) HasField(field string) bool {
	if d == nil {
		return false
	}
	return d.present[field]
}

// Issues returns the per-row parse errors of rows that were skipped.
func (d *Dataset) Issues() []*ParseError {
	if d == nil {
		return nil
	}
	return append([]*ParseError(nil), d.issues...)
}

// =============================================================================
// COMPARISON RESULTS
// =============================================================================

// ComparisonResult is one matched identifier with its pre and post quantity.
// Change is always UpdatedQuantity - OriginalQuantity, unrounded.
type ComparisonResult struct {
	ID               string
	Description      string
	OriginalQuantity decimal.Decimal
	UpdatedQuantity  decimal.Decimal
	Change           decimal.Decimal
}

// NewComparisonResult computes the change and returns the result.
func NewComparisonResult(id, description string, original, updated decimal.Decimal) ComparisonResult {
	return ComparisonResult{
		ID:               id,
		Description:      description,
		OriginalQuantity: original,
		UpdatedQuantity:  updated,
		Change:           updated.Sub(original),
	}
}

// Sign classifies the result by the sign of its change.
func (r ComparisonResult) Sign() Sign {
	switch r.Change.Sign() {
	case 1:
		return Increase
	case -1:
		return Decrease
	default:
		return Unchanged
	}
}

// Sign tags a result as an increase, a decrease or unchanged.
type Sign int

const (
	Unchanged Sign = iota
	Increase
	Decrease
)

// String returns the tag used by renderers.
func (s Sign) String() string {
	switch s {
	case Increase:
		return "increase"
	case Decrease:
		return "decrease"
	default:
		return "unchanged"
	}
}
