// =============================================================================
// Promotion Ledger Reconciler - Snapshot Validation
// =============================================================================
//
// This module produces a diagnostic report for one parsed snapshot. It never
// changes what the comparison does; it explains it:
//   - Rows the parser skipped (arity mismatch, blank identifier)
//   - Quantities that were coerced to 0 from non-numeric text
//   - Duplicate identifiers (only the first occurrence is joined)
//   - Start or end dates that cannot be parsed, when those columns exist
//
// ERROR HANDLING:
//   - Findings are collected, not returned as errors
//   - Skipped rows are errors; everything else is a warning
//   - Each finding carries the source line and the offending value
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/csvparser"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/segment"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
)

// Severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule names used in findings.
const (
	RuleMalformedRow    = "malformed_row"
	RuleCoercedQuantity = "coerced_quantity"
	RuleDuplicateID     = "duplicate_id"
	RuleInvalidDate     = "invalid_date"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError is a single finding.
type ValidationError struct {
	Severity Severity

	// Field is the header name the finding is about, if any.
	Field string

	// Value is the offending text.
	Value string

	// Rule is one of the Rule constants.
	Rule string

	// Message is a human-readable explanation.
	Message string

	// Line is the 1-based source line.
	Line int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] line %d: %s", strings.ToUpper(string(e.Severity)), e.Line, e.Message)
	}
	return fmt.Sprintf("[%s] line %d, field '%s': %s (value: '%s')",
		strings.ToUpper(string(e.Severity)),
		e.Line,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the findings for one snapshot.
type ValidationResult struct {
	// Snapshot is the dataset name.
	Snapshot string

	// IsValid is false when any error was found, or any warning with
	// TreatWarningsAsErrors.
	IsValid bool

	// Errors contains all findings, warnings included, in line order per rule.
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int

	// RowsValidated counts the records that were kept by the parser.
	RowsValidated int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// TreatWarningsAsErrors makes any warning invalidate the snapshot.
	TreatWarningsAsErrors bool

	// DateLayouts are used for the start and end date checks. Empty selects
	// segment.DefaultDateLayouts.
	DateLayouts []string
}

// Validator checks parsed snapshots.
type Validator struct {
	options ValidationOptions
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{DateLayouts: segment.DefaultDateLayouts}
}

// NewValidator creates a new Validator instance.
func NewValidator(options ValidationOptions) *Validator {
	if len(options.DateLayouts) == 0 {
		options.DateLayouts = segment.DefaultDateLayouts
	}
	return &Validator{options: options}
}

// ValidateDataset validates ds with the default options.
func ValidateDataset(ds *types.Dataset) *ValidationResult {
	return NewValidator(DefaultValidationOptions()).Validate(ds)
}

// Validate runs every check on ds and returns the collected findings.
func (v *Validator) Validate(ds *types.Dataset) *ValidationResult {
	result := &ValidationResult{
		Snapshot:      ds.Name(),
		IsValid:       true,
		Errors:        make([]*ValidationError, 0),
		RowsValidated: ds.Len(),
	}

	findings := v.checkSkippedRows(ds)
	findings = append(findings, v.checkQuantities(ds)...)
	findings = append(findings, v.checkDuplicates(ds)...)
	findings = append(findings, v.checkDates(ds)...)

	for _, f := range findings {
		result.Errors = append(result.Errors, f)
		if f.Severity == SeverityError {
			result.ErrorCount++
			result.IsValid = false
			continue
		}
		result.WarningCount++
		if v.options.TreatWarningsAsErrors {
			result.IsValid = false
		}
	}

	return result
}

func (v *Validator) checkSkippedRows(ds *types.Dataset) []*ValidationError {
	var errors []*ValidationError
	for _, issue := range ds.Issues() {
		errors = append(errors, &ValidationError{
			Severity: SeverityError,
			Field:    issue.Column,
			Rule:     RuleMalformedRow,
			Message:  "row skipped: " + issue.Error(),
			Line:     issue.Line,
		})
	}
	return errors
}

func (v *Validator) checkQuantities(ds *types.Dataset) []*ValidationError {
	column := ds.Columns().Quantity

	var errors []*ValidationError
	for _, r := range ds.Records() {
		if r.RawQuantity == "" || csvparser.IsQuantity(r.RawQuantity) {
			continue
		}
		errors = append(errors, &ValidationError{
			Severity: SeverityWarning,
			Field:    column,
			Value:    r.RawQuantity,
			Rule:     RuleCoercedQuantity,
			Message:  "quantity is not a number and is treated as 0",
			Line:     r.Line,
		})
	}
	return errors
}

func (v *Validator) checkDuplicates(ds *types.Dataset) []*ValidationError {
	column := ds.Columns().ID
	first := make(map[string]int)

	var errors []*ValidationError
	for _, r := range ds.Records() {
		line, seen := first[r.ID]
		if !seen {
			first[r.ID] = r.Line
			continue
		}
		errors = append(errors, &ValidationError{
			Severity: SeverityWarning,
			Field:    column,
			Value:    r.ID,
			Rule:     RuleDuplicateID,
			Message:  fmt.Sprintf("duplicate identifier, line %d is used for matching", line),
			Line:     r.Line,
		})
	}
	return errors
}

func (v *Validator) checkDates(ds *types.Dataset) []*ValidationError {
	cols := ds.Columns()
	checks := []struct {
		field  string
		header string
		value  func(types.Record) string
	}{
		{types.FieldStartDate, cols.StartDate, func(r types.Record) string { return r.StartDate }},
		{types.FieldEndDate, cols.EndDate, func(r types.Record) string { return r.EndDate }},
	}

	var errors []*ValidationError
	for _, r := range ds.Records() {
		var parsed [2]time.Time
		var ok [2]bool
		for i, c := range checks {
			if !ds.HasField(c.field) {
				continue
			}
			raw := c.value(r)
			parsed[i], ok[i] = segment.ParseDate(raw, v.options.DateLayouts)
			if !ok[i] {
				errors = append(errors, &ValidationError{
					Severity: SeverityWarning,
					Field:    c.header,
					Value:    raw,
					Rule:     RuleInvalidDate,
					Message:  "date cannot be parsed, the promotion is left out of the timeline",
					Line:     r.Line,
				})
			}
		}
		if ok[0] && ok[1] && parsed[1].Before(parsed[0]) {
			errors = append(errors, &ValidationError{
				Severity: SeverityWarning,
				Field:    cols.EndDate,
				Value:    r.EndDate,
				Rule:     RuleInvalidDate,
				Message:  "end date is before start date",
				Line:     r.Line,
			})
		}
	}
	return errors
}

// =============================================================================
// REPORTING
// =============================================================================

// FormatErrors formats findings for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))
	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

// WriteErrorLog writes the findings of results to filePath, creating its
// directory if needed.
func WriteErrorLog(results []*ValidationResult, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation report generated %s\n", time.Now().Format(time.RFC3339)))
	for _, r := range results {
		builder.WriteString(fmt.Sprintf("\n== %s: %d row(s), %d error(s), %d warning(s)\n\n",
			r.Snapshot, r.RowsValidated, r.ErrorCount, r.WarningCount))
		builder.WriteString(FormatErrors(r.Errors))
	}

	if err := os.WriteFile(filePath, []byte(builder.String()), 0644); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
