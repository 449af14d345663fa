package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/csvparser"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, text string) *types.Dataset {
	t.Helper()
	ds, err := csvparser.ParseNamed("original", text, types.DefaultColumns(), csvparser.DefaultSettings())
	require.NoError(t, err)
	return ds
}

func rules(r *ValidationResult) []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Rule
	}
	return out
}

func TestValidateDataset_Clean(t *testing.T) {
	r := ValidateDataset(parse(t, "Td No\tBalance Qty\nA\t1\nB\t2\n"))

	assert.True(t, r.IsValid)
	assert.Empty(t, r.Errors)
	assert.Equal(t, 2, r.RowsValidated)
	assert.Equal(t, "original", r.Snapshot)
	assert.Equal(t, "No validation errors.", FormatErrors(r.Errors))
}

func TestValidateDataset_Findings(t *testing.T) {
	text := "Td No\tBalance Qty\n" +
		"A\t1\n" +
		"B\tabc\n" +
		"A\t5\n" +
		"C\n" +
		"D\t\n"

	r := ValidateDataset(parse(t, text))

	assert.False(t, r.IsValid)
	assert.Equal(t, 1, r.ErrorCount)
	assert.Equal(t, 2, r.WarningCount)
	assert.Equal(t, []string{RuleMalformedRow, RuleCoercedQuantity, RuleDuplicateID}, rules(r))

	assert.Equal(t, 5, r.Errors[0].Line)
	assert.Equal(t, "abc", r.Errors[1].Value)
	assert.Equal(t, 3, r.Errors[1].Line)
	assert.Equal(t, 4, r.Errors[2].Line)
	assert.Contains(t, r.Errors[2].Message, "line 2")
}

func TestValidate_WarningsOnly(t *testing.T) {
	ds := parse(t, "Td No\tBalance Qty\nA\t1\nA\t2\n")

	assert.True(t, ValidateDataset(ds).IsValid)

	strict := NewValidator(ValidationOptions{TreatWarningsAsErrors: true}).Validate(ds)
	assert.False(t, strict.IsValid)
	assert.Equal(t, 0, strict.ErrorCount)
}

func TestValidate_Dates(t *testing.T) {
	ds := parse(t, "Td No\tBalance Qty\tStart Date\tEnd Date\n"+
		"A\t1\t2024-01-01\t2024-01-31\n"+
		"B\t1\tsoon\t2024-01-31\n"+
		"C\t1\t2024-02-10\t2024-02-01\n")

	r := ValidateDataset(ds)
	require.Len(t, r.Errors, 2)
	assert.Equal(t, RuleInvalidDate, r.Errors[0].Rule)
	assert.Equal(t, "Start Date", r.Errors[0].Field)
	assert.Equal(t, "soon", r.Errors[0].Value)
	assert.Contains(t, r.Errors[1].Message, "before start date")
	assert.True(t, r.IsValid)
}

func TestValidationError_Error(t *testing.T) {
	e := &ValidationError{Severity: SeverityWarning, Field: "Balance Qty", Value: "x", Message: "bad", Line: 3}
	assert.Equal(t, "[WARNING] line 3, field 'Balance Qty': bad (value: 'x')", e.Error())

	e = &ValidationError{Severity: SeverityError, Message: "row skipped", Line: 7}
	assert.Equal(t, "[ERROR] line 7: row skipped", e.Error())
}

func TestWriteErrorLog(t *testing.T) {
	r := ValidateDataset(parse(t, "Td No\tBalance Qty\nA\tx\n"))
	path := filepath.Join(t.TempDir(), "logs", "validation.log")

	require.NoError(t, WriteErrorLog([]*ValidationResult{r}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "== original: 1 row(s), 0 error(s), 1 warning(s)")
	assert.Contains(t, string(data), "treated as 0")
}
