package csvparser

import (
	"errors"
	"testing"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Td No\tTd Desc\tBalance Qty\tCustomer Group\n"

func TestParse(t *testing.T) {
	text := header +
		"A\tSpring promo\t100\tRetail\n" +
		"B\tSummer promo\t 50 \tWholesale\n"

	ds, err := Parse(text, types.DefaultColumns())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	a := ds.At(0)
	assert.Equal(t, "A", a.ID)
	assert.Equal(t, "Spring promo", a.Description)
	assert.True(t, a.Quantity.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "Retail", a.CustomerGroup)
	assert.Equal(t, 2, a.Line)

	b := ds.At(1)
	assert.True(t, b.Quantity.Equal(decimal.NewFromInt(50)), "quantity is trimmed before parsing")
	assert.Empty(t, ds.Issues())

	assert.True(t, ds.HasField(types.FieldCustomerGroup))
	assert.False(t, ds.HasField(types.FieldStartDate))
}

func TestParse_ForgivingQuantity(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want decimal.Decimal
	}{
		{name: "non numeric", raw: "abc", want: decimal.Zero},
		{name: "blank", raw: "", want: decimal.Zero},
		{name: "thousands separator", raw: "1,000", want: decimal.Zero},
		{name: "decimal", raw: "12.5", want: decimal.RequireFromString("12.5")},
		{name: "negative", raw: "-3", want: decimal.NewFromInt(-3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Parse("Td No\tBalance Qty\nX\t"+tt.raw+"\n", types.DefaultColumns())
			require.NoError(t, err)
			require.Equal(t, 1, ds.Len(), "row must be retained")
			assert.True(t, ds.At(0).Quantity.Equal(tt.want), "got %s", ds.At(0).Quantity)
			assert.Equal(t, tt.raw, ds.At(0).RawQuantity)
		})
	}
}

func TestParse_MissingColumn(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		column string
	}{
		{name: "no id", text: "Td Desc\tBalance Qty\nx\t1\n", column: "Td No"},
		{name: "no quantity", text: "Td No\tTd Desc\nA\tx\n", column: "Balance Qty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text, types.DefaultColumns())
			require.Error(t, err)
			assert.True(t, types.IsMissingColumn(err))

			var pe *types.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.column, pe.Column)
		})
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t\n"} {
		_, err := Parse(text, types.DefaultColumns())
		assert.ErrorIs(t, err, types.ErrEmptyInput, "input %q", text)
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	ds, err := Parse("Td No\tBalance Qty\n", types.DefaultColumns())
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
}

func TestParse_MalformedRowsAreSkipped(t *testing.T) {
	text := header +
		"A\tok\t1\tRetail\n" +
		"B\ttoo few\t2\n" +
		"C\ttoo\tmany\tfields\there\n" +
		"\tblank id\t3\tRetail\n" +
		"D\tok\t4\tRetail\n"

	ds, err := Parse(text, types.DefaultColumns())
	require.NoError(t, err)

	ids := make([]string, 0, ds.Len())
	for _, r := range ds.Records() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"A", "D"}, ids)

	issues := ds.Issues()
	require.Len(t, issues, 3)
	assert.Equal(t, types.MalformedRow, issues[0].Kind)
	assert.Equal(t, 3, issues[0].Line)
	assert.Equal(t, 4, issues[0].Expected)
	assert.Equal(t, 3, issues[0].Got)
	assert.Equal(t, 4, issues[1].Line)
	assert.Equal(t, "blank identifier", issues[2].Reason)
	assert.Contains(t, issues[0].Error(), "line 3")
}

func TestParse_BlankLinesAndLineEndings(t *testing.T) {
	text := "\r\nTd No\tBalance Qty\r\n\r\nA\t1\r\n   \r\n\t\r\nB\t2\r\n"

	ds, err := Parse(text, types.DefaultColumns())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "A", ds.At(0).ID)
	assert.Equal(t, 4, ds.At(0).Line)
	assert.Equal(t, "B", ds.At(1).ID)
}

func TestParse_OrderAndDuplicatesPreserved(t *testing.T) {
	text := "Td No\tBalance Qty\nZ\t1\nA\t2\nZ\t3\n"

	ds, err := Parse(text, types.DefaultColumns())
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, "Z", ds.At(0).ID)
	assert.Equal(t, "A", ds.At(1).ID)
	assert.Equal(t, "Z", ds.At(2).ID)
}

func TestParseNamed_CustomColumnsAndDelimiter(t *testing.T) {
	columns := types.Columns{ID: "promo", Quantity: "qty", Description: "label"}
	text := "promo|label|qty\nP1|first|7\n"

	ds, err := ParseNamed("updated", text, columns, Settings{Delimiter: "pipe"})
	require.NoError(t, err)
	assert.Equal(t, "updated", ds.Name())
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, "first", ds.At(0).Description)
	assert.True(t, ds.At(0).Quantity.Equal(decimal.NewFromInt(7)))
}

func TestParse_DescriptionOptional(t *testing.T) {
	ds, err := Parse("Td No\tBalance Qty\nA\t1\n", types.DefaultColumns())
	require.NoError(t, err)
	assert.Equal(t, "", ds.At(0).Description)
	assert.False(t, ds.HasField(types.FieldDescription))
}

func TestDatasetIsImmutable(t *testing.T) {
	ds, err := Parse("Td No\tBalance Qty\nA\t1\n", types.DefaultColumns())
	require.NoError(t, err)

	records := ds.Records()
	records[0].ID = "mutated"
	assert.Equal(t, "A", ds.At(0).ID)
}

func TestResolveDelimiter(t *testing.T) {
	assert.Equal(t, "\t", resolveDelimiter(""))
	assert.Equal(t, "\t", resolveDelimiter("\\t"))
	assert.Equal(t, "\t", resolveDelimiter("tab"))
	assert.Equal(t, "|", resolveDelimiter("pipe"))
	assert.Equal(t, ",", resolveDelimiter(","))
}
