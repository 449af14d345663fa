package projection

import (
	"testing"
	"time"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/segment"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/stats"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(id, desc string, original, updated float64) types.ComparisonResult {
	return types.NewComparisonResult(id, desc, decimal.NewFromFloat(original), decimal.NewFromFloat(updated))
}

func pointIDs(s Series) []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.ID
	}
	return out
}

func values(s Series) []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

func sample() []types.ComparisonResult {
	return []types.ComparisonResult{
		result("A", "Alpha", 100, 120),
		result("B", "Bravo", 50, 50),
		result("C", "Charlie", 10, 3),
		result("D", "Delta", 0, 8),
		result("E", "Echo", 200, 150),
	}
}

// =============================================================================
// TABLE
// =============================================================================

func TestTableRows(t *testing.T) {
	rows := TableRows(sample()[:3])
	require.Len(t, rows, 3)

	assert.Equal(t, TableRow{ID: "A", Description: "Alpha", Original: "100", Updated: "120", Change: "+20", Tag: "increase"}, rows[0])
	assert.Equal(t, "+0", rows[1].Change)
	assert.Equal(t, "unchanged", rows[1].Tag)
	assert.Equal(t, "-7", rows[2].Change)
	assert.Equal(t, "decrease", rows[2].Tag)
}

func TestFormatQuantity_BankersRounding(t *testing.T) {
	assert.Equal(t, "2", FormatQuantity(decimal.RequireFromString("2.5")))
	assert.Equal(t, "4", FormatQuantity(decimal.RequireFromString("3.5")))
	assert.Equal(t, "-0", FormatChange(decimal.RequireFromString("-0.4")))
	assert.Equal(t, "+1", FormatChange(decimal.RequireFromString("0.6")))
}

// =============================================================================
// SERIES
// =============================================================================

func TestClampTopN(t *testing.T) {
	assert.Equal(t, DefaultTopN, ClampTopN(0))
	assert.Equal(t, DefaultTopN, ClampTopN(-3))
	assert.Equal(t, 1, ClampTopN(1))
	assert.Equal(t, MaxTopN, ClampTopN(500))
}

func TestTopSeries(t *testing.T) {
	results := sample()

	abs := TopAbsoluteChanges(results, 3)
	assert.Equal(t, []string{"E", "A", "D"}, pointIDs(abs))
	assert.Equal(t, []float64{-50, 20, 8}, values(abs))
	assert.Equal(t, "Top 3 Absolute Changes", abs.Title)

	assert.Equal(t, []string{"A", "D"}, pointIDs(TopIncreases(results, 5)))
	assert.Equal(t, []string{"E", "C"}, pointIDs(TopDecreases(results, 5)))

	pct := TopPercentageChanges(results, 2)
	assert.Equal(t, []string{"C", "E"}, pointIDs(pct))
	assert.InDelta(t, -70.0, pct.Points[0].Value, 1e-9)

	vol := TopVolumeImpact(results, 2)
	assert.Equal(t, []string{"A", "B"}, pointIDs(vol), "B and D tie at 0; result order wins")
	assert.Equal(t, []float64{2000, 0}, values(vol))
}

func TestTopSeries_TiesKeepOrder(t *testing.T) {
	results := []types.ComparisonResult{
		result("X", "", 0, 5),
		result("Y", "", 0, 5),
		result("Z", "", 0, -5),
	}
	assert.Equal(t, []string{"X", "Y", "Z"}, pointIDs(TopAbsoluteChanges(results, 5)))
}

func TestTopSeries_DoesNotMutate(t *testing.T) {
	results := sample()
	before := append([]types.ComparisonResult(nil), results...)

	_ = TopAbsoluteChanges(results, 5)
	_ = CumulativeChange(results)
	assert.Equal(t, before, results)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "short", Label("short"))
	assert.Equal(t, "Summer Promo Long Na", Label("Summer Promo Long Name 2024"))
	assert.Equal(t, "ÄÖÜäöüßÄÖÜäöüßÄÖÜäö", Label("ÄÖÜäöüßÄÖÜäöüßÄÖÜäö"))
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 0.0, PercentChange(result("A", "", 0, 10)))
	assert.InDelta(t, 20.0, PercentChange(result("A", "", 100, 120)), 1e-9)
}

func TestCumulativeChange(t *testing.T) {
	s := CumulativeChange(sample())
	assert.Equal(t, []string{"E", "C", "B", "D", "A"}, pointIDs(s))
	assert.Equal(t, []float64{-50, -57, -57, -49, -29}, values(s))
	assert.Equal(t, "1", s.Points[0].Label)
}

func TestSignDistribution(t *testing.T) {
	s := SignDistribution(sample())
	assert.Equal(t, []float64{2, 2, 1}, values(s))
	assert.Equal(t, "No Change", s.Points[2].Label)
}

func TestBinSeries(t *testing.T) {
	bins := segment.ChangeMagnitudeBins([]types.ComparisonResult{
		result("A", "", 0, -10),
		result("B", "", 0, 10),
		result("C", "", 0, 8),
	}, 5)

	dist := BinDistribution("change_bins", "Change Categories", bins)
	assert.Equal(t, []float64{1, 0, 0, 0, 2}, values(dist))
	assert.Equal(t, "Large Decrease", dist.Points[0].Label)

	mean := BinMeanChange("change_mean", "Mean", bins)
	assert.Equal(t, []float64{-10, 0, 0, 0, 9}, values(mean))
}

func TestCustomerSeries(t *testing.T) {
	series := CustomerSeries([]segment.GroupStat{
		{Group: "Retail", Count: 2, MeanChange: decimal.NewFromInt(-3), UpdatedVolume: decimal.NewFromInt(40)},
		{Group: "Online", Count: 1, MeanChange: decimal.NewFromInt(5), UpdatedVolume: decimal.NewFromInt(7)},
	})
	require.Len(t, series, 3)
	assert.Equal(t, []float64{-3, 5}, values(series[0]))
	assert.Equal(t, []float64{40, 7}, values(series[1]))
	assert.Equal(t, []float64{2, 1}, values(series[2]))
	assert.Equal(t, "Retail", series[0].Points[0].Label)
}

func TestTimelineSeries(t *testing.T) {
	tl := &segment.TimelineAnalysis{
		Points: []segment.TimelinePoint{
			{ID: "A", Start: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), DurationDays: 30, Change: decimal.NewFromInt(-10), Cumulative: decimal.NewFromInt(-10)},
			{ID: "B", Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), DurationDays: 1, Change: decimal.NewFromInt(20), Cumulative: decimal.NewFromInt(10)},
		},
		Monthly: []segment.MonthlyMean{
			{Month: time.January, Count: 1, MeanChange: decimal.NewFromInt(-10)},
			{Month: time.March, Count: 1, MeanChange: decimal.NewFromInt(20)},
		},
	}

	series := TimelineSeries(tl)
	require.Len(t, series, 3)
	assert.Equal(t, "2024-01-05", series[0].Points[0].Label)
	assert.Equal(t, []float64{-10, 10}, values(series[0]))
	assert.Equal(t, []float64{30, 1}, values(series[1]))
	assert.Equal(t, "March", series[2].Points[1].Label)

	assert.Len(t, TimelineSeries(nil), 3)
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestSummaryLines(t *testing.T) {
	lines := SummaryLines(stats.Summarize([]types.ComparisonResult{
		result("A", "", 100, 120),
		result("B", "", 50, 50),
	}))

	assert.Equal(t, "Total Promotions Analyzed: 2", lines[0])
	assert.Equal(t, "Promotions with Changes: 1 (50.0%)", lines[1])
	assert.Equal(t, "Total Net Change in Balance: 20", lines[2])
	assert.Equal(t, "Average Change per Promotion: 10.0", lines[3])
	assert.Contains(t, lines, "Increases: 1 promos")
	assert.Contains(t, lines, "Largest Increase: 20")
	assert.Contains(t, lines, "Largest Decrease: 0")
}

func TestSummaryLines_Empty(t *testing.T) {
	assert.Equal(t, []string{"No data to analyze"}, SummaryLines(stats.Summarize(nil)))
}

func TestSummaryLines_SingleResult(t *testing.T) {
	lines := SummaryLines(stats.Summarize([]types.ComparisonResult{result("A", "", 1, 2)}))
	assert.Equal(t, "Standard Deviation: n/a", lines[len(lines)-1])
}

func TestFormatNumber_Grouping(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatNumber(decimal.NewFromInt(1234567), 0))
	assert.Equal(t, "-12,000", FormatNumber(decimal.NewFromInt(-12000), 0))
	assert.Equal(t, "12,345", FormatCount(12345))
}

func TestAnalysisItems(t *testing.T) {
	items := AnalysisItems(stats.Summarize([]types.ComparisonResult{
		result("A", "", 100, 160),
		result("B", "", 100, 40),
		result("C", "", 10, 12),
	}))

	require.Len(t, items, 5)
	assert.Equal(t, AnalysisItem{Category: "Significant Changes", Details: "Promotions with >50% increase", Value: "1"}, items[0])
	assert.Equal(t, "1", items[1].Value)
	assert.Equal(t, "62", items[2].Value)
	assert.Equal(t, "60", items[3].Value)
	assert.Equal(t, "2", items[4].Value)
	assert.Empty(t, items[4].Category)
}

func TestSummaryMetrics_Order(t *testing.T) {
	metrics := SummaryMetrics(stats.Summarize(sample()))

	var names []string
	for _, m := range metrics {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{
		"Total Promotions", "Total Changes", "Increases", "Decreases", "No Change",
		"Average Change", "Largest Increase", "Largest Decrease",
		"Net Change", "Standard Deviation", "Significant Increases", "Significant Decreases",
		"Total Volume of Increases", "Total Volume of Decreases", "Net Volume Change",
	}, names)

	assert.True(t, metrics[0].Value.Decimal.Equal(decimal.NewFromInt(5)))
	assert.True(t, metrics[1].Value.Decimal.Equal(decimal.NewFromInt(4)))
	assert.True(t, metrics[6].Value.Decimal.Equal(decimal.NewFromInt(20)))
	assert.True(t, metrics[7].Value.Decimal.Equal(decimal.NewFromInt(-50)))
}

func TestSummaryMetrics_Empty(t *testing.T) {
	metrics := SummaryMetrics(stats.Summarize(nil))
	assert.False(t, metrics[6].Value.Valid)
	assert.False(t, metrics[9].Value.Valid)
	assert.True(t, metrics[5].Value.Valid)
	assert.True(t, metrics[5].Value.Decimal.IsZero())
}
