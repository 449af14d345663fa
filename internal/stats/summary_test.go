package stats

import (
	"testing"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(id string, original, updated float64) types.ComparisonResult {
	return types.NewComparisonResult(id, "", decimal.NewFromFloat(original), decimal.NewFromFloat(updated))
}

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestSummarize_Scenario(t *testing.T) {
	s := Summarize([]types.ComparisonResult{
		result("A", 100, 120),
		result("B", 50, 50),
	})

	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Changed)
	assert.InDelta(t, 50.0, s.ChangedPct, 1e-9)
	assert.True(t, s.NetChange.Equal(d(20)))
	assert.True(t, s.MeanChange.Equal(d(10)))
	assert.Equal(t, 1, s.Increases)
	assert.Equal(t, 0, s.Decreases)
	assert.Equal(t, 1, s.Unchanged)
	assert.True(t, s.MaxIncrease.Valid)
	assert.True(t, s.MaxIncrease.Decimal.Equal(d(20)))
	assert.True(t, s.MaxDecrease.Decimal.Equal(d(0)))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0.0, s.ChangedPct)
	assert.True(t, s.MeanChange.IsZero())
	assert.False(t, s.MaxIncrease.Valid)
	assert.False(t, s.MaxDecrease.Valid)
	assert.False(t, s.StdDevChange.Valid)
	assert.True(t, s.NetVolume.IsZero())
}

func TestSummarize_SingleResultHasNoStdDev(t *testing.T) {
	s := Summarize([]types.ComparisonResult{result("A", 1, 5)})

	assert.False(t, s.StdDevChange.Valid)
	assert.True(t, s.MaxIncrease.Decimal.Equal(d(4)))
	assert.True(t, s.MaxDecrease.Decimal.Equal(d(4)))
}

func TestSummarize_AllUnchanged(t *testing.T) {
	s := Summarize([]types.ComparisonResult{
		result("A", 10, 10),
		result("B", 20, 20),
		result("C", 30, 30),
	})

	require.True(t, s.StdDevChange.Valid, "stddev is 0, not undefined")
	assert.True(t, s.StdDevChange.Decimal.IsZero())
	assert.True(t, s.MaxIncrease.Decimal.IsZero())
	assert.True(t, s.MaxDecrease.Decimal.IsZero())
	assert.Equal(t, 0, s.Changed)
	assert.Equal(t, 3, s.Unchanged)
}

func TestSummarize_IdenticalFractionalChanges(t *testing.T) {
	s := Summarize([]types.ComparisonResult{
		result("A", 1, 1.1),
		result("B", 1, 1.1),
		result("C", 1, 1.1),
	})

	require.True(t, s.MeanChange.Equal(d(0.1)))
	require.True(t, s.StdDevChange.Valid)
	assert.True(t, s.StdDevChange.Decimal.IsZero(), "got %s", s.StdDevChange.Decimal)
}

func TestSampleStdDev(t *testing.T) {
	assert.False(t, SampleStdDev([]decimal.Decimal{d(1)}).Valid)

	std := SampleStdDev([]decimal.Decimal{d(0.1), d(0.1), d(0.1), d(0.1)})
	require.True(t, std.Valid)
	assert.True(t, std.Decimal.IsZero())

	// Deviations of +-0.5 around 1.5: variance 0.5.
	std = SampleStdDev([]decimal.Decimal{d(1), d(2)})
	require.True(t, std.Valid)
	assert.InDelta(t, 0.7071068, std.Decimal.InexactFloat64(), 1e-6)
}

func TestSummarize_StdDev(t *testing.T) {
	// Changes 2, 4, 4, 4, 5, 5, 7, 9: sample variance 32/7.
	var results []types.ComparisonResult
	for i, c := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		results = append(results, result(string(rune('A'+i)), 0, c))
	}

	s := Summarize(results)
	require.True(t, s.StdDevChange.Valid)
	assert.InDelta(t, 2.1380899, s.StdDevChange.Decimal.InexactFloat64(), 1e-6)
}

func TestSummarize_SignificanceAndVolume(t *testing.T) {
	results := []types.ComparisonResult{
		result("up-big", 100, 160),  // +60 > 50
		result("up-edge", 100, 150), // +50 is not > 50
		result("down-big", 100, 40), // -60 < -50
		result("down-edge", 10, 5),  // -5 is not < -5
		result("zero-orig", 0, 1),   // +1 > 0
		result("flat", 7, 7),
	}

	s := Summarize(results)
	assert.Equal(t, 2, s.SignificantIncreases)
	assert.Equal(t, 1, s.SignificantDecreases)
	assert.True(t, s.TotalPositiveChange.Equal(d(111)))
	assert.True(t, s.TotalNegativeChange.Equal(d(65)))
	assert.True(t, s.NetVolume.Equal(d(46)))
	assert.True(t, s.MaxIncrease.Decimal.Equal(d(60)))
	assert.True(t, s.MaxDecrease.Decimal.Equal(d(-60)))
}

func TestSummarizeWithRatio(t *testing.T) {
	results := []types.ComparisonResult{result("A", 100, 130)}

	assert.Equal(t, 0, Summarize(results).SignificantIncreases)
	assert.Equal(t, 1, SummarizeWithRatio(results, 0.25).SignificantIncreases)
	assert.Equal(t, 0.25, SummarizeWithRatio(results, 0.25).SignificanceRatio)
}

func TestSummarize_Consistency(t *testing.T) {
	results := []types.ComparisonResult{
		result("A", 1, 9),
		result("B", 8, 2.5),
		result("C", 3, 3),
		result("D", 0.1, 0.3),
		result("E", 40, -2),
	}
	s := Summarize(results)

	assert.Equal(t, s.Total, s.Increases+s.Decreases+s.Unchanged)
	assert.True(t, s.TotalPositiveChange.Sub(s.TotalNegativeChange).Equal(s.NetVolume))

	sum := decimal.Zero
	for _, r := range results {
		sum = sum.Add(r.Change)
	}
	assert.True(t, s.NetChange.Equal(sum))
	assert.True(t, s.NetVolume.Equal(s.NetChange))
}

func TestSummarize_DoesNotMutate(t *testing.T) {
	results := []types.ComparisonResult{result("A", 1, 2), result("B", 3, 1)}
	before := append([]types.ComparisonResult(nil), results...)

	_ = Summarize(results)
	assert.Equal(t, before, results)
}

func TestMean(t *testing.T) {
	assert.True(t, Mean(nil).IsZero())
	assert.True(t, Mean([]decimal.Decimal{d(1), d(2), d(6)}).Equal(d(3)))
}
