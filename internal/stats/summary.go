// =============================================================================
// Promotion Ledger Reconciler - Statistics Aggregator
// =============================================================================
//
// Summarize derives the dashboard statistics of a comparison set. All values
// are pure functions of the results: no hidden state, no mutation, and they
// can be re-derived from a persisted comparison set at any time.
//
// GUARDS:
//   - Empty set: percentages and means are 0, extrema are invalid
//   - Fewer than two results: the standard deviation is invalid
//   - All changes identical: the standard deviation is 0
//
// =============================================================================

package stats

import (
	"math"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
	"github.com/shopspring/decimal"
)

// DefaultSignificanceRatio is the share of the original quantity a change
// must exceed to count as significant.
const DefaultSignificanceRatio = 0.5

// =============================================================================
// SUMMARY STRUCTURE
// =============================================================================

// Summary holds the aggregate statistics of one comparison set.
type Summary struct {
	// Total is the number of results.
	Total int

	// Changed counts results with a non-zero change.
	Changed int

	// ChangedPct is Changed / Total * 100, or 0 for an empty set.
	ChangedPct float64

	// NetChange is the sum of all changes.
	NetChange decimal.Decimal

	// MeanChange is the arithmetic mean of the changes, 0 for an empty set.
	MeanChange decimal.Decimal

	// Sign classification counts. They always add up to Total.
	Increases int
	Decreases int
	Unchanged int

	// MaxIncrease and MaxDecrease are max(change) and min(change).
	// Invalid when Total == 0.
	MaxIncrease decimal.NullDecimal
	MaxDecrease decimal.NullDecimal

	// StdDevChange is the sample standard deviation of the changes.
	// Invalid when Total < 2.
	StdDevChange decimal.NullDecimal

	// SignificanceRatio is the threshold the two counts below were computed with.
	SignificanceRatio float64

	// SignificantIncreases counts change > original * ratio.
	// SignificantDecreases counts change < -original * ratio.
	SignificantIncreases int
	SignificantDecreases int

	// TotalPositiveChange is the sum of positive changes.
	// TotalNegativeChange is the absolute sum of negative changes.
	// NetVolume is TotalPositiveChange - TotalNegativeChange.
	TotalPositiveChange decimal.Decimal
	TotalNegativeChange decimal.Decimal
	NetVolume           decimal.Decimal
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Summarize computes the summary with the default significance ratio.
func Summarize(results []types.ComparisonResult) Summary {
	return SummarizeWithRatio(results, DefaultSignificanceRatio)
}

// SummarizeWithRatio computes the summary with a caller-supplied significance
// ratio.
func SummarizeWithRatio(results []types.ComparisonResult, ratio float64) Summary {
	s := Summary{
		Total:               len(results),
		NetChange:           decimal.Zero,
		MeanChange:          decimal.Zero,
		SignificanceRatio:   ratio,
		TotalPositiveChange: decimal.Zero,
		TotalNegativeChange: decimal.Zero,
		NetVolume:           decimal.Zero,
	}

	threshold := decimal.NewFromFloat(ratio)
	changes := make([]decimal.Decimal, 0, len(results))
	negative := decimal.Zero

	for i, r := range results {
		changes = append(changes, r.Change)
		s.NetChange = s.NetChange.Add(r.Change)

		switch r.Sign() {
		case types.Increase:
			s.Increases++
			s.TotalPositiveChange = s.TotalPositiveChange.Add(r.Change)
		case types.Decrease:
			s.Decreases++
			negative = negative.Add(r.Change)
		default:
			s.Unchanged++
		}

		limit := r.OriginalQuantity.Mul(threshold)
		if r.Change.GreaterThan(limit) {
			s.SignificantIncreases++
		}
		if r.Change.LessThan(limit.Neg()) {
			s.SignificantDecreases++
		}

		if i == 0 || r.Change.GreaterThan(s.MaxIncrease.Decimal) {
			s.MaxIncrease = decimal.NewNullDecimal(r.Change)
		}
		if i == 0 || r.Change.LessThan(s.MaxDecrease.Decimal) {
			s.MaxDecrease = decimal.NewNullDecimal(r.Change)
		}
	}

	s.Changed = s.Increases + s.Decreases
	s.TotalNegativeChange = negative.Abs()
	s.NetVolume = s.TotalPositiveChange.Sub(s.TotalNegativeChange)

	if s.Total > 0 {
		s.ChangedPct = float64(s.Changed) / float64(s.Total) * 100
		s.MeanChange = Mean(changes)
	}
	s.StdDevChange = SampleStdDev(changes)

	return s
}

// =============================================================================
// HELPERS
// =============================================================================

// Mean returns the arithmetic mean, or 0 for no values.
func Mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(decimal.Zero, values...).Div(decimal.NewFromInt(int64(len(values))))
}

// SampleStdDev returns the sample standard deviation (n-1 denominator).
// The result is invalid for fewer than two values.
//
// The mean and the squared deviations are exact decimals; only the square
// root of the variance goes through float64. Identical values therefore
// give exactly 0.
func SampleStdDev(values []decimal.Decimal) decimal.NullDecimal {
	n := len(values)
	if n < 2 {
		return decimal.NullDecimal{}
	}

	mean := Mean(values)

	sq := decimal.Zero
	for _, v := range values {
		d := v.Sub(mean)
		sq = sq.Add(d.Mul(d))
	}

	variance := sq.Div(decimal.NewFromInt(int64(n - 1)))
	if variance.IsZero() {
		return decimal.NewNullDecimal(decimal.Zero)
	}

	return decimal.NewNullDecimal(decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64())))
}
