package projection

import (
	"slices"
	"strconv"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/segment"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
	"github.com/shopspring/decimal"
)

// Top-N bounds for the ranking series.
const (
	DefaultTopN = 5
	MaxTopN     = 50
)

// LabelWidth is the number of runes of the description used as a label.
const LabelWidth = 20

// Point is one labeled value of a chart series.
type Point struct {
	Label string  `json:"label"`
	ID    string  `json:"id,omitempty"`
	Value float64 `json:"value"`
	Tag   string  `json:"tag,omitempty"`
}

// Series is a named sequence of points, in drawing order.
type Series struct {
	Name   string  `json:"name"`
	Title  string  `json:"title"`
	Points []Point `json:"points"`
}

// ClampTopN maps a caller-supplied N into the supported range. Zero or
// negative values select DefaultTopN.
func ClampTopN(n int) int {
	switch {
	case n <= 0:
		return DefaultTopN
	case n > MaxTopN:
		return MaxTopN
	}
	return n
}

// Label truncates a description to LabelWidth runes.
func Label(description string) string {
	r := []rune(description)
	if len(r) > LabelWidth {
		return string(r[:LabelWidth])
	}
	return description
}

// PercentChange returns change / original * 100. An original quantity of zero
// yields 0.
func PercentChange(r types.ComparisonResult) float64 {
	if r.OriginalQuantity.IsZero() {
		return 0
	}
	return r.Change.Div(r.OriginalQuantity).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// =============================================================================
// RANKINGS
// =============================================================================

// rank sorts a copy of results by key descending (ties keep result order)
// and returns the first n that pass keep.
func rank(results []types.ComparisonResult, n int, keep func(types.ComparisonResult) bool, key func(types.ComparisonResult) decimal.Decimal) []types.ComparisonResult {
	picked := make([]types.ComparisonResult, 0, len(results))
	for _, r := range results {
		if keep == nil || keep(r) {
			picked = append(picked, r)
		}
	}
	slices.SortStableFunc(picked, func(a, b types.ComparisonResult) int {
		return key(b).Cmp(key(a))
	})
	return picked[:min(ClampTopN(n), len(picked))]
}

func changePoint(r types.ComparisonResult, value float64) Point {
	return Point{Label: Label(r.Description), ID: r.ID, Value: value, Tag: r.Sign().String()}
}

// TopAbsoluteChanges returns the n results with the largest |change|. Values
// keep their sign.
func TopAbsoluteChanges(results []types.ComparisonResult, n int) Series {
	s := Series{Name: "top_absolute", Title: "Top " + strconv.Itoa(ClampTopN(n)) + " Absolute Changes"}
	for _, r := range rank(results, n, nil, func(r types.ComparisonResult) decimal.Decimal { return r.Change.Abs() }) {
		s.Points = append(s.Points, changePoint(r, r.Change.InexactFloat64()))
	}
	return s
}

// TopIncreases returns the n largest positive changes, largest first.
func TopIncreases(results []types.ComparisonResult, n int) Series {
	s := Series{Name: "top_increases", Title: "Top " + strconv.Itoa(ClampTopN(n)) + " Increases"}
	increase := func(r types.ComparisonResult) bool { return r.Sign() == types.Increase }
	for _, r := range rank(results, n, increase, func(r types.ComparisonResult) decimal.Decimal { return r.Change }) {
		s.Points = append(s.Points, changePoint(r, r.Change.InexactFloat64()))
	}
	return s
}

// TopDecreases returns the n most negative changes, most negative first.
func TopDecreases(results []types.ComparisonResult, n int) Series {
	s := Series{Name: "top_decreases", Title: "Top " + strconv.Itoa(ClampTopN(n)) + " Decreases"}
	decrease := func(r types.ComparisonResult) bool { return r.Sign() == types.Decrease }
	for _, r := range rank(results, n, decrease, func(r types.ComparisonResult) decimal.Decimal { return r.Change.Neg() }) {
		s.Points = append(s.Points, changePoint(r, r.Change.InexactFloat64()))
	}
	return s
}

// TopPercentageChanges returns the n results with the largest |percent
// change|. Values are the signed percentage.
func TopPercentageChanges(results []types.ComparisonResult, n int) Series {
	s := Series{Name: "top_percentage", Title: "Top " + strconv.Itoa(ClampTopN(n)) + " Percentage Changes"}
	key := func(r types.ComparisonResult) decimal.Decimal {
		return decimal.NewFromFloat(PercentChange(r)).Abs()
	}
	for _, r := range rank(results, n, nil, key) {
		s.Points = append(s.Points, changePoint(r, PercentChange(r)))
	}
	return s
}

// TopVolumeImpact ranks results by change * original quantity, largest first.
func TopVolumeImpact(results []types.ComparisonResult, n int) Series {
	s := Series{Name: "top_volume_impact", Title: "Top " + strconv.Itoa(ClampTopN(n)) + " Volume Impact"}
	key := func(r types.ComparisonResult) decimal.Decimal { return r.Change.Mul(r.OriginalQuantity) }
	for _, r := range rank(results, n, nil, key) {
		s.Points = append(s.Points, changePoint(r, key(r).InexactFloat64()))
	}
	return s
}

// =============================================================================
// DISTRIBUTIONS
// =============================================================================

// CumulativeChange sorts results by change ascending and returns the running
// sum. Labels are 1-based positions.
func CumulativeChange(results []types.ComparisonResult) Series {
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b types.ComparisonResult) int {
		return a.Change.Cmp(b.Change)
	})

	s := Series{Name: "cumulative_change", Title: "Cumulative Change Impact"}
	running := decimal.Zero
	for i, r := range sorted {
		running = running.Add(r.Change)
		s.Points = append(s.Points, Point{Label: strconv.Itoa(i + 1), ID: r.ID, Value: running.InexactFloat64()})
	}
	return s
}

// SignDistribution counts increases, decreases and unchanged results.
func SignDistribution(results []types.ComparisonResult) Series {
	var inc, dec, flat int
	for _, r := range results {
		switch r.Sign() {
		case types.Increase:
			inc++
		case types.Decrease:
			dec++
		default:
			flat++
		}
	}
	return Series{
		Name:  "sign_distribution",
		Title: "Change Distribution",
		Points: []Point{
			{Label: "Increases", Value: float64(inc), Tag: types.Increase.String()},
			{Label: "Decreases", Value: float64(dec), Tag: types.Decrease.String()},
			{Label: "No Change", Value: float64(flat), Tag: types.Unchanged.String()},
		},
	}
}

// BinDistribution counts the members of each bin, in bin order.
func BinDistribution(name, title string, bins []segment.Bin) Series {
	s := Series{Name: name, Title: title}
	for _, b := range bins {
		s.Points = append(s.Points, Point{Label: b.Label, Value: float64(b.Len())})
	}
	return s
}

// BinMeanChange is the mean change of each bin; empty bins have value 0.
func BinMeanChange(name, title string, bins []segment.Bin) Series {
	s := Series{Name: name, Title: title}
	for _, b := range bins {
		sum := decimal.Zero
		for _, r := range b.Members {
			sum = sum.Add(r.Change)
		}
		mean := 0.0
		if b.Len() > 0 {
			mean = sum.Div(decimal.NewFromInt(int64(b.Len()))).InexactFloat64()
		}
		s.Points = append(s.Points, Point{Label: b.Label, Value: mean})
	}
	return s
}

// =============================================================================
// ENRICHMENT SERIES
// =============================================================================

// CustomerSeries returns the mean change, updated volume and count per
// customer group, in the order of groups.
func CustomerSeries(groups []segment.GroupStat) []Series {
	mean := Series{Name: "customer_mean_change", Title: "Average Change by Customer Group"}
	volume := Series{Name: "customer_volume", Title: "Volume Distribution by Customer"}
	count := Series{Name: "customer_count", Title: "Promotions by Customer Group"}

	for _, g := range groups {
		mean.Points = append(mean.Points, Point{Label: g.Group, Value: g.MeanChange.InexactFloat64()})
		volume.Points = append(volume.Points, Point{Label: g.Group, Value: g.UpdatedVolume.InexactFloat64()})
		count.Points = append(count.Points, Point{Label: g.Group, Value: float64(g.Count)})
	}
	return []Series{mean, volume, count}
}

// TimelineSeries returns the cumulative change over start dates, the
// duration of each promotion and the mean change per start month.
func TimelineSeries(tl *segment.TimelineAnalysis) []Series {
	cumulative := Series{Name: "timeline_cumulative", Title: "Cumulative Changes Over Time"}
	duration := Series{Name: "timeline_duration", Title: "Promotion Duration (days)"}
	monthly := Series{Name: "timeline_monthly", Title: "Average Change by Month"}
	if tl == nil {
		return []Series{cumulative, duration, monthly}
	}

	for _, p := range tl.Points {
		cumulative.Points = append(cumulative.Points, Point{Label: p.Start.Format("2006-01-02"), ID: p.ID, Value: p.Cumulative.InexactFloat64()})
		duration.Points = append(duration.Points, Point{Label: p.ID, ID: p.ID, Value: float64(p.DurationDays)})
	}
	for _, m := range tl.Monthly {
		monthly.Points = append(monthly.Points, Point{Label: m.Month.String(), Value: m.MeanChange.InexactFloat64()})
	}
	return []Series{cumulative, duration, monthly}
}
