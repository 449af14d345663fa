package segment

import (
	"fmt"
	"math"
	"slices"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
)

// DefaultBinCount is the number of buckets used by the dashboards.
const DefaultBinCount = 5

// Default labels, ordered from lowest to highest.
var (
	QuantityLabels = []string{"Very Low", "Low", "Medium", "High", "Very High"}
	ChangeLabels   = []string{"Large Decrease", "Small Decrease", "Minimal Change", "Small Increase", "Large Increase"}
)

// Bin is one labeled bucket. Lower and Upper are the interval bounds; a
// bucket holds values in (Lower, Upper], and the first bucket also holds
// Lower itself.
type Bin struct {
	Label   string
	Lower   float64
	Upper   float64
	Members []types.ComparisonResult
}

// Len returns the number of members.
func (b Bin) Len() int { return len(b.Members) }

// =============================================================================
// QUANTITY RANGE BINS (QUANTILES OVER ORIGINAL QUANTITY)
// =============================================================================

// QuantityRangeLabelsFor returns the labels used for k quantity buckets.
func QuantityRangeLabelsFor(k int) []string {
	if k == len(QuantityLabels) {
		return QuantityLabels
	}
	return numberedLabels("Range", k)
}

// QuantityRangeBins partitions results into k quantile buckets over the
// original quantity. When boundaries coincide (heavily duplicated values)
// some buckets stay empty; this is never an error.
func QuantityRangeBins(results []types.ComparisonResult, k int) []Bin {
	return QuantityRangeBinsWithLabels(results, QuantityRangeLabelsFor(k))
}

// QuantityRangeBinsWithLabels is QuantityRangeBins with one bucket per label.
func QuantityRangeBinsWithLabels(results []types.ComparisonResult, labels []string) []Bin {
	edges, assignment := AssignQuantityRanges(results, len(labels))
	return collect(results, labels, edges, assignment)
}

// AssignQuantityRanges returns the k+1 quantile boundaries and, for each
// result, the index of its bucket.
func AssignQuantityRanges(results []types.ComparisonResult, k int) ([]float64, []int) {
	if k <= 0 {
		return nil, nil
	}

	values := make([]float64, len(results))
	for i, r := range results {
		values[i] = r.OriginalQuantity.InexactFloat64()
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	edges := make([]float64, k+1)
	for i := range edges {
		edges[i] = quantile(sorted, float64(i)/float64(k))
	}

	assignment := make([]int, len(values))
	for i, v := range values {
		assignment[i] = bucketOf(v, edges)
	}
	return edges, assignment
}

// quantile is the linearly interpolated empirical quantile of sorted values.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// =============================================================================
// CHANGE MAGNITUDE BINS (FIXED WIDTH OVER THE CHANGE RANGE)
// =============================================================================

// ChangeMagnitudeLabelsFor returns the labels used for k change buckets.
func ChangeMagnitudeLabelsFor(k int) []string {
	if k == len(ChangeLabels) {
		return ChangeLabels
	}
	return numberedLabels("Band", k)
}

// ChangeMagnitudeBins partitions [min(change), max(change)] into k equal-width
// buckets, most negative first. If every change is identical all results go
// to the middle bucket.
func ChangeMagnitudeBins(results []types.ComparisonResult, k int) []Bin {
	return ChangeMagnitudeBinsWithLabels(results, ChangeMagnitudeLabelsFor(k))
}

// ChangeMagnitudeBinsWithLabels is ChangeMagnitudeBins with one bucket per
// label.
func ChangeMagnitudeBinsWithLabels(results []types.ComparisonResult, labels []string) []Bin {
	edges, assignment := AssignChangeMagnitudes(results, len(labels))
	return collect(results, labels, edges, assignment)
}

// AssignChangeMagnitudes returns the k+1 interval boundaries and, for each
// result, the index of its bucket.
func AssignChangeMagnitudes(results []types.ComparisonResult, k int) ([]float64, []int) {
	if k <= 0 {
		return nil, nil
	}

	edges := make([]float64, k+1)
	assignment := make([]int, len(results))
	if len(results) == 0 {
		return edges, assignment
	}

	values := make([]float64, len(results))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, r := range results {
		v := r.Change.InexactFloat64()
		values[i] = v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if lo == hi {
		for i := range edges {
			edges[i] = lo
		}
		for i := range assignment {
			assignment[i] = k / 2
		}
		return edges, assignment
	}

	width := (hi - lo) / float64(k)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	// Pin the last edge so rounding never leaves max outside the range.
	edges[k] = hi

	for i, v := range values {
		assignment[i] = bucketOf(v, edges)
	}
	return edges, assignment
}

// =============================================================================
// HELPERS
// =============================================================================

// bucketOf returns the first bucket j with v <= edges[j+1]. Values above the
// last edge land in the last bucket.
func bucketOf(v float64, edges []float64) int {
	k := len(edges) - 1
	for j := 0; j < k; j++ {
		if v <= edges[j+1] {
			return j
		}
	}
	return k - 1
}

func collect(results []types.ComparisonResult, labels []string, edges []float64, assignment []int) []Bin {
	bins := make([]Bin, len(labels))
	for j, label := range labels {
		bins[j] = Bin{Label: label}
		if j+1 < len(edges) {
			bins[j].Lower = edges[j]
			bins[j].Upper = edges[j+1]
		}
	}
	for i, j := range assignment {
		bins[j].Members = append(bins[j].Members, results[i])
	}
	return bins
}

func numberedLabels(prefix string, k int) []string {
	labels := make([]string, max(k, 0))
	for i := range labels {
		labels[i] = fmt.Sprintf("%s %d", prefix, i+1)
	}
	return labels
}

// LabelsPerResult maps an assignment back to label text, parallel to results.
func LabelsPerResult(labels []string, assignment []int) []string {
	out := make([]string, len(assignment))
	for i, j := range assignment {
		out[i] = labels[j]
	}
	return out
}
