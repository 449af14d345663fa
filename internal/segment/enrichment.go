package segment

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/stats"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
	"github.com/shopspring/decimal"
)

// ErrEnrichmentUnavailable is returned when the original snapshot lacks the
// optional columns a grouping needs.
var ErrEnrichmentUnavailable = errors.New("enrichment columns not present in original snapshot")

// DefaultDateLayouts are tried in order when parsing start and end dates.
var DefaultDateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// originalIndex maps identifiers to their first record in the original
// snapshot, which is where the enrichment columns are read from.
func originalIndex(original *types.Dataset) map[string]types.Record {
	index := make(map[string]types.Record, original.Len())
	for i := 0; i < original.Len(); i++ {
		r := original.At(i)
		if _, ok := index[r.ID]; !ok {
			index[r.ID] = r
		}
	}
	return index
}

// =============================================================================
// CUSTOMER GROUPS
// =============================================================================

// GroupStat aggregates the results of one customer group.
type GroupStat struct {
	Group         string
	Count         int
	MeanChange    decimal.Decimal
	StdDevChange  decimal.NullDecimal
	UpdatedVolume decimal.Decimal
}

// ByCustomerGroup groups results by the customer group of their original
// record, sorted by mean change ascending (ties keep first-seen order).
func ByCustomerGroup(results []types.ComparisonResult, original *types.Dataset) ([]GroupStat, error) {
	if !original.HasField(types.FieldCustomerGroup) {
		return nil, ErrEnrichmentUnavailable
	}

	index := originalIndex(original)

	var order []string
	changes := make(map[string][]decimal.Decimal)
	volume := make(map[string]decimal.Decimal)

	for _, r := range results {
		group := index[r.ID].CustomerGroup
		if _, seen := changes[group]; !seen {
			order = append(order, group)
			volume[group] = decimal.Zero
		}
		changes[group] = append(changes[group], r.Change)
		volume[group] = volume[group].Add(r.UpdatedQuantity)
	}

	groups := make([]GroupStat, 0, len(order))
	for _, g := range order {
		groups = append(groups, GroupStat{
			Group:         g,
			Count:         len(changes[g]),
			MeanChange:    stats.Mean(changes[g]),
			StdDevChange:  stats.SampleStdDev(changes[g]),
			UpdatedVolume: volume[g],
		})
	}

	slices.SortStableFunc(groups, func(a, b GroupStat) int {
		return a.MeanChange.Cmp(b.MeanChange)
	})
	return groups, nil
}

// =============================================================================
// TIMELINE
// =============================================================================

// TimelinePoint is one result placed on the promotion calendar.
type TimelinePoint struct {
	ID           string
	Start        time.Time
	End          time.Time
	DurationDays int
	Change       decimal.Decimal
	Cumulative   decimal.Decimal
}

// MonthlyMean is the mean change of promotions starting in a calendar month.
type MonthlyMean struct {
	Month      time.Month
	Count      int
	MeanChange decimal.Decimal
}

// TimelineAnalysis is the result of Timeline.
type TimelineAnalysis struct {
	// Points are ordered by start date; Cumulative is the running sum.
	Points []TimelinePoint

	// Monthly holds one entry per month with at least one promotion,
	// ordered January to December.
	Monthly []MonthlyMean

	// Skipped counts results whose dates were missing or unparseable.
	Skipped int
}

// Timeline joins results with the start and end dates of their original
// record. Nil or empty layouts fall back to DefaultDateLayouts.
func Timeline(results []types.ComparisonResult, original *types.Dataset, layouts []string) (*TimelineAnalysis, error) {
	if !original.HasField(types.FieldStartDate) || !original.HasField(types.FieldEndDate) {
		return nil, ErrEnrichmentUnavailable
	}
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}

	index := originalIndex(original)
	analysis := &TimelineAnalysis{}

	for _, r := range results {
		rec := index[r.ID]
		start, ok1 := ParseDate(rec.StartDate, layouts)
		end, ok2 := ParseDate(rec.EndDate, layouts)
		if !ok1 || !ok2 {
			analysis.Skipped++
			continue
		}
		analysis.Points = append(analysis.Points, TimelinePoint{
			ID:           r.ID,
			Start:        start,
			End:          end,
			DurationDays: int(end.Sub(start).Hours() / 24),
			Change:       r.Change,
		})
	}

	slices.SortStableFunc(analysis.Points, func(a, b TimelinePoint) int {
		return a.Start.Compare(b.Start)
	})

	running := decimal.Zero
	byMonth := make(map[time.Month][]decimal.Decimal)
	for i := range analysis.Points {
		p := &analysis.Points[i]
		running = running.Add(p.Change)
		p.Cumulative = running
		byMonth[p.Start.Month()] = append(byMonth[p.Start.Month()], p.Change)
	}

	for m := time.January; m <= time.December; m++ {
		if changes, ok := byMonth[m]; ok {
			analysis.Monthly = append(analysis.Monthly, MonthlyMean{
				Month:      m,
				Count:      len(changes),
				MeanChange: stats.Mean(changes),
			})
		}
	}

	return analysis, nil
}

// ParseDate parses a calendar date with day precision using the first
// matching layout.
func ParseDate(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
