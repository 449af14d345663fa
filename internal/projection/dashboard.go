package projection

import (
	"fmt"
	"strconv"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/stats"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is shown for statistics that are undefined for the set.
const NotAvailable = "n/a"

var printer = message.NewPrinter(language.English)

// FormatNumber renders a decimal with thousands grouping and a fixed number
// of fraction digits.
func FormatNumber(d decimal.Decimal, places int) string {
	return printer.Sprintf("%."+strconv.Itoa(places)+"f", d.InexactFloat64())
}

// FormatCount renders an integer with thousands grouping.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

func formatNull(d decimal.NullDecimal, places int) string {
	if !d.Valid {
		return NotAvailable
	}
	return FormatNumber(d.Decimal, places)
}

// =============================================================================
// DASHBOARD TEXT
// =============================================================================

// SummaryLines returns the summary panel, one line per entry. Blank entries
// separate the sections.
func SummaryLines(s stats.Summary) []string {
	if s.Total == 0 {
		return []string{"No data to analyze"}
	}
	return []string{
		"Total Promotions Analyzed: " + FormatCount(s.Total),
		fmt.Sprintf("Promotions with Changes: %s (%.1f%%)", FormatCount(s.Changed), s.ChangedPct),
		"Total Net Change in Balance: " + FormatNumber(s.NetChange, 0),
		"Average Change per Promotion: " + FormatNumber(s.MeanChange, 1),
		"",
		"Change Distribution:",
		"Increases: " + FormatCount(s.Increases) + " promos",
		"Decreases: " + FormatCount(s.Decreases) + " promos",
		"No Change: " + FormatCount(s.Unchanged) + " promos",
		"",
		"Magnitude of Changes:",
		"Largest Increase: " + formatNull(s.MaxIncrease, 0),
		"Largest Decrease: " + formatNull(s.MaxDecrease, 0),
		"Standard Deviation: " + formatNull(s.StdDevChange, 1),
	}
}

// AnalysisItem is one row of the analysis table. Category is only set on the
// first row of each group.
type AnalysisItem struct {
	Category string `json:"category"`
	Details  string `json:"details"`
	Value    string `json:"value"`
}

// AnalysisItems returns the significance and volume rows of the analysis
// table.
func AnalysisItems(s stats.Summary) []AnalysisItem {
	pct := strconv.FormatFloat(s.SignificanceRatio*100, 'f', -1, 64)
	return []AnalysisItem{
		{Category: "Significant Changes", Details: "Promotions with >" + pct + "% increase", Value: FormatCount(s.SignificantIncreases)},
		{Details: "Promotions with >" + pct + "% decrease", Value: FormatCount(s.SignificantDecreases)},
		{Category: "Volume Analysis", Details: "Total volume of increases", Value: FormatNumber(s.TotalPositiveChange, 0)},
		{Details: "Total volume of decreases", Value: FormatNumber(s.TotalNegativeChange, 0)},
		{Details: "Net volume change", Value: FormatNumber(s.NetVolume, 0)},
	}
}

// =============================================================================
// EXPORT METRICS
// =============================================================================

// Metric is one row of the exported summary sheet. Value is invalid for
// statistics that are undefined for the set.
type Metric struct {
	Name  string
	Value decimal.NullDecimal
}

// Metric names of the exported summary sheet.
const (
	MetricTotalPromotions     = "Total Promotions"
	MetricTotalChanges        = "Total Changes"
	MetricIncreases           = "Increases"
	MetricDecreases           = "Decreases"
	MetricNoChange            = "No Change"
	MetricAverageChange       = "Average Change"
	MetricLargestIncrease     = "Largest Increase"
	MetricLargestDecrease     = "Largest Decrease"
	MetricNetChange           = "Net Change"
	MetricStandardDeviation   = "Standard Deviation"
	MetricSignificantIncrease = "Significant Increases"
	MetricSignificantDecrease = "Significant Decreases"
	MetricVolumeIncreases     = "Total Volume of Increases"
	MetricVolumeDecreases     = "Total Volume of Decreases"
	MetricNetVolume           = "Net Volume Change"
)

// SummaryMetrics returns the export rows in their fixed order.
func SummaryMetrics(s stats.Summary) []Metric {
	count := func(n int) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(int64(n))) }
	value := decimal.NewNullDecimal

	return []Metric{
		{MetricTotalPromotions, count(s.Total)},
		{MetricTotalChanges, count(s.Changed)},
		{MetricIncreases, count(s.Increases)},
		{MetricDecreases, count(s.Decreases)},
		{MetricNoChange, count(s.Unchanged)},
		{MetricAverageChange, value(s.MeanChange)},
		{MetricLargestIncrease, s.MaxIncrease},
		{MetricLargestDecrease, s.MaxDecrease},
		{MetricNetChange, value(s.NetChange)},
		{MetricStandardDeviation, s.StdDevChange},
		{MetricSignificantIncrease, count(s.SignificantIncreases)},
		{MetricSignificantDecrease, count(s.SignificantDecreases)},
		{MetricVolumeIncreases, value(s.TotalPositiveChange)},
		{MetricVolumeDecreases, value(s.TotalNegativeChange)},
		{MetricNetVolume, value(s.NetVolume)},
	}
}
