package render

import (
	"encoding/json"
	"io"
	"time"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/pipeline"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/projection"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/segment"
	"github.com/shopspring/decimal"
)

// Document is the machine-readable form of a report.
type Document struct {
	RunID     string                    `json:"run_id"`
	Generated time.Time                 `json:"generated_at"`
	Original  Snapshot                  `json:"original"`
	Updated   Snapshot                  `json:"updated"`
	Metrics   []MetricValue             `json:"metrics"`
	Analysis  []projection.AnalysisItem `json:"analysis"`
	Rows      []Row                     `json:"rows"`
	Series    []projection.Series       `json:"series"`
}

// Row is a results table row together with the segments of its result.
type Row struct {
	projection.TableRow
	QuantityRange  string `json:"quantity_range"`
	ChangeCategory string `json:"change_category"`
}

// Snapshot describes one parsed input.
type Snapshot struct {
	Name    string `json:"name"`
	Records int    `json:"records"`
	Skipped int    `json:"skipped"`
}

// MetricValue is an export metric. Value is null for undefined statistics.
type MetricValue struct {
	Name  string              `json:"name"`
	Value decimal.NullDecimal `json:"value"`
}

// NewDocument assembles the document for a report.
func NewDocument(r *pipeline.Report, opts Options) Document {
	doc := Document{
		RunID:     r.RunID,
		Generated: r.StartedAt,
		Original:  Snapshot{Name: r.Original.Name(), Records: r.Original.Len(), Skipped: len(r.Original.Issues())},
		Updated:   Snapshot{Name: r.Updated.Name(), Records: r.Updated.Len(), Skipped: len(r.Updated.Issues())},
		Analysis:  projection.AnalysisItems(r.Summary),
		Rows:      rows(r, opts.Filter),
		Series:    Charts(r, opts.TopN),
	}
	for _, m := range projection.SummaryMetrics(r.Summary) {
		doc.Metrics = append(doc.Metrics, MetricValue{Name: m.Name, Value: m.Value})
	}
	return doc
}

// rows projects the results the filter keeps, in result order.
func rows(r *pipeline.Report, mode segment.FilterMode) []Row {
	out := make([]Row, 0, len(r.Results))
	for i, res := range r.Results {
		if !segment.Keep(res, mode) {
			continue
		}
		out = append(out, Row{
			TableRow:       projection.NewTableRow(res),
			QuantityRange:  labelAt(r.QuantityRanges, i),
			ChangeCategory: labelAt(r.ChangeCategories, i),
		})
	}
	return out
}

func labelAt(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return ""
}

// JSON writes the report document as indented JSON.
func JSON(w io.Writer, r *pipeline.Report, opts Options) error {
	return writeJSON(w, NewDocument(r, opts))
}

// ChartsJSON writes only the chart series.
func ChartsJSON(w io.Writer, r *pipeline.Report, topN int) error {
	return writeJSON(w, Charts(r, topN))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Charts returns every chart series of the report, in dashboard order.
// Customer and timeline series are included only when that data exists.
func Charts(r *pipeline.Report, topN int) []projection.Series {
	series := []projection.Series{
		projection.TopAbsoluteChanges(r.Results, topN),
		projection.TopIncreases(r.Results, topN),
		projection.TopDecreases(r.Results, topN),
		projection.TopPercentageChanges(r.Results, topN),
		projection.TopVolumeImpact(r.Results, topN),
		projection.CumulativeChange(r.Results),
		projection.SignDistribution(r.Results),
		projection.BinDistribution("quantity_ranges", "Promotions by Quantity Range", r.QuantityBins),
		projection.BinMeanChange("quantity_range_mean_change", "Average Change by Quantity Range", r.QuantityBins),
		projection.BinDistribution("change_categories", "Change Magnitude Distribution", r.ChangeBins),
	}
	if r.Groups != nil {
		series = append(series, projection.CustomerSeries(r.Groups)...)
	}
	if r.Timeline != nil {
		series = append(series, projection.TimelineSeries(r.Timeline)...)
	}
	return series
}
