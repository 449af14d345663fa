// =============================================================================
// Promotion Ledger Reconciler - Report Rendering
// =============================================================================
//
// This package turns a pipeline Report into output for people and tools:
//   - Markdown: the dashboard as a markdown document
//   - Terminal: that document rendered for a terminal (glamour)
//   - JSON:     rows, metrics and chart series for other programs
//
// =============================================================================

package render

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/pipeline"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/projection"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/segment"
	md "github.com/nao1215/markdown"
)

// Title is the top-level heading of the dashboard.
const Title = "Promotion Ledger Comparison"

// Options control what the dashboard shows.
type Options struct {
	// Filter selects the rows of the results table. The summary always
	// describes the full set.
	Filter segment.FilterMode

	// TopN is the length of the ranking table.
	TopN int
}

// Markdown renders the dashboard.
func Markdown(r *pipeline.Report, opts Options) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(Title)
	doc.BulletList(runInfo(r)...)

	doc.H2("Summary")
	summaryBlocks(doc, projection.SummaryLines(r.Summary))

	if r.Summary.Total > 0 {
		doc.H2("Analysis")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight},
			Header:    []string{"Category", "Details", "Value"},
		}
		for _, item := range projection.AnalysisItems(r.Summary) {
			category := item.Category
			if category != "" {
				category = md.Bold(category)
			}
			table.Rows = append(table.Rows, []string{category, item.Details, item.Value})
		}
		doc.Table(table)

		doc.H2("Quantity Ranges")
		doc.Table(binTable("Range", r.QuantityBins))

		doc.H2("Change Categories")
		doc.Table(binTable("Category", r.ChangeBins))

		top := projection.TopAbsoluteChanges(r.Results, opts.TopN)
		doc.H2(top.Title)
		doc.Table(seriesTable(top))
	}

	if len(r.Groups) > 0 {
		doc.H2("Customer Groups")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Group", "Promotions", "Mean Change", "Std Dev", "Updated Volume"},
		}
		for _, g := range r.Groups {
			std := projection.NotAvailable
			if g.StdDevChange.Valid {
				std = projection.FormatNumber(g.StdDevChange.Decimal, 1)
			}
			table.Rows = append(table.Rows, []string{
				cell(g.Group),
				projection.FormatCount(g.Count),
				projection.FormatNumber(g.MeanChange, 1),
				std,
				projection.FormatNumber(g.UpdatedVolume, 0),
			})
		}
		doc.Table(table)
	}

	if r.Timeline != nil && len(r.Timeline.Monthly) > 0 {
		doc.H2("Promotions by Start Month")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
			Header:    []string{"Month", "Promotions", "Mean Change"},
		}
		for _, m := range r.Timeline.Monthly {
			table.Rows = append(table.Rows, []string{
				m.Month.String(),
				projection.FormatCount(m.Count),
				projection.FormatNumber(m.MeanChange, 1),
			})
		}
		doc.Table(table)
		if r.Timeline.Skipped > 0 {
			blank(doc)
			doc.PlainText(projection.FormatCount(r.Timeline.Skipped) + " promotions without usable dates are not shown.")
		}
	}

	doc.H2("Comparison Results")
	rows := projection.TableRows(r.Filtered(opts.Filter))
	if len(rows) == 0 {
		doc.PlainText("No promotions to show.")
	} else {
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"TD No", "TD Description", "Original Qty", "Updated Qty", "Change"},
		}
		for _, row := range rows {
			table.Rows = append(table.Rows, []string{
				cell(row.ID), cell(row.Description), row.Original, row.Updated, row.Change,
			})
		}
		doc.Table(table)
	}

	return doc.String()
}

func runInfo(r *pipeline.Report) []string {
	info := []string{
		md.Bold("Run") + ": " + md.Code(r.RunID),
		md.Bold("Original") + ": " + cell(r.Original.Name()) + " (" + projection.FormatCount(r.Original.Len()) + " records)",
		md.Bold("Updated") + ": " + cell(r.Updated.Name()) + " (" + projection.FormatCount(r.Updated.Len()) + " records)",
		md.Bold("Matched") + ": " + projection.FormatCount(len(r.Results)),
	}
	if skipped := r.Skipped(); skipped > 0 {
		info = append(info, md.Bold("Skipped rows")+": "+strconv.Itoa(skipped))
	}
	return info
}

// summaryBlocks splits the summary lines at blank entries. A block whose
// first line ends in ":" gets that line as a bold caption.
func summaryBlocks(doc *md.Markdown, lines []string) {
	var block []string
	flush := func() {
		if len(block) == 0 {
			return
		}
		if strings.HasSuffix(block[0], ":") {
			blank(doc)
			doc.PlainText(md.Bold(strings.TrimSuffix(block[0], ":")))
			block = block[1:]
		}
		if len(block) > 0 {
			blank(doc)
			doc.BulletList(block...)
		}
		block = nil
	}
	for _, line := range lines {
		if line == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()
}

// blank ends the previous block so that the next paragraph is not read as
// a continuation of a list or table.
func blank(doc *md.Markdown) {
	doc.PlainText("")
}

func binTable(name string, bins []segment.Bin) md.TableSet {
	means := projection.BinMeanChange("", "", bins)
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{name, "Promotions", "Mean Change", "From", "To"},
	}
	for i, b := range bins {
		table.Rows = append(table.Rows, []string{
			b.Label,
			projection.FormatCount(b.Len()),
			formatFloat(means.Points[i].Value, 1),
			formatFloat(b.Lower, 1),
			formatFloat(b.Upper, 1),
		})
	}
	return table
}

func seriesTable(s projection.Series) md.TableSet {
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"TD No", "Label", "Change"},
	}
	for _, p := range s.Points {
		table.Rows = append(table.Rows, []string{cell(p.ID), cell(p.Label), formatFloat(p.Value, 0)})
	}
	return table
}

func formatFloat(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}

// cell escapes text for use inside a table cell.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
