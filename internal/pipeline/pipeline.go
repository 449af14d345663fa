// =============================================================================
// Promotion Ledger Reconciler - Comparison Pipeline
// =============================================================================
//
// This module orchestrates one comparison run, from raw snapshots to a
// finished Report.
//
// PIPELINE:
//   1. Read the two snapshots (text, stdin or .xlsx workbook)
//   2. Parse them into datasets with the configured column mapping
//   3. Reconcile the datasets into comparison results
//   4. Summarize the full result set
//   5. Segment it into quantity ranges and change categories
//   6. Enrich with customer groups and the promotion timeline when the
//      original snapshot carries those columns
//
// Exporting the report to a workbook is a separate step (see Export).
//
// Every run creates fresh datasets. Nothing is cached between runs.
//
// =============================================================================

package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/config"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/csvparser"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/projection"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/reconcile"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/segment"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/stats"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/xlsxparser"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/xlsxwriter"
	"github.com/ginjaninja78/promotion-ledger-reconciler/pkg/utils"
	"github.com/google/uuid"
)

// Snapshot names used in logs and errors when the input has no file name.
const (
	OriginalName = "original"
	UpdatedName  = "updated"
)

// =============================================================================
// REPORT STRUCTURE
// =============================================================================

// Report is the outcome of one comparison run. The caller owns it.
type Report struct {
	// RunID identifies the run in logs and export file names.
	RunID string

	// Original and Updated are the parsed snapshots.
	Original *types.Dataset
	Updated  *types.Dataset

	// Results holds one entry per matched promotion, in original order.
	Results []types.ComparisonResult

	// Summary is computed over the full, unfiltered result set.
	Summary stats.Summary

	// QuantityBins and ChangeBins partition Results.
	QuantityBins []segment.Bin
	ChangeBins   []segment.Bin

	// QuantityRanges and ChangeCategories are the bin labels of each
	// result, parallel to Results.
	QuantityRanges   []string
	ChangeCategories []string

	// Groups is nil when the original snapshot has no customer group column.
	Groups []segment.GroupStat

	// Timeline is nil when the original snapshot has no date columns.
	Timeline *segment.TimelineAnalysis

	// StartedAt is when the run began; Duration how long it took.
	StartedAt time.Time
	Duration  time.Duration
}

// Filtered returns the results selected by the display filter.
func (r *Report) Filtered(mode segment.FilterMode) []types.ComparisonResult {
	return segment.Filter(r.Results, mode)
}

// Skipped returns the number of malformed rows dropped from both snapshots.
func (r *Report) Skipped() int {
	return len(r.Original.Issues()) + len(r.Updated.Issues())
}

// =============================================================================
// PIPELINE STRUCTURE
// =============================================================================

// Pipeline runs comparisons with a fixed configuration.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a new Pipeline.
//
// PARAMETERS:
//   - cfg: The resolved configuration. nil selects config.Default().
//   - logger: Receives one entry per step. nil selects slog.Default().
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Config returns the configuration the pipeline runs with.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// =============================================================================
// RUNNING
// =============================================================================

// RunText compares two snapshots given as delimited text.
func (p *Pipeline) RunText(originalText, updatedText string) (*Report, error) {
	id := uuid.NewString()
	log := p.logger.With("run_id", id)

	original, err := p.parseText(log, OriginalName, OriginalName, originalText)
	if err != nil {
		return nil, err
	}
	updated, err := p.parseText(log, UpdatedName, UpdatedName, updatedText)
	if err != nil {
		return nil, err
	}
	return p.run(id, log, original, updated), nil
}

// RunFiles compares two snapshot files.
//
// PARAMETERS:
//   - originalPath, updatedPath: .xlsx/.xlsm files are read as workbooks,
//     anything else as delimited text. utils.StdinPath reads standard input;
//     at most one of the two may use it.
//
// RETURNS:
//   - The report.
//   - An error if a snapshot cannot be read, is empty, or lacks a
//     required column.
func (p *Pipeline) RunFiles(originalPath, updatedPath string) (*Report, error) {
	if originalPath == utils.StdinPath && updatedPath == utils.StdinPath {
		return nil, errors.New("only one snapshot can be read from stdin")
	}

	id := uuid.NewString()
	log := p.logger.With("run_id", id)

	original, err := p.load(log, OriginalName, originalPath)
	if err != nil {
		return nil, err
	}
	updated, err := p.load(log, UpdatedName, updatedPath)
	if err != nil {
		return nil, err
	}
	return p.run(id, log, original, updated), nil
}

// Load reads and parses one snapshot file without comparing it. role names
// the snapshot in errors and logs.
func (p *Pipeline) Load(role, path string) (*types.Dataset, error) {
	return p.load(p.logger, role, path)
}

func (p *Pipeline) load(log *slog.Logger, role, path string) (*types.Dataset, error) {
	if utils.IsWorkbook(path) {
		ds, err := xlsxparser.LoadNamed(filepath.Base(path), path, p.cfg.Parsing.Sheet, p.cfg.ToColumns())
		if err != nil {
			return nil, fmt.Errorf("%s snapshot: %w", role, err)
		}
		p.logParsed(log, role, ds)
		return ds, nil
	}

	text, err := utils.ReadInput(path)
	if err != nil {
		return nil, fmt.Errorf("%s snapshot: %w", role, err)
	}
	name := role
	if path != utils.StdinPath {
		name = filepath.Base(path)
	}
	return p.parseText(log, role, name, text)
}

func (p *Pipeline) parseText(log *slog.Logger, role, name, text string) (*types.Dataset, error) {
	ds, err := csvparser.ParseNamed(name, text, p.cfg.ToColumns(), p.cfg.CSVSettings())
	if err != nil {
		return nil, fmt.Errorf("%s snapshot: %w", role, err)
	}
	p.logParsed(log, role, ds)
	return ds, nil
}

func (p *Pipeline) logParsed(log *slog.Logger, role string, ds *types.Dataset) {
	log.Debug("parsed snapshot", "snapshot", role, "name", ds.Name(), "rows", ds.Len())
	for _, issue := range ds.Issues() {
		log.Warn("skipped row", "snapshot", role, "error", issue.Error())
	}
}

// run computes everything derived from the two datasets.
func (p *Pipeline) run(id string, log *slog.Logger, original, updated *types.Dataset) *Report {
	started := time.Now()
	analysis := p.cfg.Analysis

	report := &Report{
		RunID:     id,
		Original:  original,
		Updated:   updated,
		StartedAt: started,
	}

	report.Results = reconcile.Compare(original, updated)
	report.Summary = stats.SummarizeWithRatio(report.Results, analysis.SignificanceRatio)
	report.QuantityBins = segment.QuantityRangeBins(report.Results, analysis.QuantityBins)
	report.ChangeBins = segment.ChangeMagnitudeBins(report.Results, analysis.ChangeBins)

	_, quantities := segment.AssignQuantityRanges(report.Results, analysis.QuantityBins)
	report.QuantityRanges = segment.LabelsPerResult(segment.QuantityRangeLabelsFor(analysis.QuantityBins), quantities)
	_, changes := segment.AssignChangeMagnitudes(report.Results, analysis.ChangeBins)
	report.ChangeCategories = segment.LabelsPerResult(segment.ChangeMagnitudeLabelsFor(analysis.ChangeBins), changes)

	// Enrichment is optional; a missing column only skips that section.
	if groups, err := segment.ByCustomerGroup(report.Results, original); err == nil {
		report.Groups = groups
	} else if !errors.Is(err, segment.ErrEnrichmentUnavailable) {
		log.Warn("customer group analysis failed", "error", err)
	}

	if tl, err := segment.Timeline(report.Results, original, p.cfg.Parsing.DateLayouts); err == nil {
		report.Timeline = tl
		if tl.Skipped > 0 {
			log.Debug("timeline skipped results", "skipped", tl.Skipped)
		}
	} else if !errors.Is(err, segment.ErrEnrichmentUnavailable) {
		log.Warn("timeline analysis failed", "error", err)
	}

	report.Duration = time.Since(started)

	log.Info("comparison complete",
		"original_rows", original.Len(),
		"updated_rows", updated.Len(),
		"results", len(report.Results),
		"changed", report.Summary.Changed,
		"duration", report.Duration,
	)
	return report
}

// =============================================================================
// EXPORT
// =============================================================================

// Export writes the report to a workbook in dir (the configured output
// directory when dir is empty) and returns its path.
//
// The results sheet holds the filtered results; the summary sheet always
// describes the full set.
func (p *Pipeline) Export(report *Report, dir string, mode segment.FilterMode) (string, error) {
	if dir == "" {
		dir = p.cfg.Output.Dir
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := utils.GenerateOutputFileName(p.cfg.Output.FileNameFormat, map[string]string{"uuid": report.RunID}, report.StartedAt)
	path := filepath.Join(dir, name)

	results := report.Filtered(mode)
	if err := xlsxwriter.Write(path, results, projection.SummaryMetrics(report.Summary)); err != nil {
		return "", fmt.Errorf("failed to export report: %w", err)
	}

	p.logger.Info("exported report", "run_id", report.RunID, "path", path, "rows", len(results))
	return path, nil
}

// ExportTo streams the workbook of Export to w instead of a file.
func (p *Pipeline) ExportTo(w io.Writer, report *Report, mode segment.FilterMode) error {
	results := report.Filtered(mode)
	if err := xlsxwriter.WriteTo(w, results, projection.SummaryMetrics(report.Summary)); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}

	p.logger.Info("exported report", "run_id", report.RunID, "path", "stdout", "rows", len(results))
	return nil
}
