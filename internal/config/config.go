// =============================================================================
// Promotion Ledger Reconciler - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Values are resolved in
// three steps:
//   1. The YAML file (config.yaml by default), if it exists
//   2. Defaults for every option the file left unset
//   3. PROMODIFF_* environment variables, which override both
//
// The result is validated with struct tags before it is returned.
//
// ENVIRONMENT:
//   PROMODIFF_COLUMNS_ID=PromoNo
//   PROMODIFF_PARSING_DELIMITER=pipe
//   PROMODIFF_ANALYSIS_TOP_N=10
//   PROMODIFF_LOGGING_LEVEL=debug
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/csvparser"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/segment"
	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "PROMODIFF"

// DefaultPath is the configuration file read when no path is given.
const DefaultPath = "config.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	Columns  ColumnsConfig  `yaml:"columns" envconfig:"COLUMNS"`
	Parsing  ParsingConfig  `yaml:"parsing" envconfig:"PARSING"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// ColumnsConfig maps engine fields to the header names of the ledger export.
//
// CUSTOMIZATION: Change these when the export uses other header names.
// Optional columns that are missing from a snapshot's header are ignored.
type ColumnsConfig struct {
	// ID is the promotion identifier column. Default: "Td No"
	ID string `yaml:"id" envconfig:"ID" validate:"required"`

	// Description is shown in tables and used for chart labels.
	// Default: "Td Desc"
	Description string `yaml:"description" envconfig:"DESCRIPTION"`

	// Quantity is the balance quantity column. Default: "Balance Qty"
	Quantity string `yaml:"quantity" envconfig:"QUANTITY" validate:"required"`

	// Optional enrichment columns, read from the original snapshot.
	CustomerGroup string `yaml:"customer_group" envconfig:"CUSTOMER_GROUP"`
	StartDate     string `yaml:"start_date" envconfig:"START_DATE"`
	EndDate       string `yaml:"end_date" envconfig:"END_DATE"`
}

// ParsingConfig controls how snapshots are split into fields.
type ParsingConfig struct {
	// Delimiter is the field separator of text snapshots.
	// Accepts "tab", "\t", "pipe", "comma", "semicolon" or a literal string.
	// Default: tab
	Delimiter string `yaml:"delimiter" envconfig:"DELIMITER"`

	// DateLayouts are Go time layouts tried in order for start and end dates.
	DateLayouts []string `yaml:"date_layouts" envconfig:"DATE_LAYOUTS"`

	// Sheet is the worksheet read from .xlsx snapshots. Empty selects the
	// first sheet.
	Sheet string `yaml:"sheet" envconfig:"SHEET"`
}

// AnalysisConfig holds the segmentation and ranking parameters.
type AnalysisConfig struct {
	// QuantityBins is the number of quantile buckets. Default: 5
	QuantityBins int `yaml:"quantity_bins" envconfig:"QUANTITY_BINS" validate:"min=1,max=20"`

	// ChangeBins is the number of change-magnitude buckets. Default: 5
	ChangeBins int `yaml:"change_bins" envconfig:"CHANGE_BINS" validate:"min=1,max=20"`

	// SignificanceRatio is the share of the original quantity a change must
	// exceed to count as significant. Default: 0.5
	SignificanceRatio float64 `yaml:"significance_ratio" envconfig:"SIGNIFICANCE_RATIO" validate:"gt=0"`

	// TopN is the length of the ranking charts. Default: 5
	TopN int `yaml:"top_n" envconfig:"TOP_N" validate:"min=1,max=50"`
}

// OutputConfig controls exports and terminal rendering.
type OutputConfig struct {
	// Dir is the directory exports are written to. Default: "./output"
	Dir string `yaml:"dir" envconfig:"DIR" validate:"required"`

	// FileNameFormat defines export file names.
	// Placeholders: {timestamp}, {date}, {time}, {uuid} (the run ID)
	// Default: "promotion_comparison_{timestamp}.xlsx"
	FileNameFormat string `yaml:"file_name_format" envconfig:"FILE_NAME_FORMAT" validate:"required"`

	// Style is the glamour style used for terminal output.
	// Default: "auto"
	Style string `yaml:"style" envconfig:"STYLE" validate:"oneof=auto dark light notty ascii dracula pink tokyo-night"`

	// WordWrap is the terminal width used for rendering. Default: 100
	WordWrap int `yaml:"word_wrap" envconfig:"WORD_WRAP" validate:"min=20"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error". Default: "info"
	Level string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`

	// Format is "text" or "json". Default: "text"
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`

	// File additionally writes logs to this path when set.
	File string `yaml:"file" envconfig:"FILE"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Load loads the configuration.
//
// PARAMETERS:
//   - path: The YAML file. "" selects DefaultPath.
//   - mustExist: When false, a missing file is not an error and defaults
//     are used instead.
//
// RETURNS:
//   - The resolved configuration.
//   - An error if the file cannot be read or parsed, an environment
//     override is malformed, or validation fails.
func Load(path string, mustExist bool) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !mustExist:
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	columns := types.DefaultColumns()
	if cfg.Columns.ID == "" {
		cfg.Columns.ID = columns.ID
	}
	if cfg.Columns.Description == "" {
		cfg.Columns.Description = columns.Description
	}
	if cfg.Columns.Quantity == "" {
		cfg.Columns.Quantity = columns.Quantity
	}
	if cfg.Columns.CustomerGroup == "" {
		cfg.Columns.CustomerGroup = columns.CustomerGroup
	}
	if cfg.Columns.StartDate == "" {
		cfg.Columns.StartDate = columns.StartDate
	}
	if cfg.Columns.EndDate == "" {
		cfg.Columns.EndDate = columns.EndDate
	}

	if cfg.Parsing.Delimiter == "" {
		cfg.Parsing.Delimiter = "tab"
	}
	if len(cfg.Parsing.DateLayouts) == 0 {
		cfg.Parsing.DateLayouts = append([]string(nil), segment.DefaultDateLayouts...)
	}

	if cfg.Analysis.QuantityBins == 0 {
		cfg.Analysis.QuantityBins = segment.DefaultBinCount
	}
	if cfg.Analysis.ChangeBins == 0 {
		cfg.Analysis.ChangeBins = segment.DefaultBinCount
	}
	if cfg.Analysis.SignificanceRatio == 0 {
		cfg.Analysis.SignificanceRatio = 0.5
	}
	if cfg.Analysis.TopN == 0 {
		cfg.Analysis.TopN = 5
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./output"
	}
	if cfg.Output.FileNameFormat == "" {
		cfg.Output.FileNameFormat = "promotion_comparison_{timestamp}.xlsx"
	}
	if cfg.Output.Style == "" {
		cfg.Output.Style = "auto"
	}
	if cfg.Output.WordWrap == 0 {
		cfg.Output.WordWrap = 100
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate checks the struct tag rules.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// ToColumns returns the column mapping for the parsers.
func (c *Config) ToColumns() types.Columns {
	return types.Columns{
		ID:            c.Columns.ID,
		Description:   c.Columns.Description,
		Quantity:      c.Columns.Quantity,
		CustomerGroup: c.Columns.CustomerGroup,
		StartDate:     c.Columns.StartDate,
		EndDate:       c.Columns.EndDate,
	}
}

// CSVSettings returns the text parser settings.
func (c *Config) CSVSettings() csvparser.Settings {
	return csvparser.Settings{Delimiter: c.Parsing.Delimiter}
}
