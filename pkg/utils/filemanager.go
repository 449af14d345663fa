// =============================================================================
// Promotion Ledger Reconciler - File Utilities
// =============================================================================
//
// This module provides the small file helpers shared by the pipeline and the
// commands:
//   - Reading a snapshot from a file or from standard input ("-")
//   - Detecting workbook inputs by extension
//   - Output directory management
//   - Export file naming
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StdinPath is the input path that selects standard input.
const StdinPath = "-"

// =============================================================================
// INPUT
// =============================================================================

// ReadInput returns the text of path, or of standard input for "-".
func ReadInput(path string) (string, error) {
	return ReadInputFrom(path, os.Stdin)
}

// ReadInputFrom is ReadInput with an explicit reader for "-".
//
// PARAMETERS:
//   - path: A file path, or "-".
//   - stdin: The reader used when path is "-".
//
// RETURNS:
//   - The full text.
//   - An error if the file cannot be read.
func ReadInputFrom(path string, stdin io.Reader) (string, error) {
	if path == StdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// IsWorkbook reports whether path names an Excel workbook.
func IsWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and its parents if they don't exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName generates an export file name from a format string.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - A random UUID, or params["uuid"] when given
//     {timestamp} - Timestamp of now (YYYYMMDD_HHMMSS)
//     {date}      - Date of now (YYYYMMDD)
//     {time}      - Time of now (HHMMSS)
//   - params: Extra placeholder values, keyed without braces.
//   - now: The time the placeholders are rendered for.
//
// RETURNS:
//   - The generated file name, always ending in .xlsx.
//
// EXAMPLE:
//
//	format: "promotion_comparison_{timestamp}.xlsx"
//	output: "promotion_comparison_20240115_143022.xlsx"
func GenerateOutputFileName(format string, params map[string]string, now time.Time) string {
	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".xlsx") {
		result += ".xlsx"
	}
	return result
}
