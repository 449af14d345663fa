package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/promotion-ledger-reconciler/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, false, &buf)
	require.NoError(t, err)
	defer logger.Close()

	logger.Debug("hidden")
	logger.Info("compared", "results", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "compared", entry["msg"])
	assert.Equal(t, float64(3), entry["results"])
}

func TestNew_VerboseText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "error", Format: "text"}, true, &buf)
	require.NoError(t, err)

	logger.Debug("parsing", "rows", 2)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "rows=2")
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "promodiff.log")
	var buf bytes.Buffer

	logger, err := New(config.LoggingConfig{Level: "info", Format: "text", File: path}, false, &buf)
	require.NoError(t, err)
	logger.Info("exported")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=exported")
	assert.Contains(t, buf.String(), "msg=exported")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}
