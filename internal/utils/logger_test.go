package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_LevelAndFields(t *testing.T) {
	config := &Config{}
	config.Logging.Level = "warn"

	var buf bytes.Buffer
	logger := newLogger(config, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("zone_id", "z1").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "z1", entry["zone_id"])
	assert.Equal(t, "safezone-agent", entry["app"])
}

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	config := &Config{}
	config.Logging.Level = "chatty"

	var buf bytes.Buffer
	logger := newLogger(config, &buf)
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogger_WritesFile(t *testing.T) {
	config := &Config{}
	config.ApplyDefaults()
	config.Logging.File = filepath.Join(t.TempDir(), "agent.log")

	var buf bytes.Buffer
	logger := newLogger(config, &buf)
	logger.Info().Msg("to both")

	data, err := os.ReadFile(config.Logging.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}
