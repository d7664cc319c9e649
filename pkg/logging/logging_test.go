package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	New("debug", "json", "")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	New("nonsense", "json", "")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestNew_WritesFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	path := filepath.Join(t.TempDir(), "clicks.log")

	logger := New("info", "json", path)
	logger.Info().Str("report", "today").Msg("report evaluated")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"report":"today"`)
	assert.Contains(t, string(data), `"message":"report evaluated"`)
}

func TestNewTo_Console(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	var buf bytes.Buffer

	logger := NewTo(&buf, "warn", "console", "")
	logger.Info().Msg("dropped")
	logger.Warn().Msg("catalog reload failed")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "catalog reload failed")
	assert.NotContains(t, buf.String(), `"message"`)
}
