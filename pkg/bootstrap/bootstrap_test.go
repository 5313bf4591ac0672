package bootstrap

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/abgdnv/stockguard/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ToLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ToLevel("warn"))
	assert.Equal(t, slog.LevelError, ToLevel("error"))
	assert.Equal(t, slog.LevelInfo, ToLevel("info"))
	assert.Equal(t, slog.LevelInfo, ToLevel(""))
}

func TestNewLogger(t *testing.T) {
	// given
	var buf bytes.Buffer
	logger := NewLogger(config.LogConfig{Level: "warn"}, &buf)
	// when
	logger.Info("dropped")
	logger.Warn("kept", "product_id", "P1")
	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "P1", record["product_id"])
}

func TestNewLogger_TextFormat(t *testing.T) {
	// given
	var buf bytes.Buffer
	logger := NewLogger(config.LogConfig{Level: "info", Format: config.LogFormatText}, &buf)
	// when
	logger.Info("product added", "product_id", "P1")
	// then
	assert.Contains(t, buf.String(), "msg=\"product added\"")
	assert.Contains(t, buf.String(), "product_id=P1")
}
