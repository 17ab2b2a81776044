package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vellum/internal/config"
)

func newBuffer() (*bytes.Buffer, zapcore.WriteSyncer) {
	var buf bytes.Buffer
	return &buf, zapcore.AddSync(&buf)
}

func TestInitialize_Console(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)
	buf, ws := newBuffer()

	Initialize(config.LoggerConfig{Level: "debug", Format: "console", ServiceName: "vellum"}, ws)
	GetLogger().Debug("shaping text", zap.Int("glyphs", 5))

	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "vellum.")
	assert.Contains(t, out, "shaping text")
	assert.Contains(t, out, `"glyphs": 5`)
	assert.NotContains(t, out, "\x1b[", "colors are off unless requested")
}

func TestInitialize_ConsoleColor(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)
	buf, ws := newBuffer()

	Initialize(config.LoggerConfig{Level: "info", Format: "console", Color: true}, ws)
	GetLogger().Info("hello")
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestInitialize_JSONAndLevel(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)
	buf, ws := newBuffer()

	Initialize(config.LoggerConfig{Level: "warn", Format: "json", ServiceName: "svc"}, ws)
	log := GetLogger()
	log.Info("dropped")
	log.Warn("kept", zap.String("node", "3"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "svc", entry["logger"])
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "3", entry["node"])
}

func TestInitialize_BadLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)
	buf, ws := newBuffer()

	Initialize(config.LoggerConfig{Level: "loud", Format: "json"}, ws)
	GetLogger().Debug("hidden")
	GetLogger().Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitialize_OnlyOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)
	first, ws1 := newBuffer()
	second, ws2 := newBuffer()

	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, ws1)
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, ws2)
	GetLogger().Info("once")

	assert.Contains(t, first.String(), "once")
	assert.Empty(t, second.String())
}

func TestInitialize_LogFile(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)
	_, ws := newBuffer()
	path := filepath.Join(t.TempDir(), "vellum.log")

	Initialize(config.LoggerConfig{Level: "info", Format: "console", LogFile: path, MaxSize: 1}, ws)
	GetLogger().Info("to file")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestGetLogger_Fallback(t *testing.T) {
	ResetForTest()
	log := GetLogger()
	require.NotNil(t, log)
	assert.NotPanics(t, Sync)
}
