package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetup_WritesToFile(t *testing.T) {
	var fileBuf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&fileBuf, nil, "info")

	m.Logger().Info("hello file")

	assert.Contains(t, fileBuf.String(), "hello file")
}

func TestSetup_GraylogGetsJSON(t *testing.T) {
	var gelfBuf bytes.Buffer
	m := NewSlogManager()
	m.Setup(nil, &gelfBuf, "info")

	m.Logger().Info("hello graylog", "marker", "running")

	assert.Contains(t, gelfBuf.String(), `"msg":"hello graylog"`)
	assert.Contains(t, gelfBuf.String(), `"marker":"running"`)
}

func TestSetup_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, nil, "debug")

	m.Logger().Debug("debug msg")
	m.Logger().Info("info msg")

	output := buf.String()
	assert.Contains(t, output, "debug msg")
	assert.Contains(t, output, "info msg")
}

func TestSetup_InfoLevel_FiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, nil, "info")

	m.Logger().Debug("should be filtered")
	m.Logger().Info("should appear")

	output := buf.String()
	assert.NotContains(t, output, "should be filtered")
	assert.Contains(t, output, "should appear")
}

func TestLogger_BeforeSetup(t *testing.T) {
	m := NewSlogManager()

	assert.NotNil(t, m.Logger(), "should fall back to the default logger")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("INFO"))
	assert.Equal(t, slog.LevelWarn, parseLevel("Warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestMultiHandler_FansOut(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&buf1, nil),
		slog.NewTextHandler(&buf2, nil),
	)

	logger := slog.New(h)
	logger.Info("fan out")

	assert.Contains(t, buf1.String(), "fan out")
	assert.Contains(t, buf2.String(), "fan out")
}

func TestMultiHandler_SkipsNil(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(nil, slog.NewTextHandler(&buf, nil), nil)

	slog.New(h).Info("still works")

	assert.Contains(t, buf.String(), "still works")
}

func TestMultiHandler_EnabledWhenAnyIs(t *testing.T) {
	var buf bytes.Buffer
	debug := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	errOnly := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError})

	h := NewMultiHandler(debug, errOnly)
	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))

	h = NewMultiHandler(errOnly)
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestMultiHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(slog.NewTextHandler(&buf, nil))

	slog.New(h).With("pass", 7).Info("attrs")

	assert.Contains(t, buf.String(), "pass=7")
}

func TestLogFilePath(t *testing.T) {
	start := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	path := LogFilePath("/var/log/lw", "laundrywatch", start)

	assert.Equal(t, "/var/log/lw/laundrywatch.20250314_092653.log", path)
}
