package common

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLogErrorIncludesErrorAndFields(t *testing.T) {
	buf := captureLogs(t)

	LogError(errors.New("boom"), "parse failed", Fields{"file": "march.pdf"})

	out := buf.String()
	assert.Contains(t, out, `"msg":"parse failed"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"file":"march.pdf"`)
}

func TestLogDebugIncludesFields(t *testing.T) {
	buf := captureLogs(t)

	LogDebug("parsed statement", Fields{"transactions": 3})

	out := buf.String()
	assert.Contains(t, out, `"msg":"parsed statement"`)
	assert.Contains(t, out, `"transactions":3`)
}

func TestSetupLoggerFormats(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	for _, format := range []string{"json", "console", "whatever"} {
		require.NoError(t, SetupLogger(slog.LevelInfo, format))
	}
}
