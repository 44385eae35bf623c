// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// debugLevel raises the process-wide level for the duration of a test.
func debugLevel(t *testing.T) {
	t.Helper()

	prev := LevelVar.Level()
	LevelVar.Set(slog.LevelDebug)
	t.Cleanup(func() { LevelVar.Set(prev) })
}

func TestLogger_RoundTrip(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	ctx := New(context.Background(), logger)

	assert.Same(t, logger, Logger(ctx))
}

func TestLogger_FallsBackToDefault(t *testing.T) {
	assert.Same(t, DefaultLogger, Logger(context.Background()))
	assert.Same(t, DefaultLogger, Logger(New(context.Background(), nil)))
}

func TestNewWithSink_WritesNDJSON(t *testing.T) {
	debugLevel(t)

	console := &bytes.Buffer{}
	sink := &bytes.Buffer{}

	logger := NewWithSink(console, sink)
	logger.Info("install succeeded", "task", "wget", "attempt", 2)
	logger.Warn("install attempt failed", "task", "jq")

	lines := strings.Split(strings.TrimSpace(sink.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any

	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "install succeeded", first["msg"])
	assert.Equal(t, "wget", first["task"])
	assert.Equal(t, float64(2), first["attempt"])

	assert.Contains(t, console.String(), "install succeeded")
	assert.Contains(t, console.String(), "install attempt failed")
}

func TestNewWithSink_WithAttrsReachesBothOutputs(t *testing.T) {
	debugLevel(t)

	console := &bytes.Buffer{}
	sink := &bytes.Buffer{}

	logger := NewWithSink(console, sink).With("runId", "abc-123")
	logger.Info("run started")

	var rec map[string]any

	require.NoError(t, json.Unmarshal(bytes.TrimSpace(sink.Bytes()), &rec))
	assert.Equal(t, "abc-123", rec["runId"])
	assert.Contains(t, console.String(), "abc-123")
}

func TestOpenLogFile_TruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brewherd.log")
	require.NoError(t, os.WriteFile(path, []byte("stale records\n"), 0o644))

	f, err := OpenLogFile(path)
	require.NoError(t, err)

	_, err = f.WriteString(`{"msg":"fresh"}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"msg":"fresh"}`+"\n", string(data))
}

func TestOpenLogFile_BadPath(t *testing.T) {
	_, err := OpenLogFile(filepath.Join(t.TempDir(), "missing", "brewherd.log"))
	require.ErrorIs(t, err, ErrOpenLogFile)
}

func TestPrettyHandler_FormatsRecord(t *testing.T) {
	debugLevel(t)

	out := &bytes.Buffer{}
	logger := slog.New(NewPretty(&slog.HandlerOptions{Level: LevelVar},
		WithDestinationWriter(out)))

	logger.Info("rollback", "task", "firefox (cask)")

	got := out.String()
	assert.Contains(t, got, "INFO:")
	assert.Contains(t, got, "rollback")
	assert.Contains(t, got, "firefox (cask)")
}

func TestFanoutHandler_EnabledWhenAnyHandlerEnabled(t *testing.T) {
	quiet := slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError})
	chatty := slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})

	f := fanoutHandler{quiet, chatty}
	assert.True(t, f.Enabled(context.Background(), slog.LevelDebug))

	f = fanoutHandler{quiet}
	assert.False(t, f.Enabled(context.Background(), slog.LevelDebug))
}

func TestFanoutHandler_RespectsPerHandlerLevel(t *testing.T) {
	quietBuf := &bytes.Buffer{}
	chattyBuf := &bytes.Buffer{}

	f := fanoutHandler{
		slog.NewJSONHandler(quietBuf, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewJSONHandler(chattyBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}

	logger := slog.New(f)
	logger.Info("only for the chatty handler")

	assert.Empty(t, quietBuf.String())
	assert.Contains(t, chattyBuf.String(), "only for the chatty handler")
}
