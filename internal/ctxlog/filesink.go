// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
)

// ErrOpenLogFile is returned when the log file cannot be created.
var ErrOpenLogFile = errors.New("failed to open log file")

// OpenLogFile creates the newline-delimited JSON log file at path,
// truncating any previous contents. Records are appended for the lifetime
// of the process, one per log call.
func OpenLogFile(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Join(ErrOpenLogFile, err)
	}

	return f, nil
}

// NewWithSink returns a logger that writes pretty output to console and
// NDJSON records to sink. Console output goes to the default destination
// unless console is non-nil.
func NewWithSink(console io.Writer, sink io.Writer) *slog.Logger {
	if console == nil {
		console = os.Stdout
	}

	pretty := NewPretty(&slog.HandlerOptions{Level: LevelVar},
		WithAutoColor(),
		WithDestinationWriter(console),
	)

	ndjson := slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: LevelVar})

	return slog.New(fanoutHandler{pretty, ndjson})
}

// fanoutHandler duplicates records to every wrapped handler.
type fanoutHandler []slog.Handler

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (f fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs error

	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}

		errs = errors.Join(errs, h.Handle(ctx, r.Clone()))
	}

	return errs
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanoutHandler, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}

	return next
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	next := make(fanoutHandler, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}

	return next
}
