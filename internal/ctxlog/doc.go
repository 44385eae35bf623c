// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-based logger that can be used to log
// messages with different log levels. It uses the slog package for
// structured logging. Console output is human-readable; an optional file
// sink persists every record as newline-delimited JSON, truncated at
// process start.
package ctxlog
