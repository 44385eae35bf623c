// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the entry point for the brewherd command-line application.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/brewherd/brewherd"
	"github.com/brewherd/brewherd/cmd"
	"github.com/brewherd/brewherd/internal/ctxlog"
	"github.com/brewherd/brewherd/internal/signalbroker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	cmd.RootCmd.Version = fmt.Sprintf("%s (commit: %s)", brewherd.Version, brewherd.Commit)

	err := cmd.RootCmd.Run(ctx, os.Args)

	// Check if the context was cancelled (e.g., due to signals)
	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
