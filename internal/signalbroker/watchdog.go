// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"os/signal"

	"github.com/brewherd/brewherd/internal/ctxlog"
)

// Watch monitors the signal channel and handles signals.
// The first signal of a given type is logged and left for cooperating
// components to act on (in-flight work is allowed to finish its current
// attempt). The second signal of the same type cancels the context,
// forcefully terminating the run.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	sigMap := make(map[os.Signal]struct{})
	for sig := range sigCh {
		if _, ok := sigMap[sig]; ok {
			ctxlog.Logger(ctx).Info("watchdog",
				"detail", "received second signal of type, forcefully terminating",
				"signal", sig.String())
			// Deregister before closing so a later signal is not relayed
			// to a closed channel.
			signal.Stop(sigCh)
			close(sigCh)
			cancel()

			return
		}

		ctxlog.Logger(ctx).Info("watchdog",
			"detail", "received first signal of type, waiting for in-flight work",
			"signal", sig.String())

		sigMap[sig] = struct{}{}
	}
}
