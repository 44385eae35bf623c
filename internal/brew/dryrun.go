// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package brew

import (
	"context"

	"github.com/brewherd/brewherd/internal/ctxlog"
	"github.com/brewherd/brewherd/internal/orchestrator"
)

var _ orchestrator.Actioner = (*DryRun)(nil)

// DryRun is an Actioner that only logs intent. Every action succeeds, so a
// dry run exercises the identical control flow without side effects.
type DryRun struct{}

// Install implements orchestrator.Actioner.
func (DryRun) Install(ctx context.Context, task orchestrator.Task) error {
	ctxlog.Info(ctx, "dry-run: would install", "task", task.Label())

	return nil
}

// Uninstall implements orchestrator.Actioner.
func (DryRun) Uninstall(ctx context.Context, task orchestrator.Task) error {
	ctxlog.Info(ctx, "dry-run: would uninstall", "task", task.Label())

	return nil
}
