// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package preflight

import (
	"context"
	"errors"
	"fmt"

	"github.com/brewherd/brewherd/internal/ctxlog"
	"github.com/hashicorp/go-multierror"
)

// ErrPreflightFailed is returned when one or more checks fail. No task may
// start after a preflight failure.
var ErrPreflightFailed = errors.New("preflight checks failed")

// Check is a single precondition probe, run before any task is dispatched.
type Check interface {
	// Name identifies the check in log output.
	Name() string
	// Run returns nil when the precondition holds.
	Run(ctx context.Context) error
}

// Run executes every check and aggregates failures. All checks run even
// when an earlier one fails, so the user sees every problem at once.
func Run(ctx context.Context, checks ...Check) error {
	logger := ctxlog.Logger(ctx)

	var errs *multierror.Error

	for _, c := range checks {
		if err := c.Run(ctx); err != nil {
			logger.Error("preflight check failed", "check", c.Name(), "error", err)
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", c.Name(), err))

			continue
		}

		logger.Info("preflight check passed", "check", c.Name())
	}

	if err := errs.ErrorOrNil(); err != nil {
		return errors.Join(ErrPreflightFailed, err)
	}

	return nil
}
