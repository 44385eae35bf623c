// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package check

import (
	"context"
	"fmt"

	"github.com/brewherd/brewherd/internal/color"
	"github.com/brewherd/brewherd/internal/ctxlog"
	"github.com/brewherd/brewherd/internal/preflight"
	"github.com/urfave/cli/v3"
)

const (
	minMacOSFlag     = "min-macos"
	minFreeSpaceFlag = "min-free-space"

	defaultMinMacOS    = "11.0"
	defaultMinFreeGigs = 1
)

// CheckCmd runs the pre-flight checks without installing anything.
var CheckCmd = &cli.Command{
	Name: "check",
	Description: `Run the pre-flight checks only: internet connectivity, brew
availability, minimum macOS version, and free disk space.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     minMacOSFlag,
			Usage:    "Minimum macOS product version",
			Value:    defaultMinMacOS,
			OnlyOnce: true,
		},
		&cli.IntFlag{
			Name:     minFreeSpaceFlag,
			Usage:    "Minimum free disk space in GB",
			Value:    defaultMinFreeGigs,
			OnlyOnce: true,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		logger := ctxlog.Logger(ctx).With("command", cmd.Name)

		checks := []preflight.Check{
			&preflight.Connectivity{},
			&preflight.CommandInPath{Command: "brew"},
			&preflight.MacOSVersion{Minimum: cmd.String(minMacOSFlag)},
			&preflight.DiskSpace{Path: "/", MinBytes: uint64(cmd.Int(minFreeSpaceFlag)) << 30},
		}

		if err := preflight.Run(ctx, checks...); err != nil {
			logger.Error("preflight failed", "error", err)
			return cli.Exit("", 1)
		}

		fmt.Fprintln(cmd.Writer, color.Colorize("All preflight checks passed", color.FgGreen)) //nolint:errcheck

		return nil
	},
}
