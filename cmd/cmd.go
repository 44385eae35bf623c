// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"os"

	"github.com/brewherd/brewherd/cmd/check"
	"github.com/brewherd/brewherd/cmd/install"
	"github.com/brewherd/brewherd/cmd/show"
	"github.com/urfave/cli/v3"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		install.InstallCmd,
		check.CheckCmd,
		show.ShowCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "brewherd",
	Description: `Brewherd installs and upgrades a configurable list of Homebrew formulae
and casks. It runs pre-flight checks, then dispatches installs to a bounded
pool of parallel jobs, retrying failed installs with configurable backoff and
rolling back packages that could not be installed.`,
	Usage:                 "brewherd install -f manifest.yaml",
	Copyright:             "Copyright (c) brewherd 2025. All rights reserved.",
	EnableShellCompletion: true,
}
