// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package install

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/brewherd/brewherd/internal/brew"
	"github.com/brewherd/brewherd/internal/ctxlog"
	"github.com/brewherd/brewherd/internal/manifest"
	"github.com/brewherd/brewherd/internal/orchestrator"
	"github.com/brewherd/brewherd/internal/preflight"
	"github.com/brewherd/brewherd/internal/report"
	"github.com/brewherd/brewherd/internal/retry"
	"github.com/brewherd/brewherd/internal/signalbroker"
	"github.com/hashicorp/go-getter/v2"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag          = "file"
	packagesFlag      = "packages"
	jobsFlag          = "jobs"
	retriesFlag       = "retries"
	retryDelayFlag    = "retry-delay"
	backoffFlag       = "backoff"
	dryRunFlag        = "dry-run"
	verboseFlag       = "verbose"
	logFileFlag       = "log-file"
	jsonFlag          = "json"
	skipPreflightFlag = "skip-preflight"
	minMacOSFlag      = "min-macos"

	defaultLogFile  = "brewherd.log"
	defaultMinMacOS = "11.0"

	// minFreeBytes is the free disk space required before installing anything.
	minFreeBytes = 1 << 30 // 1GB

	cliExitStr = ""
)

// ErrGetManifest is returned when the manifest cannot be fetched.
var ErrGetManifest = errors.New("failed to get manifest")

// InstallCmd runs the install tasks defined in a manifest.
var InstallCmd = &cli.Command{
	Name: "install",
	Description: `Install or upgrade the packages listed in a manifest.
The manifest is a YAML file supplying the retry budget, parallelism, and the
package list (inline or as a separate plain-text file of name[:variant]
entries, where blank lines and # comments are ignored).

Manifest URLs use Hashicorp's go-getter syntax, which allows fetching from
various sources. See https://github.com/hashicorp/go-getter.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      fileFlag,
			Aliases:   []string{"f"},
			Usage:     "Path or URL of the manifest file",
			Value:     "brewherd.yaml",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringSliceFlag{
			Name:  packagesFlag,
			Usage: "Package to install as name[:variant], repeatable (overrides the manifest list)",
		},
		&cli.IntFlag{
			Name:     jobsFlag,
			Aliases:  []string{"j"},
			Usage:    "Maximum number of parallel install jobs (overrides the manifest)",
			OnlyOnce: true,
		},
		&cli.IntFlag{
			Name:     retriesFlag,
			Usage:    "Retry budget per package (overrides the manifest)",
			OnlyOnce: true,
		},
		&cli.IntFlag{
			Name:     retryDelayFlag,
			Usage:    "Base delay between retries in seconds (overrides the manifest)",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     backoffFlag,
			Usage:    "Backoff policy between retries: linear or exponential (overrides the manifest)",
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     dryRunFlag,
			Usage:    "Log what would be installed without invoking brew",
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     verboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Enable debug logging",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:      logFileFlag,
			Usage:     "NDJSON log file, truncated at start",
			Value:     defaultLogFile,
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.BoolFlag{
			Name:     jsonFlag,
			Usage:    "Emit the final summary as JSON",
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     skipPreflightFlag,
			Usage:    "Skip the pre-flight checks",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     minMacOSFlag,
			Usage:    "Minimum macOS product version required by preflight",
			Value:    defaultMinMacOS,
			OnlyOnce: true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	m, err := loadManifest(ctx, afero.NewOsFs(), cmd.String(fileFlag))
	if err != nil {
		logger.Error("failed to load manifest", "file", cmd.String(fileFlag), "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	tasks := m.Tasks

	if cmd.IsSet(packagesFlag) {
		tasks, err = manifest.ParseEntries(cmd.StringSlice(packagesFlag))
		if err != nil {
			logger.Error("invalid package entry", "error", err)
			return cli.Exit(cliExitStr, 1)
		}
	}

	settings := effectiveSettings(cmd, m)

	if settings.verbose {
		ctxlog.LevelVar.Set(slog.LevelDebug)
	}

	// Route all further logging through the NDJSON file sink as well.
	sink, err := ctxlog.OpenLogFile(settings.logFile)
	if err != nil {
		logger.Error("failed to open log file", "file", settings.logFile, "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	defer sink.Close() //nolint:errcheck

	ctx = ctxlog.New(ctx, ctxlog.NewWithSink(cmd.Writer, sink))
	logger = ctxlog.Logger(ctx).With("command", cmd.Name)

	if !cmd.Bool(skipPreflightFlag) {
		checks := []preflight.Check{
			&preflight.Connectivity{},
			&preflight.CommandInPath{Command: "brew"},
			&preflight.MacOSVersion{Minimum: cmd.String(minMacOSFlag)},
			&preflight.DiskSpace{Path: "/", MinBytes: minFreeBytes},
		}

		if err := preflight.Run(ctx, checks...); err != nil {
			logger.Error("aborting, preflight failed", "error", err)
			return cli.Exit(cliExitStr, 1)
		}
	}

	policy, err := retry.ParsePolicy(settings.backoff, settings.retryDelay)
	if err != nil {
		logger.Error("invalid backoff policy", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	var actions orchestrator.Actioner

	switch settings.dryRun {
	case true:
		logger.Info("dry-run mode, no packages will be installed")

		actions = brew.DryRun{}
	default:
		actions, err = brew.New()
		if err != nil {
			logger.Error("brew not available", "error", err)
			return cli.Exit(cliExitStr, 1)
		}
	}

	orch := orchestrator.New(actions,
		orchestrator.WithMaxParallel(settings.jobs),
		orchestrator.WithRetries(settings.retries),
		orchestrator.WithPolicy(policy),
	)

	// A first interrupt stops dispatching new tasks; in-flight installs
	// finish their current attempt. The watchdog in main handles the
	// second interrupt by cancelling the context.
	sigCh := signalbroker.New(ctx)
	runDone := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Warn("interrupt received, finishing in-flight tasks", "signal", sig.String())
			orch.Stop()
		case <-runDone:
		}
	}()

	ledger, runErr := orch.Run(ctx, tasks)
	close(runDone)

	if err := writeSummary(cmd, ledger); err != nil {
		logger.Error("failed to write summary", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	if runErr != nil {
		logger.Error("run did not complete cleanly", "error", runErr)
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

// runSettings are the effective run parameters after applying flag
// overrides on top of the manifest.
type runSettings struct {
	jobs       int
	retries    int
	retryDelay time.Duration
	backoff    string
	dryRun     bool
	verbose    bool
	logFile    string
}

func effectiveSettings(cmd *cli.Command, m *manifest.Manifest) runSettings {
	s := runSettings{
		jobs:       *m.MaxParallelJobs,
		retries:    *m.MaxRetries,
		retryDelay: time.Duration(*m.RetryDelay) * time.Second,
		backoff:    m.Backoff,
		dryRun:     *m.DryRun,
		verbose:    *m.Verbose,
		logFile:    cmd.String(logFileFlag),
	}

	if cmd.IsSet(jobsFlag) {
		s.jobs = cmd.Int(jobsFlag)
	}

	if cmd.IsSet(retriesFlag) {
		s.retries = cmd.Int(retriesFlag)
	}

	if cmd.IsSet(retryDelayFlag) {
		s.retryDelay = time.Duration(cmd.Int(retryDelayFlag)) * time.Second
	}

	if cmd.IsSet(backoffFlag) {
		s.backoff = cmd.String(backoffFlag)
	}

	if cmd.Bool(dryRunFlag) {
		s.dryRun = true
	}

	if cmd.Bool(verboseFlag) {
		s.verbose = true
	}

	if !cmd.IsSet(logFileFlag) && m.LogFile != "" {
		s.logFile = m.LogFile
	}

	return s
}

func writeSummary(cmd *cli.Command, ledger *orchestrator.Ledger) error {
	if cmd.Bool(jsonFlag) {
		return report.WriteJSON(cmd.Writer, ledger)
	}

	return report.WriteText(cmd.Writer, ledger)
}

// loadManifest reads the manifest from a local path, falling back to
// go-getter for URLs.
func loadManifest(ctx context.Context, fsys afero.Fs, src string) (*manifest.Manifest, error) {
	if ok, _ := afero.Exists(fsys, src); ok {
		return manifest.Load(fsys, src)
	}

	data, err := getManifest(ctx, src)
	if err != nil {
		return nil, err
	}

	return manifest.Parse(fsys, ".", data)
}

// getManifest retrieves the manifest content from the specified URL using
// Hashicorp's go-getter. The temporary file is removed after reading.
func getManifest(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, ErrGetManifest
	}

	tmpDir, err := os.MkdirTemp("", "brewherd-getter-*")
	if err != nil {
		return nil, errors.Join(ErrGetManifest, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetManifest, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	dst := filepath.Join(tmpDir, "manifest.yaml")

	req := &getter.Request{
		Src:     url,
		Dst:     dst,
		Pwd:     wd,
		GetMode: getter.ModeFile,
	}

	if _, err := client.Get(ctx, req); err != nil {
		return nil, errors.Join(ErrGetManifest, err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGetManifest, err)
	}

	return data, nil
}
