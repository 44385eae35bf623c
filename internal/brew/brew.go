// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package brew

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/brewherd/brewherd/internal/ctxlog"
	"github.com/brewherd/brewherd/internal/orchestrator"
)

// maxOutputBytes bounds captured brew output. Homebrew can be chatty during
// cask downloads.
const maxOutputBytes = 1 * 1024 * 1024 // 1MB

var (
	// ErrBrewNotFound is returned when the brew executable is not on the PATH.
	ErrBrewNotFound = errors.New("brew executable not found")
	// ErrBrewCommand is returned when a brew invocation exits non-zero.
	ErrBrewCommand = errors.New("brew command failed")
)

var _ orchestrator.Actioner = (*Homebrew)(nil)

// Homebrew performs install and uninstall actions by shelling out to the
// brew CLI. Already-installed packages are upgraded rather than reinstalled.
type Homebrew struct {
	// Path is the brew executable. When empty it is resolved from PATH on
	// first use.
	Path string
}

// New returns a Homebrew actioner, resolving the brew executable from PATH.
func New() (*Homebrew, error) {
	path, err := exec.LookPath("brew")
	if err != nil {
		return nil, errors.Join(ErrBrewNotFound, err)
	}

	return &Homebrew{Path: path}, nil
}

// Install implements orchestrator.Actioner. It upgrades the package when a
// version is already installed, otherwise installs it.
func (h *Homebrew) Install(ctx context.Context, task orchestrator.Task) error {
	verb := "install"
	if h.installed(ctx, task) {
		verb = "upgrade"
	}

	args := []string{verb}
	if task.Cask {
		args = append(args, "--cask")
	}

	args = append(args, task.Name)

	return h.run(ctx, args...)
}

// Uninstall implements orchestrator.Actioner.
func (h *Homebrew) Uninstall(ctx context.Context, task orchestrator.Task) error {
	args := []string{"uninstall"}
	if task.Cask {
		args = append(args, "--cask")
	}

	args = append(args, task.Name)

	return h.run(ctx, args...)
}

// installed probes whether the package already has a version on disk.
func (h *Homebrew) installed(ctx context.Context, task orchestrator.Task) bool {
	args := []string{"list", "--versions"}
	if task.Cask {
		args = append(args, "--cask")
	}

	args = append(args, task.Name)

	return h.run(ctx, args...) == nil
}

func (h *Homebrew) run(ctx context.Context, args ...string) error {
	path := h.Path
	if path == "" {
		p, err := exec.LookPath("brew")
		if err != nil {
			return errors.Join(ErrBrewNotFound, err)
		}

		path = p
	}

	logger := ctxlog.Logger(ctx)
	logger.Debug("brew exec", "path", path, "args", args)

	cmd := exec.CommandContext(ctx, path, args...)
	buf := newBoundedBuffer(maxOutputBytes)
	cmd.Stdout = buf
	cmd.Stderr = buf
	cmd.Env = append(os.Environ(),
		"HOMEBREW_NO_AUTO_UPDATE=1",
		"HOMEBREW_NO_INSTALL_CLEANUP=1",
		"NONINTERACTIVE=1",
	)

	if err := cmd.Run(); err != nil {
		logger.Debug("brew exec failed", "args", args, "error", err, "output", buf.String())

		return fmt.Errorf("%w: brew %s: %w: %s",
			ErrBrewCommand, strings.Join(args, " "), err, lastLine(buf.String()))
	}

	return nil
}

// lastLine returns the final non-empty output line, which is where brew
// reports its error summary.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}

	return strings.TrimSpace(lines[len(lines)-1])
}
