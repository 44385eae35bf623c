// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"
)

var (
	// ErrNoConnectivity is returned when none of the probe hosts are reachable.
	ErrNoConnectivity = errors.New("no internet connectivity")
	// ErrInsufficientDisk is returned when free disk space is below the minimum.
	ErrInsufficientDisk = errors.New("insufficient disk space")
	// ErrVersionTooOld is returned when the OS version is below the minimum.
	ErrVersionTooOld = errors.New("operating system version below minimum")
)

const dialTimeout = 5 * time.Second

// defaultProbeHosts are well-known endpoints used for the connectivity
// check. Reaching any one of them is sufficient.
var defaultProbeHosts = []string{
	"github.com:443",
	"raw.githubusercontent.com:443",
	"1.1.1.1:443",
}

var _ Check = (*Connectivity)(nil)

// Connectivity verifies that at least one probe host accepts a TCP
// connection.
type Connectivity struct {
	// Hosts are host:port endpoints to probe; defaults to well-known hosts.
	Hosts []string
	// DialContext allows substituting the dialer in tests.
	DialContext func(ctx context.Context, network, addr string) (net.Conn, error)
}

// Name implements Check.
func (c *Connectivity) Name() string { return "connectivity" }

// Run implements Check.
func (c *Connectivity) Run(ctx context.Context) error {
	hosts := c.Hosts
	if len(hosts) == 0 {
		hosts = defaultProbeHosts
	}

	dial := c.DialContext
	if dial == nil {
		dial = (&net.Dialer{Timeout: dialTimeout}).DialContext
	}

	var errs []error

	for _, host := range hosts {
		conn, err := dial(ctx, "tcp", host)
		if err == nil {
			_ = conn.Close()

			return nil
		}

		errs = append(errs, err)
	}

	return errors.Join(ErrNoConnectivity, errors.Join(errs...))
}

var _ Check = (*CommandInPath)(nil)

// CommandInPath verifies that an executable can be resolved from PATH.
type CommandInPath struct {
	// Command is the executable name, e.g. "brew".
	Command string
	// LookPath allows substituting the resolver in tests.
	LookPath func(file string) (string, error)
}

// Name implements Check.
func (c *CommandInPath) Name() string { return c.Command + " in path" }

// Run implements Check.
func (c *CommandInPath) Run(_ context.Context) error {
	look := c.LookPath
	if look == nil {
		look = exec.LookPath
	}

	_, err := look(c.Command)

	return err
}

var _ Check = (*MacOSVersion)(nil)

// MacOSVersion verifies that the host macOS release meets a minimum
// version. The current version is read from sw_vers.
type MacOSVersion struct {
	// Minimum is the lowest acceptable product version, e.g. "12.0".
	Minimum string
	// ProductVersion allows substituting the sw_vers probe in tests.
	ProductVersion func(ctx context.Context) (string, error)
}

// Name implements Check.
func (c *MacOSVersion) Name() string { return "macos version" }

// Run implements Check.
func (c *MacOSVersion) Run(ctx context.Context) error {
	probe := c.ProductVersion
	if probe == nil {
		probe = swVersProductVersion
	}

	current, err := probe(ctx)
	if err != nil {
		return err
	}

	have, err := goversion.NewVersion(strings.TrimSpace(current))
	if err != nil {
		return fmt.Errorf("parsing product version %q: %w", current, err)
	}

	want, err := goversion.NewVersion(c.Minimum)
	if err != nil {
		return fmt.Errorf("parsing minimum version %q: %w", c.Minimum, err)
	}

	if have.LessThan(want) {
		return fmt.Errorf("%w: have %s, need %s", ErrVersionTooOld, have, want)
	}

	return nil
}

func swVersProductVersion(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "sw_vers", "-productVersion").Output()
	if err != nil {
		return "", fmt.Errorf("sw_vers: %w", err)
	}

	return string(out), nil
}

var _ Check = (*DiskSpace)(nil)

// DiskSpace verifies that the filesystem containing Path has at least
// MinBytes available.
type DiskSpace struct {
	// Path is a location on the filesystem to probe, e.g. "/".
	Path string
	// MinBytes is the minimum acceptable free space.
	MinBytes uint64
	// AvailableBytes allows substituting the statfs probe in tests.
	AvailableBytes func(path string) (uint64, error)
}

// Name implements Check.
func (c *DiskSpace) Name() string { return "disk space" }

// Run implements Check.
func (c *DiskSpace) Run(_ context.Context) error {
	probe := c.AvailableBytes
	if probe == nil {
		probe = availableBytes
	}

	path := c.Path
	if path == "" {
		path = "/"
	}

	avail, err := probe(path)
	if err != nil {
		return err
	}

	if avail < c.MinBytes {
		return fmt.Errorf("%w: %d bytes available, %d required", ErrInsufficientDisk, avail, c.MinBytes)
	}

	return nil
}
