// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/brewherd/brewherd/internal/orchestrator"
	"github.com/brewherd/brewherd/internal/retry"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

var (
	// ErrManifestNotFound is returned when the manifest file cannot be read.
	ErrManifestNotFound = errors.New("manifest file not found")
	// ErrManifestUnmarshal is returned when the manifest YAML cannot be parsed.
	ErrManifestUnmarshal = errors.New("failed to unmarshal manifest")
	// ErrMissingKey is returned for each required setting absent from the manifest.
	ErrMissingKey = errors.New("missing required setting")
	// ErrInvalidSetting is returned when a setting is out of range.
	ErrInvalidSetting = errors.New("invalid setting")
	// ErrPackagesNotFound is returned when the packages file cannot be read.
	ErrPackagesNotFound = errors.New("packages file not found")
	// ErrNoPackages is returned when the manifest yields no tasks at all.
	ErrNoPackages = errors.New("no packages listed")
	// ErrDuplicatePackage is returned when the same package name is listed
	// more than once. Each task must appear in the run exactly once.
	ErrDuplicatePackage = errors.New("duplicate package")
)

// Settings are the run parameters supplied by the manifest. The first five
// keys are required; pointers distinguish an absent key from a zero value.
type Settings struct {
	MaxRetries      *int `yaml:"max_retries"`
	RetryDelay      *int `yaml:"retry_delay"` // seconds
	MaxParallelJobs *int `yaml:"max_parallel_jobs"`

	DryRun  *bool `yaml:"dry_run"`
	Verbose *bool `yaml:"verbose"`

	// Backoff selects the delay policy between retries: "linear" (default)
	// or "exponential".
	Backoff string `yaml:"backoff,omitempty"`
	// LogFile is the NDJSON log destination, truncated at process start.
	LogFile string `yaml:"log_file,omitempty"`
	// PackagesFile points at a plain-text package list, resolved relative
	// to the manifest location. Mutually exclusive with Packages.
	PackagesFile string `yaml:"packages_file,omitempty"`
	// Packages is an inline package list using the same name[:variant] syntax.
	Packages []string `yaml:"packages,omitempty"`
}

// Manifest is a fully loaded and validated configuration: settings plus the
// resolved task list, in manifest order.
type Manifest struct {
	Settings
	Tasks []orchestrator.Task
}

// Load reads and parses the manifest at path. A missing file or missing
// required key is a fatal startup error.
func Load(fsys afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrManifestNotFound, path, err)
	}

	return Parse(fsys, filepath.Dir(path), data)
}

// Parse builds a manifest from raw YAML. baseDir anchors a relative
// packages_file reference; pass "." for manifests fetched from a URL.
func Parse(fsys afero.Fs, baseDir string, data []byte) (*Manifest, error) {
	var s Settings

	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Join(ErrManifestUnmarshal, err)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	entries := s.Packages

	if s.PackagesFile != "" {
		pkgPath := s.PackagesFile
		if !filepath.IsAbs(pkgPath) {
			pkgPath = filepath.Join(baseDir, pkgPath)
		}

		listData, err := afero.ReadFile(fsys, pkgPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrPackagesNotFound, pkgPath, err)
		}

		entries = readPackageList(listData)
	}

	tasks, err := ParseEntries(entries)
	if err != nil {
		return nil, err
	}

	if len(tasks) == 0 {
		return nil, ErrNoPackages
	}

	return &Manifest{Settings: s, Tasks: tasks}, nil
}

// validate checks required keys and value ranges. All problems are reported
// together rather than one at a time.
func (s *Settings) validate() error {
	var errs *multierror.Error

	required := []struct {
		key string
		ok  bool
	}{
		{"max_retries", s.MaxRetries != nil},
		{"retry_delay", s.RetryDelay != nil},
		{"max_parallel_jobs", s.MaxParallelJobs != nil},
		{"dry_run", s.DryRun != nil},
		{"verbose", s.Verbose != nil},
	}

	for _, r := range required {
		if !r.ok {
			errs = multierror.Append(errs, fmt.Errorf("%w: %s", ErrMissingKey, r.key))
		}
	}

	if s.MaxRetries != nil && *s.MaxRetries < 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: max_retries must be >= 0", ErrInvalidSetting))
	}

	if s.RetryDelay != nil && *s.RetryDelay < 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: retry_delay must be >= 0", ErrInvalidSetting))
	}

	if s.MaxParallelJobs != nil && *s.MaxParallelJobs < 1 {
		errs = multierror.Append(errs, fmt.Errorf("%w: max_parallel_jobs must be >= 1", ErrInvalidSetting))
	}

	if s.Backoff != "" && s.Backoff != retry.PolicyLinear && s.Backoff != retry.PolicyExponential {
		errs = multierror.Append(errs, fmt.Errorf("%w: backoff must be %q or %q",
			ErrInvalidSetting, retry.PolicyLinear, retry.PolicyExponential))
	}

	return errs.ErrorOrNil()
}

// readPackageList extracts name[:variant] entries from a plain-text list.
// Blank lines and lines beginning with # are ignored.
func readPackageList(data []byte) []string {
	var entries []string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entries = append(entries, line)
	}

	return entries
}

// ParseEntries resolves name[:variant] entries into tasks. A package name
// listed twice is rejected, whatever its variants, so every task is
// dispatched exactly once.
func ParseEntries(entries []string) ([]orchestrator.Task, error) {
	tasks := make([]orchestrator.Task, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		task, err := DefaultRegistry.Parse(entry)
		if err != nil {
			return nil, err
		}

		if _, ok := seen[task.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePackage, task.Name)
		}

		seen[task.Name] = struct{}{}
		tasks = append(tasks, task)
	}

	return tasks, nil
}
