// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package manifest

import (
	"testing"

	"github.com/brewherd/brewherd/internal/orchestrator"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSettings = `max_retries: 3
retry_delay: 5
max_parallel_jobs: 4
dry_run: false
verbose: true
`

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

func TestLoad_WithPackagesFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/etc/brewherd/brewherd.yaml", validSettings+"packages_file: packages.txt\n")
	writeFile(t, fsys, "/etc/brewherd/packages.txt", `
# essentials
wget
jq

# apps
firefox:cask
rectangle:cask
git:formula
`)

	m, err := Load(fsys, "/etc/brewherd/brewherd.yaml")
	require.NoError(t, err)

	assert.Equal(t, 3, *m.MaxRetries)
	assert.Equal(t, 5, *m.RetryDelay)
	assert.Equal(t, 4, *m.MaxParallelJobs)
	assert.False(t, *m.DryRun)
	assert.True(t, *m.Verbose)

	want := []orchestrator.Task{
		{Name: "wget"},
		{Name: "jq"},
		{Name: "firefox", Cask: true},
		{Name: "rectangle", Cask: true},
		{Name: "git"},
	}
	assert.Equal(t, want, m.Tasks)
}

func TestLoad_WithInlinePackages(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "brewherd.yaml", validSettings+`packages:
  - wget
  - docker:cask
`)

	m, err := Load(fsys, "brewherd.yaml")
	require.NoError(t, err)

	assert.Equal(t, []orchestrator.Task{
		{Name: "wget"},
		{Name: "docker", Cask: true},
	}, m.Tasks)
}

func TestLoad_MissingFileIsFatal(t *testing.T) {
	fsys := afero.NewMemMapFs()

	_, err := Load(fsys, "nope.yaml")
	require.ErrorIs(t, err, ErrManifestNotFound)
}

func TestLoad_MissingPackagesFileIsFatal(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "brewherd.yaml", validSettings+"packages_file: missing.txt\n")

	_, err := Load(fsys, "brewherd.yaml")
	require.ErrorIs(t, err, ErrPackagesNotFound)
}

func TestLoad_MissingRequiredKeysAllReported(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "brewherd.yaml", `max_retries: 1
packages: [wget]
`)

	_, err := Load(fsys, "brewherd.yaml")
	require.ErrorIs(t, err, ErrMissingKey)

	for _, key := range []string{"retry_delay", "max_parallel_jobs", "dry_run", "verbose"} {
		assert.ErrorContains(t, err, key)
	}

	assert.NotContains(t, err.Error(), "max_retries")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		settings string
	}{
		{
			name: "negative max_retries",
			settings: `max_retries: -1
retry_delay: 5
max_parallel_jobs: 4
dry_run: false
verbose: false
`,
		},
		{
			name: "negative retry_delay",
			settings: `max_retries: 0
retry_delay: -5
max_parallel_jobs: 4
dry_run: false
verbose: false
`,
		},
		{
			name: "zero max_parallel_jobs",
			settings: `max_retries: 0
retry_delay: 0
max_parallel_jobs: 0
dry_run: false
verbose: false
`,
		},
		{
			name: "unknown backoff",
			settings: validSettings + `backoff: fibonacci
`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			writeFile(t, fsys, "brewherd.yaml", tc.settings+"packages: [wget]\n")

			_, err := Load(fsys, "brewherd.yaml")
			require.ErrorIs(t, err, ErrInvalidSetting)
		})
	}
}

func TestLoad_NoPackages(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "brewherd.yaml", validSettings)

	_, err := Load(fsys, "brewherd.yaml")
	require.ErrorIs(t, err, ErrNoPackages)
}

func TestLoad_DuplicatePackageRejected(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "brewherd.yaml", validSettings+`packages:
  - wget
  - jq
  - wget
`)

	_, err := Load(fsys, "brewherd.yaml")
	require.ErrorIs(t, err, ErrDuplicatePackage)
	assert.ErrorContains(t, err, "wget")
}

func TestParseEntries(t *testing.T) {
	tasks, err := ParseEntries([]string{"wget", "firefox:cask"})
	require.NoError(t, err)
	assert.Equal(t, []orchestrator.Task{
		{Name: "wget"},
		{Name: "firefox", Cask: true},
	}, tasks)

	_, err = ParseEntries([]string{"thing:flatpak"})
	require.ErrorIs(t, err, ErrUnknownVariant)

	// The same name with different variants still collides: outcomes are
	// keyed by package name.
	_, err = ParseEntries([]string{"docker", "docker:cask"})
	require.ErrorIs(t, err, ErrDuplicatePackage)
}

func TestLoad_MalformedYAML(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "brewherd.yaml", "max_retries: [not an int\n")

	_, err := Load(fsys, "brewherd.yaml")
	require.ErrorIs(t, err, ErrManifestUnmarshal)
}

func TestRegistry_Parse(t *testing.T) {
	tests := []struct {
		entry   string
		want    orchestrator.Task
		wantErr error
	}{
		{entry: "wget", want: orchestrator.Task{Name: "wget"}},
		{entry: "git:formula", want: orchestrator.Task{Name: "git"}},
		{entry: "firefox:cask", want: orchestrator.Task{Name: "firefox", Cask: true}},
		{entry: " spaced : cask ", want: orchestrator.Task{Name: "spaced", Cask: true}},
		{entry: "thing:flatpak", wantErr: ErrUnknownVariant},
		{entry: ":cask", wantErr: ErrEmptyEntry},
		{entry: "", wantErr: ErrEmptyEntry},
	}

	for _, tc := range tests {
		t.Run(tc.entry, func(t *testing.T) {
			got, err := DefaultRegistry.Parse(tc.entry)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
