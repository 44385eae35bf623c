// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package brew

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/brewherd/brewherd/internal/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedBuffer_TruncatesAtLimit(t *testing.T) {
	buf := newBoundedBuffer(10)

	n, err := buf.Write([]byte("0123456789abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 16, n, "writes past the limit must still report full length")
	assert.Equal(t, "0123456789", buf.String())

	n, err = buf.Write([]byte("more"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "0123456789", buf.String())
}

func TestBoundedBuffer_UnderLimit(t *testing.T) {
	buf := newBoundedBuffer(64)

	_, err := buf.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = buf.Write([]byte("world"))
	require.NoError(t, err)

	assert.Equal(t, "hello world", buf.String())
}

func TestLastLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "single line", in: "Error: nope\n", want: "Error: nope"},
		{name: "multi line", in: "downloading...\ninstalling...\nError: checksum mismatch\n", want: "Error: checksum mismatch"},
		{name: "trailing blanks", in: "Error: nope\n\n\n", want: "Error: nope"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, lastLine(tc.in))
		})
	}
}

func TestDryRun_NeverFails(t *testing.T) {
	ctx := context.Background()
	task := orchestrator.Task{Name: "firefox", Cask: true}

	assert.NoError(t, DryRun{}.Install(ctx, task))
	assert.NoError(t, DryRun{}.Uninstall(ctx, task))
}

// requireTool skips the test when a helper executable is unavailable, so the
// suite still passes on minimal CI images.
func requireTool(t *testing.T, name string) string {
	t.Helper()

	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not available: %v", name, err)
	}

	return path
}

func TestRun_SuccessfulCommand(t *testing.T) {
	h := &Homebrew{Path: requireTool(t, "true")}

	require.NoError(t, h.run(context.Background(), "list", "--versions", "wget"))
}

func TestRun_FailedCommandWrapsLastOutputLine(t *testing.T) {
	// sh -c lets the fake brew emit output before exiting non-zero.
	sh := requireTool(t, "sh")
	h := &Homebrew{Path: sh}

	err := h.run(context.Background(), "-c", "echo downloading; echo 'Error: no bottle' >&2; exit 1")
	require.ErrorIs(t, err, ErrBrewCommand)
	assert.Contains(t, err.Error(), "Error: no bottle")
}

func TestRun_MissingExecutable(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	h := &Homebrew{}
	err := h.run(context.Background(), "install", "wget")
	require.ErrorIs(t, err, ErrBrewNotFound)
}

func TestInstall_FailsAgainstFalseBinary(t *testing.T) {
	// With the probe and the install both failing, Install surfaces the
	// install error rather than masking it as an upgrade.
	h := &Homebrew{Path: requireTool(t, "false")}

	err := h.Install(context.Background(), orchestrator.Task{Name: "wget"})
	require.ErrorIs(t, err, ErrBrewCommand)
	assert.True(t, strings.Contains(err.Error(), "install wget"))
}

func TestUninstall_FailsAgainstFalseBinary(t *testing.T) {
	h := &Homebrew{Path: requireTool(t, "false")}

	err := h.Uninstall(context.Background(), orchestrator.Task{Name: "firefox", Cask: true})
	require.ErrorIs(t, err, ErrBrewCommand)
	assert.True(t, strings.Contains(err.Error(), "uninstall --cask firefox"))
}
