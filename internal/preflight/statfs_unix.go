// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build darwin || linux

package preflight

import "syscall"

// availableBytes reports free space for unprivileged users on the
// filesystem containing path.
func availableBytes(path string) (uint64, error) {
	var st syscall.Statfs_t

	if err := syscall.Statfs(path, &st); err != nil {
		return 0, err
	}

	return st.Bavail * uint64(st.Bsize), nil
}
