// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package brewherd provides the version and commit information for the brewherd application.
package brewherd

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "unknown"
)
