// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package brew provides the installer collaborators for the orchestrator:
// a Homebrew-backed implementation that shells out to the brew CLI, and a
// dry-run implementation that only logs intent.
package brew
