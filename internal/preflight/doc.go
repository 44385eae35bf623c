// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package preflight runs precondition checks before any install task is
// dispatched: connectivity, brew availability, minimum macOS version, and
// free disk space. Any failure aborts the run before it starts.
package preflight
