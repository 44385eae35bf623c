// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package orchestrator runs a batch of independent install tasks with a
// bounded job-slot limiter, a per-task retry loop with pluggable backoff,
// and a rollback ledger. One task failing never aborts its siblings; failed
// tasks receive a best-effort compensating uninstall after the run.
package orchestrator
