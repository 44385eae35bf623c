// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import "time"

// Task is one package install/upgrade unit of work. Tasks are independent:
// no ordering is required between them.
type Task struct {
	// Name is the package identifier, e.g. a Homebrew formula or cask name.
	Name string `json:"name"`
	// Cask indicates the cask variant rather than a native formula.
	Cask bool `json:"cask,omitempty"`
}

// Label returns a human-readable identifier for the task.
func (t Task) Label() string {
	if t.Cask {
		return t.Name + " (cask)"
	}

	return t.Name
}

// Status is the terminal state of a task after its retry loop finishes.
type Status string

const (
	// StatusSucceeded indicates the install action succeeded within the retry budget.
	StatusSucceeded Status = "succeeded"
	// StatusFailed indicates the install action failed after exhausting retries.
	StatusFailed Status = "failed"
	// StatusSkipped indicates the task was never dispatched because the run
	// was interrupted. Skipped tasks have zero attempts and are never
	// rolled back.
	StatusSkipped Status = "skipped"
)

// Outcome records the terminal state of a single task. It is created once,
// after the task's retry loop terminates, and is immutable afterward.
type Outcome struct {
	Task     Task          `json:"task"`
	Status   Status        `json:"status"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}
