// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrDuplicateOutcome is returned when a task outcome is recorded twice.
var ErrDuplicateOutcome = errors.New("task outcome already recorded")

// Ledger is the record of a single orchestrator run. Every task appears
// exactly once after the run completes. A task is in the rollback set if
// and only if its outcome is failed.
//
// The ledger is owned by one run and mutated only through the
// orchestrator's aggregation path; the mutex serialises access for
// concurrent readers.
type Ledger struct {
	// RunID uniquely identifies the run in log output.
	RunID string

	mu       sync.Mutex
	outcomes map[string]Outcome
	order    []string
	rollback map[string]struct{}
}

// NewLedger returns an empty ledger with a fresh run ID.
func NewLedger() *Ledger {
	return &Ledger{
		RunID:    uuid.NewString(),
		outcomes: make(map[string]Outcome),
		rollback: make(map[string]struct{}),
	}
}

// record stores a task's outcome. Failed tasks are added to the rollback set.
func (l *Ledger) record(o Outcome) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.outcomes[o.Task.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateOutcome, o.Task.Name)
	}

	l.outcomes[o.Task.Name] = o
	l.order = append(l.order, o.Task.Name)

	if o.Status == StatusFailed {
		l.rollback[o.Task.Name] = struct{}{}
	}

	return nil
}

// Outcome returns the outcome recorded for the named task.
func (l *Ledger) Outcome(name string) (Outcome, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.outcomes[name]

	return o, ok
}

// Outcomes returns all recorded outcomes in dispatch order.
func (l *Ledger) Outcomes() []Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Outcome, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.outcomes[name])
	}

	return out
}

// RollbackSet returns the tasks requiring compensating uninstall, in
// dispatch order.
func (l *Ledger) RollbackSet() []Task {
	l.mu.Lock()
	defer l.mu.Unlock()

	tasks := make([]Task, 0, len(l.rollback))

	for _, name := range l.order {
		if _, ok := l.rollback[name]; ok {
			tasks = append(tasks, l.outcomes[name].Task)
		}
	}

	return tasks
}

// Len returns the number of recorded outcomes.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.outcomes)
}

// HasFailures reports whether any task ended in the failed state.
func (l *Ledger) HasFailures() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.rollback) > 0
}

// Counts returns the number of succeeded, failed, and skipped tasks.
func (l *Ledger) Counts() (succeeded, failed, skipped int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, o := range l.outcomes {
		switch o.Status {
		case StatusSucceeded:
			succeeded++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}

	return succeeded, failed, skipped
}
