// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/brewherd/brewherd/internal/ctxlog"
	"github.com/brewherd/brewherd/internal/retry"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrTasksFailed is returned when at least one task exhausted its retry budget.
	ErrTasksFailed = errors.New("one or more tasks failed")
	// ErrInterrupted is returned when the run was stopped before every task
	// was dispatched.
	ErrInterrupted = errors.New("run interrupted")
)

// Actioner performs the install and compensating uninstall for a task.
// Implementations may be slow and blocking; they are invoked from
// concurrent task executions.
type Actioner interface {
	// Install installs or upgrades the package for the task.
	Install(ctx context.Context, task Task) error
	// Uninstall removes the package for the task. It is invoked best-effort
	// during rollback; errors are logged but never escalate.
	Uninstall(ctx context.Context, task Task) error
}

// Orchestrator runs a finite list of independent install tasks with bounded
// concurrency, a per-task retry loop with pluggable backoff, and
// best-effort rollback of failed tasks.
type Orchestrator struct {
	actions     Actioner
	policy      retry.Factory
	retries     int
	maxParallel int64

	stopOnce sync.Once
	stopCh   chan struct{}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRetries sets the retry budget R: each task gets at most R+1 install
// attempts. Negative values are treated as zero.
func WithRetries(r int) Option {
	return func(o *Orchestrator) {
		o.retries = max(r, 0)
	}
}

// WithMaxParallel sets the concurrency limit C. Values below one are
// treated as one.
func WithMaxParallel(c int) Option {
	return func(o *Orchestrator) {
		o.maxParallel = int64(max(c, 1))
	}
}

// WithPolicy sets the backoff policy factory used between attempts.
func WithPolicy(f retry.Factory) Option {
	return func(o *Orchestrator) {
		o.policy = f
	}
}

// New creates an Orchestrator using the supplied actions. By default tasks
// run one at a time with no retries and a one second linear backoff base.
func New(actions Actioner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		actions:     actions,
		policy:      retry.Linear(time.Second),
		maxParallel: 1,
		stopCh:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Stop requests a graceful stop: no new tasks are dispatched and in-flight
// tasks finish their current attempt without further retries. Safe to call
// more than once and from any goroutine.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		close(o.stopCh)
	})
}

// Run executes every task exactly once, respecting the concurrency limit,
// and returns the completed ledger. One task failing never aborts its
// siblings. After all tasks settle, failed tasks receive exactly one
// compensating uninstall each.
//
// The returned error is ErrTasksFailed if any task failed, ErrInterrupted
// if the run was stopped early, and nil on full success. The ledger is
// valid in all cases.
func (o *Orchestrator) Run(ctx context.Context, tasks []Task) (*Ledger, error) {
	ledger := NewLedger()
	logger := ctxlog.Logger(ctx).With("runId", ledger.RunID)

	logger.Info("run started",
		"tasks", len(tasks),
		"maxParallel", o.maxParallel,
		"retries", o.retries)

	sem := semaphore.NewWeighted(o.maxParallel)
	outCh := make(chan Outcome)

	// Single aggregating goroutine owns all ledger mutation, so concurrent
	// task completions cannot race on shared state.
	aggDone := make(chan struct{})

	go func() {
		defer close(aggDone)

		for out := range outCh {
			if err := ledger.record(out); err != nil {
				logger.Error("outcome not recorded", "task", out.Task.Name, "error", err)
			}
		}
	}()

	// dispatchCtx aborts a blocked slot acquisition when a graceful stop is
	// requested; task attempts still receive the run context.
	dispatchCtx, dispatchCancel := context.WithCancel(ctx)
	defer dispatchCancel()

	go func() {
		select {
		case <-o.stopCh:
			dispatchCancel()
		case <-dispatchCtx.Done():
		}
	}()

	wg := &sync.WaitGroup{}
	interrupted := false

	for _, t := range tasks {
		if !interrupted {
			select {
			case <-o.stopCh:
				interrupted = true
			case <-ctx.Done():
				interrupted = true
			default:
			}
		}

		if interrupted {
			logger.Warn("task not dispatched, run interrupted", "task", t.Name)
			outCh <- Outcome{Task: t, Status: StatusSkipped}

			continue
		}

		// Blocks until a job slot frees; waiters are served first-come-first-dispatched.
		if err := sem.Acquire(dispatchCtx, 1); err != nil {
			interrupted = true

			logger.Warn("task not dispatched, run interrupted", "task", t.Name)
			outCh <- Outcome{Task: t, Status: StatusSkipped}

			continue
		}

		wg.Add(1)

		go func(t Task) {
			defer wg.Done()
			defer sem.Release(1)

			outCh <- o.runTask(ctx, logger, t)
		}(t)
	}

	wg.Wait()
	close(outCh)
	<-aggDone

	// A stop or cancellation that lands after the final dispatch must
	// still surface as an interrupted run.
	if o.stopping() || ctx.Err() != nil {
		interrupted = true
	}

	o.rollback(ctx, logger, ledger)

	succeeded, failed, skipped := ledger.Counts()
	logger.Info("run finished", "succeeded", succeeded, "failed", failed, "skipped", skipped)

	switch {
	case interrupted:
		return ledger, ErrInterrupted
	case ledger.HasFailures():
		return ledger, ErrTasksFailed
	default:
		return ledger, nil
	}
}

// runTask executes the sequential retry loop for a single task. An attempt,
// once started, runs to completion; stop and cancellation are checked
// between attempts.
func (o *Orchestrator) runTask(ctx context.Context, logger *slog.Logger, t Task) Outcome {
	bo := o.policy()
	start := time.Now()

	var lastErr error

	attempts := 0

	for a := 1; a <= o.retries+1; a++ {
		attempts = a

		logger.Info("install attempt", "task", t.Label(), "attempt", a)

		err := o.actions.Install(ctx, t)
		if err == nil {
			logger.Info("install succeeded", "task", t.Label(), "attempt", a)

			return Outcome{
				Task:     t,
				Status:   StatusSucceeded,
				Attempts: a,
				Duration: time.Since(start),
			}
		}

		lastErr = err
		logger.Warn("install attempt failed", "task", t.Label(), "attempt", a, "error", err)

		if a > o.retries {
			break
		}

		if o.stopping() || ctx.Err() != nil {
			logger.Warn("retries abandoned, run interrupted", "task", t.Label())
			break
		}

		delay := bo.NextBackOff()
		logger.Debug("waiting before retry", "task", t.Label(), "delay", delay)

		if !o.sleep(ctx, delay) {
			break
		}
	}

	return Outcome{
		Task:     t,
		Status:   StatusFailed,
		Attempts: attempts,
		Duration: time.Since(start),
		Err:      lastErr,
	}
}

// sleep waits for the backoff delay. It returns false if the wait was cut
// short by a stop request or context cancellation.
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-o.stopCh:
		return false
	case <-ctx.Done():
		return false
	}
}

func (o *Orchestrator) stopping() bool {
	select {
	case <-o.stopCh:
		return true
	default:
		return false
	}
}

// rollback invokes the compensating uninstall for every failed task,
// best-effort. It runs even when the context has been cancelled so that
// partially-installed packages are cleaned up.
func (o *Orchestrator) rollback(ctx context.Context, logger *slog.Logger, ledger *Ledger) {
	tasks := ledger.RollbackSet()
	if len(tasks) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)

	logger.Warn("rolling back failed tasks", "count", len(tasks))

	var errs *multierror.Error

	for _, t := range tasks {
		logger.Info("rollback", "task", t.Label())

		if err := o.actions.Uninstall(ctx, t); err != nil {
			logger.Warn("rollback failed", "task", t.Label(), "error", err)
			errs = multierror.Append(errs, err)
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		logger.Warn("rollback completed with errors", "failures", len(errs.Errors))
	}
}
