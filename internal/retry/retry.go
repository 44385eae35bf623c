// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package retry provides the backoff policies used between install attempts.
// Policies are expressed as the backoff.BackOff interface so the delay
// function is pluggable, not a hardcoded formula.
package retry

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v3"
)

// ErrUnknownPolicy is returned when a policy name is not recognised.
var ErrUnknownPolicy = errors.New("unknown backoff policy")

// Policy names accepted in configuration.
const (
	PolicyLinear      = "linear"
	PolicyExponential = "exponential"
)

// Factory returns a fresh BackOff for a single task's retry loop.
// Each task execution must use its own instance as BackOff implementations
// are stateful.
type Factory func() backoff.BackOff

// Linear returns a factory for the linear-with-jitter policy:
// base * attempt + jitter, with jitter uniform in [0, base).
func Linear(base time.Duration) Factory {
	return func() backoff.BackOff {
		return &linearBackOff{base: base}
	}
}

// Exponential returns a factory for the exponential policy:
// base * 2^(attempt-1), without randomization.
func Exponential(base time.Duration) Factory {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = base
		b.RandomizationFactor = 0
		b.Multiplier = 2
		b.MaxInterval = time.Duration(1<<62 - 1)
		b.MaxElapsedTime = 0 // the retry budget bounds attempts, not elapsed time
		b.Reset()

		return b
	}
}

// ParsePolicy maps a configured policy name to a factory.
// An empty name selects the linear policy.
func ParsePolicy(name string, base time.Duration) (Factory, error) {
	switch name {
	case "", PolicyLinear:
		return Linear(base), nil
	case PolicyExponential:
		return Exponential(base), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, name)
	}
}

var _ backoff.BackOff = (*linearBackOff)(nil)

// linearBackOff implements base * attempt + jitter.
type linearBackOff struct {
	base    time.Duration
	attempt int
}

// NextBackOff implements the backoff.BackOff interface.
func (l *linearBackOff) NextBackOff() time.Duration {
	l.attempt++

	jitter := time.Duration(0)
	if l.base > 0 {
		jitter = time.Duration(rand.Int64N(int64(l.base)))
	}

	return l.base*time.Duration(l.attempt) + jitter
}

// Reset implements the backoff.BackOff interface.
func (l *linearBackOff) Reset() {
	l.attempt = 0
}
