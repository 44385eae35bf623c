// Copyright (c) brewherd 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinear_BaseTimesAttemptPlusJitter(t *testing.T) {
	base := 100 * time.Millisecond
	bo := Linear(base)()

	for attempt := 1; attempt <= 5; attempt++ {
		d := bo.NextBackOff()

		lower := base * time.Duration(attempt)
		upper := lower + base

		assert.GreaterOrEqual(t, d, lower, "attempt %d", attempt)
		assert.Less(t, d, upper, "attempt %d", attempt)
	}
}

func TestLinear_ResetRestartsSequence(t *testing.T) {
	base := 50 * time.Millisecond
	bo := Linear(base)()

	_ = bo.NextBackOff()
	_ = bo.NextBackOff()
	bo.Reset()

	d := bo.NextBackOff()
	assert.GreaterOrEqual(t, d, base)
	assert.Less(t, d, 2*base)
}

func TestLinear_ZeroBase(t *testing.T) {
	bo := Linear(0)()

	assert.Zero(t, bo.NextBackOff())
	assert.Zero(t, bo.NextBackOff())
}

func TestExponential_DoublesEachAttempt(t *testing.T) {
	base := 100 * time.Millisecond
	bo := Exponential(base)()

	assert.Equal(t, base, bo.NextBackOff())
	assert.Equal(t, 2*base, bo.NextBackOff())
	assert.Equal(t, 4*base, bo.NextBackOff())
	assert.Equal(t, 8*base, bo.NextBackOff())
}

func TestExponential_FreshInstancePerFactoryCall(t *testing.T) {
	base := 10 * time.Millisecond
	factory := Exponential(base)

	first := factory()
	_ = first.NextBackOff()
	_ = first.NextBackOff()

	second := factory()
	assert.Equal(t, base, second.NextBackOff(), "factory must return independent instances")
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  string
		wantErr bool
	}{
		{name: "empty defaults to linear", policy: ""},
		{name: "linear", policy: PolicyLinear},
		{name: "exponential", policy: PolicyExponential},
		{name: "unknown", policy: "fibonacci", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := ParsePolicy(tc.policy, time.Second)

			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnknownPolicy)
				assert.Nil(t, f)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, f)
			assert.NotNil(t, f())
		})
	}
}
