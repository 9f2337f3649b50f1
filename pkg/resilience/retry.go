// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package resilience provides the retry, timeout, circuit-breaker and
// fallback boundaries wrapped around capability invocations and provider
// calls.
package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/cuttlefish-labs/swarm/pkg/errors"
)

// RetryConfig bounds repeated attempts against a flaky dependency with
// exponential backoff.
type RetryConfig struct {
	// MaxAttempts includes the first try. Values below 1 mean one attempt.
	MaxAttempts int

	// InitialDelay is the backoff before the second attempt.
	InitialDelay time.Duration

	// MaxDelay caps the grown backoff. Zero means uncapped.
	MaxDelay time.Duration

	// Multiplier grows the delay between attempts (default 2).
	Multiplier float64

	// Jitter in [0, 1] randomizes each delay by up to that fraction.
	Jitter float64

	// IsRecoverable decides whether an error is worth another attempt.
	// Nil honors the SwarmError Recoverable flag and treats any other
	// error as transient.
	IsRecoverable func(error) bool
}

// DefaultRetryConfig suits short provider calls: three attempts spread
// over roughly a third of a second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Do runs fn until it succeeds, returns a non-recoverable error, exhausts
// the attempts or ctx ends. The last error seen is returned.
func (rc RetryConfig) Do(ctx context.Context, fn func() error) error {
	attempts := rc.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	recoverable := rc.IsRecoverable
	if recoverable == nil {
		recoverable = errRecoverable
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.New(errors.CodeTimeout, "retry canceled", ctx.Err()).
					WithContext("attempt", attempt).
					WithContext("max_attempts", attempts)
			case <-time.After(rc.backoff(attempt)):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !recoverable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// backoff returns the delay before the given attempt (1 = first retry),
// grown exponentially and randomized by the jitter fraction.
func (rc RetryConfig) backoff(attempt int) time.Duration {
	multiplier := rc.Multiplier
	if multiplier == 0 {
		multiplier = 2.0
	}
	delay := time.Duration(float64(rc.InitialDelay) * math.Pow(multiplier, float64(attempt-1)))
	if rc.MaxDelay > 0 && delay > rc.MaxDelay {
		delay = rc.MaxDelay
	}
	if rc.Jitter > 0 {
		delay += time.Duration((rand.Float64()*2 - 1) * rc.Jitter * float64(delay))
		if delay < 0 {
			delay = 0
		}
	}
	return delay
}

func errRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(*errors.SwarmError); ok {
		return se.Recoverable
	}
	return true
}
