// SPDX-License-Identifier: MIT

// Package backoff turns repeated failures into randomised exponential delays.
// The stakeholder uses it to keep dialling a coordinator that is not up yet.
package backoff

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// Retry calls try until it returns nil, using the default Config.
//
// Retry tries forever unless ctx is cancelled, in which case it returns
// ctx.Err(). If ctx is already cancelled, try is never called.
func Retry(ctx context.Context, try func() error) error {
	return Config{}.Retry(ctx, try)
}

// Config parameterises Retry.
//
// Report, if non-nil, receives every failure. Returning a non-nil error from
// Report aborts the loop with that error, for failures waiting cannot fix.
// Without Report, failures are logged through slog at warn level.
//
// Initial is the first delay (default 10ms); each delay grows by a random
// factor in [1,2) and is capped by MaxWait when MaxWait > 0. A delay is never
// shorter than the attempt that preceded it.
type Config struct {
	Report  func(error) error
	MaxWait time.Duration
	Initial time.Duration
}

// defaultInitial is the first backoff delay when Config.Initial is zero.
const defaultInitial = 10 * time.Millisecond

func defaultReport(err error) error {
	slog.Warn("retrying", "err", err)
	return nil
}

// Retry calls try until it succeeds, backing off between attempts.
func (c Config) Retry(ctx context.Context, try func() error) error {
	if c.Report == nil {
		c.Report = defaultReport
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	backoff := c.Initial
	if backoff <= 0 {
		backoff = defaultInitial
	}
	first := true
	for {
		before := time.Now()
		err := try()
		if err == nil {
			return nil
		}
		elapsed := time.Since(before)

		if err = c.Report(err); err != nil {
			return err
		}

		if backoff < elapsed {
			backoff = elapsed
		}
		if !first {
			backoff += time.Duration(rand.Int63n(int64(backoff)))
		}
		first = false
		if c.MaxWait > 0 && backoff > c.MaxWait {
			backoff = c.MaxWait
		}

		t := time.NewTimer(backoff)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
}
