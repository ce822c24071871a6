package backoff_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/katalvlaran/stakesearch/backoff"
	"github.com/stretchr/testify/require"
)

func TestRetry_EventuallySucceeds(t *testing.T) {
	n := 0
	var reported []error
	cfg := backoff.Config{
		Initial: time.Millisecond,
		MaxWait: 5 * time.Millisecond,
		Report: func(err error) error {
			reported = append(reported, err)
			return nil
		},
	}
	err := cfg.Retry(context.Background(), func() error {
		n++
		if n < 10 {
			return fmt.Errorf("test error %d", n)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 10, n)
	require.Len(t, reported, 9)
}

func TestRetry_ReportAborts(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := backoff.Config{Report: func(error) error { return permanent }}.Retry(context.Background(), func() error {
		calls++
		return errors.New("boom")
	})
	require.ErrorIs(t, err, permanent)
	require.Equal(t, 1, calls)
}

func TestRetry_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := backoff.Retry(ctx, func() error { called = true; return nil })
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err = backoff.Config{Report: func(error) error { return nil }, MaxWait: 5 * time.Millisecond}.
		Retry(ctx, func() error { return errors.New("down") })
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
