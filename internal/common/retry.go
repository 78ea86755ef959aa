package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/futurizm/futurizm/internal/service"
)

// ErrMaxRetries indicates that all retry attempts have been exhausted.
var ErrMaxRetries = errors.New("max retries exceeded")

// RetryableError wraps an error with retry-specific metadata.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Sleeper blocks for the given duration or until the context is done.
// A non-default implementation lets tests observe and skip backoff waits.
type Sleeper func(ctx context.Context, d time.Duration) error

// DefaultSleeper waits on a timer, honoring context cancellation.
func DefaultSleeper(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// WithRetry executes an operation with configurable retry behavior.
// The delay grows by opts.Multiplier after each failed attempt and is
// never slept after the final attempt.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	return WithRetrySleeper(ctx, operation, opts, DefaultSleeper)
}

// WithRetrySleeper is WithRetry with an injectable backoff sleeper.
func WithRetrySleeper(ctx context.Context, operation func() error, opts service.RetryOptions, sleep Sleeper) error {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2.0
	}
	if sleep == nil {
		sleep = DefaultSleeper
	}

	delay := opts.InitialDelay

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		// Check if error is retryable
		var retryableErr *RetryableError
		if errors.As(err, &retryableErr) && !retryableErr.Retryable {
			return err
		}

		if attempt == opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %v", ErrMaxRetries, opts.MaxAttempts, err)
		}

		slog.Warn("Operation failed, retrying",
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"delay", delay,
			"error", err)

		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}

		delay = time.Duration(float64(delay) * opts.Multiplier)
		if delay > opts.MaxDelay {
			delay = opts.MaxDelay
		}
	}

	return ErrMaxRetries
}
