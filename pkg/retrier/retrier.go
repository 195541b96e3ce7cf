package retrier

import (
	"context"
	"math/rand"
	"time"
)

// Backoff retries an operation with exponentially growing delays and jitter.
// The zero value is not useful; start from Default.
type Backoff struct {
	Attempts int           // total attempts, including the first one
	Initial  time.Duration // delay before the second attempt
	Max      time.Duration // delay cap
	Factor   float64       // growth multiplier
	Jitter   float64       // fraction of the delay randomized in both directions
}

// Default returns a backoff tuned for short-lived HTTP fetches.
func Default() Backoff {
	return Backoff{
		Attempts: 3,
		Initial:  500 * time.Millisecond,
		Max:      5 * time.Second,
		Factor:   2.0,
		Jitter:   0.2,
	}
}

// Do runs fn until it succeeds or attempts are exhausted. It returns the last
// error and honors ctx cancellation between attempts.
func (b Backoff) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := b.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := b.Initial

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			jitter := (rand.Float64()*2 - 1) * b.Jitter * float64(delay)
			sleep := time.Duration(float64(delay) + jitter)
			if sleep < 0 {
				sleep = 0
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleep):
			}

			delay = time.Duration(float64(delay) * b.Factor)
			if delay > b.Max {
				delay = b.Max
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
	}

	return err
}

// DoWithData runs fn with retries and returns its value.
func DoWithData[T any](ctx context.Context, b Backoff, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := b.Do(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}
