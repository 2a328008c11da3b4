package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config holds the retry budget and backoff curve.
type Config struct {
	Attempts int           // total attempts, including the first
	Initial  time.Duration // delay before the second attempt
	Cap      time.Duration // upper bound on the delay
	Factor   float64       // delay multiplier per attempt
}

// DefaultConfig returns the standard budget: three attempts, 1s initial
// delay doubling up to 10s.
func DefaultConfig() Config {
	return Config{
		Attempts: 3,
		Initial:  1 * time.Second,
		Cap:      10 * time.Second,
		Factor:   2.0,
	}
}

// Do runs op until it succeeds, the attempt budget is exhausted, or the
// context is cancelled. The delay between attempts grows by Factor up to
// Cap. Errors wrapped with Permanent are returned without further attempts.
func Do(ctx context.Context, cfg Config, op func(ctx context.Context) error) error {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}

	delay := cfg.Initial
	var lastErr error

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if IsPermanent(err) {
			return err
		}
		if attempt == cfg.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("cancelled after %d attempts: %w", attempt, ctx.Err())
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.Factor)
		if cfg.Cap > 0 && delay > cfg.Cap {
			delay = cfg.Cap
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", cfg.Attempts, lastErr)
}

// PermanentError marks an error as not worth retrying.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so that Do stops retrying when it is returned.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var perm *PermanentError
	return errors.As(err, &perm)
}
