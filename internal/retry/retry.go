// Package retry runs an operation with jittered exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// Retryable decides whether a failed attempt is worth repeating.
	// Nil retries every error except context cancellation.
	Retryable func(error) bool
}

// DefaultConfig returns the default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Do executes fn until it succeeds, returns a non-retryable error, or runs
// out of attempts. op names the operation in log lines.
func Do(ctx context.Context, cfg Config, logger *slog.Logger, op string, fn func() error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !cfg.retryable(err) {
			return err
		}

		if logger != nil {
			logger.Warn("attempt failed",
				slog.String("op", op),
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", cfg.MaxAttempts),
				slog.String("error", err.Error()),
			)
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(withJitter(delay)):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("%s: all %d attempts failed: %w", op, cfg.MaxAttempts, lastErr)
}

func (c Config) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if c.Retryable == nil {
		return true
	}
	return c.Retryable(err)
}

// withJitter adds up to a quarter of d to spread out concurrent retries.
func withJitter(d time.Duration) time.Duration {
	if d/4 <= 0 {
		return d
	}
	return d + time.Duration(rand.Int63n(int64(d/4)))
}
