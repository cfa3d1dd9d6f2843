// Package retry runs operations under an exponential backoff policy that only
// retries errors a caller-supplied classifier marks as transient.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMaxRetries   = 5
	defaultInitialDelay = 100 * time.Millisecond
	defaultMaxDelay     = 10 * time.Second
	delayMultiplier     = 2
)

// Config configures retry behavior.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:   defaultMaxRetries,
		InitialDelay: defaultInitialDelay,
		MaxDelay:     defaultMaxDelay,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}

	if c.InitialDelay <= 0 {
		c.InitialDelay = defaultInitialDelay
	}

	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultMaxDelay
	}

	if c.MaxDelay < c.InitialDelay {
		c.MaxDelay = c.InitialDelay
	}

	return c
}

// Classifier reports whether err is worth retrying.
type Classifier func(err error) bool

// NotifyFunc is called before each retry with the failed attempt's error and
// the delay until the next attempt.
type NotifyFunc func(err error, delay time.Duration)

// Do runs op until it succeeds, returns a non-retryable error, the retry
// budget is spent, or ctx is done. It returns the last error from op, or the
// context error when ctx ends the loop.
func Do(ctx context.Context, cfg Config, retryable Classifier, notify NotifyFunc, op func(ctx context.Context) error) error {
	cfg = cfg.withDefaults()

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = cfg.InitialDelay
	exp.MaxInterval = cfg.MaxDelay
	exp.Multiplier = delayMultiplier
	exp.MaxElapsedTime = 0
	exp.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(cfg.MaxRetries)), ctx)

	operation := func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}

		if retryable == nil || !retryable(err) {
			return backoff.Permanent(err)
		}

		return err
	}

	var notifyFn backoff.Notify
	if notify != nil {
		notifyFn = backoff.Notify(notify)
	}

	return backoff.RetryNotify(operation, policy, notifyFn)
}
