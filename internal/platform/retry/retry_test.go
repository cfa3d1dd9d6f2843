package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errTransient = errors.New("transient")
	errPermanent = errors.New("permanent")
)

func isTransient(err error) bool {
	return errors.Is(err, errTransient)
}

func fastConfig(maxRetries int) Config {
	return Config{MaxRetries: maxRetries, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	attempts := 0
	notified := 0

	err := Do(context.Background(), fastConfig(5), isTransient,
		func(err error, _ time.Duration) {
			assert.ErrorIs(t, err, errTransient)
			notified++
		},
		func(context.Context) error {
			attempts++
			if attempts < 3 {
				return errTransient
			}

			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, notified)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	attempts := 0

	err := Do(context.Background(), fastConfig(5), isTransient, nil, func(context.Context) error {
		attempts++
		return errPermanent
	})

	require.ErrorIs(t, err, errPermanent)
	assert.Equal(t, 1, attempts)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	attempts := 0

	err := Do(context.Background(), fastConfig(2), isTransient, nil, func(context.Context) error {
		attempts++
		return errTransient
	})

	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, attempts)
}

func TestDo_NilClassifierNeverRetries(t *testing.T) {
	attempts := 0

	err := Do(context.Background(), fastConfig(3), nil, nil, func(context.Context) error {
		attempts++
		return errTransient
	})

	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, attempts)
}

func TestDo_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	err := Do(ctx, Config{MaxRetries: 10, InitialDelay: time.Hour, MaxDelay: time.Hour}, isTransient, nil,
		func(context.Context) error {
			cancel()
			return errTransient
		})

	require.ErrorIs(t, err, context.Canceled)
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{MaxRetries: -1, InitialDelay: time.Second, MaxDelay: time.Millisecond}.withDefaults()

	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.InitialDelay)
	assert.Equal(t, time.Second, cfg.MaxDelay)

	assert.Equal(t, DefaultConfig(), Config{MaxRetries: 5}.withDefaults())
}
