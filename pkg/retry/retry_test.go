package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2,
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	r := New(&Config{MaxRetries: 2, JitterFactor: 3})

	assert.Equal(t, 2, r.config.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, r.config.InitialInterval)
	assert.Equal(t, 10*time.Second, r.config.MaxInterval)
	assert.Equal(t, 2.0, r.config.Multiplier)
	assert.Equal(t, 1.0, r.config.JitterFactor)
}

func TestNew_DoesNotMutateCallerConfig(t *testing.T) {
	cfg := &Config{}
	New(cfg)
	assert.Zero(t, cfg.InitialInterval)
}

func TestDo_Success(t *testing.T) {
	calls := 0
	result := New(fastConfig(3)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	}, nil)

	assert.NoError(t, result.Err)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, calls)
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	calls := 0
	var retried []int
	result := New(fastConfig(3)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, func(attempt int, err error, next time.Duration) {
		retried = append(retried, attempt)
	})

	assert.NoError(t, result.Err)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_MaxRetriesExceeded(t *testing.T) {
	boom := errors.New("boom")
	result := New(fastConfig(2)).Do(context.Background(), func(ctx context.Context) error {
		return boom
	}, nil)

	assert.ErrorIs(t, result.Err, ErrMaxRetriesExceeded)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, boom, result.LastError)
}

func TestDo_PermanentError(t *testing.T) {
	bad := errors.New("bad input")
	calls := 0
	result := New(fastConfig(5)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(bad)
	}, nil)

	assert.Equal(t, bad, result.Err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New(fastConfig(5)).Do(ctx, func(ctx context.Context) error {
		return errors.New("unreachable")
	}, nil)

	assert.ErrorIs(t, result.Err, ErrContextCanceled)
}

func TestInterval_ExponentialAndCapped(t *testing.T) {
	r := New(&Config{InitialInterval: 100 * time.Millisecond, MaxInterval: time.Second, Multiplier: 2})

	assert.Equal(t, 100*time.Millisecond, r.interval(0))
	assert.Equal(t, 200*time.Millisecond, r.interval(1))
	assert.Equal(t, 400*time.Millisecond, r.interval(2))
	assert.Equal(t, time.Second, r.interval(10))
}

func TestInterval_JitterBounds(t *testing.T) {
	r := New(&Config{InitialInterval: 100 * time.Millisecond, MaxInterval: time.Second, Multiplier: 2, JitterFactor: 0.1})

	for i := 0; i < 100; i++ {
		d := r.interval(0)
		assert.GreaterOrEqual(t, d, 90*time.Millisecond)
		assert.LessOrEqual(t, d, 110*time.Millisecond)
	}
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
