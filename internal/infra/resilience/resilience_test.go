package resilience_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/facturaja/facturaja-bff/internal/infra/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errUnprocessable = errors.New("backend answered 422")
	errBadGateway    = errors.New("backend answered 502")
)

func fastConfig(retries int) resilience.Config {
	return resilience.Config{MaxRetries: retries, InitialBackoff: 5 * time.Millisecond}
}

func TestRetryWithBackoff(t *testing.T) {
	tests := []struct {
		name      string
		retries   int
		failures  int
		permanent bool
		wantCalls int
		wantErr   error
	}{
		{name: "first call succeeds", retries: 3, failures: 0, wantCalls: 1},
		{name: "recovers after two 502s", retries: 3, failures: 2, wantCalls: 3},
		{name: "gives up after retries", retries: 2, failures: 10, wantCalls: 3, wantErr: errBadGateway},
		{name: "no retries configured", retries: 0, failures: 10, wantCalls: 1, wantErr: errBadGateway},
		{name: "4xx is not retried", retries: 5, failures: 10, permanent: true, wantCalls: 1, wantErr: errUnprocessable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := resilience.RetryWithBackoff(context.Background(), fastConfig(tt.retries), func() error {
				calls++
				if calls > tt.failures {
					return nil
				}
				if tt.permanent {
					return resilience.Permanent(errUnprocessable)
				}
				return errBadGateway
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, resilience.IsPermanent(err), "permanent marker must not leak to callers")
		})
	}
}

func TestRetryWithBackoff_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := resilience.RetryWithBackoff(ctx, resilience.Config{MaxRetries: 5, InitialBackoff: time.Second}, func() error {
		calls++
		return errBadGateway
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRetryWithBackoff_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := resilience.RetryWithBackoff(ctx, resilience.Config{MaxRetries: 3, InitialBackoff: time.Second}, func() error {
		return errBadGateway
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, resilience.Permanent(nil))
	assert.False(t, resilience.IsPermanent(errBadGateway))
	assert.True(t, resilience.IsPermanent(resilience.Permanent(errUnprocessable)))
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	cb := resilience.NewCircuitBreaker("billing-backend", func(err error) bool {
		return errors.Is(err, errUnprocessable)
	})

	for i := 0; i < 10; i++ {
		_, err := cb.Execute(func() (any, error) { return nil, errUnprocessable })
		require.False(t, resilience.IsBreakerOpen(err), "breaker opened on a 4xx at call %d", i)
		assert.ErrorIs(t, err, errUnprocessable)
	}
}

func TestCircuitBreaker_OpensOnServerErrors(t *testing.T) {
	cb := resilience.NewCircuitBreaker("billing-backend", nil)

	var err error
	for i := 0; i < 6; i++ {
		_, err = cb.Execute(func() (any, error) { return nil, errBadGateway })
	}

	assert.True(t, resilience.IsBreakerOpen(err), "got %v", err)
	assert.False(t, resilience.IsBreakerOpen(errBadGateway))
}

func TestBulkhead_BoundsConcurrency(t *testing.T) {
	bh := resilience.NewBulkhead(2)

	require.NoError(t, bh.Acquire(context.Background()))
	require.NoError(t, bh.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bh.Acquire(ctx), context.DeadlineExceeded)

	bh.Release()
	assert.NoError(t, bh.Acquire(context.Background()))
}

func TestBulkhead_ZeroCapacityStillAdmitsOne(t *testing.T) {
	bh := resilience.NewBulkhead(0)

	var inFlight, peak int32
	done := make(chan struct{})
	for i := 0; i < 3; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			if err := bh.Acquire(context.Background()); err != nil {
				return
			}
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			bh.Release()
		}()
	}
	for i := 0; i < 3; i++ {
		<-done
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))
}
