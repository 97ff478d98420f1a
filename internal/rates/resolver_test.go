package rates

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/paygo/internal/domain"
)

func TestWithTimeout(t *testing.T) {
	t.Run("fast resolver passes through", func(t *testing.T) {
		r := WithTimeout(DefaultTable(), time.Second)
		rs, err := r.Resolve(context.Background(), NewKey("", day(2025, 4, 1)))
		require.NoError(t, err)
		assert.Equal(t, "ma-2025", rs.ID)
	})

	t.Run("resolver ignoring ctx still times out", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		slow := ResolverFunc(func(context.Context, Key) (*domain.RateSet, error) {
			<-release
			return nil, nil
		})

		start := time.Now()
		_, err := WithTimeout(slow, 20*time.Millisecond).Resolve(context.Background(), NewKey("", day(2025, 4, 1)))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrResolveTimeout)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("resolver honouring ctx maps deadline", func(t *testing.T) {
		polite := ResolverFunc(func(ctx context.Context, _ Key) (*domain.RateSet, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
		_, err := WithTimeout(polite, 10*time.Millisecond).Resolve(context.Background(), NewKey("", day(2025, 4, 1)))
		assert.ErrorIs(t, err, domain.ErrResolveTimeout)
	})

	t.Run("caller cancellation is not a timeout", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		blocked := ResolverFunc(func(ctx context.Context, _ Key) (*domain.RateSet, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
		_, err := WithTimeout(blocked, time.Second).Resolve(ctx, NewKey("", day(2025, 4, 1)))
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, errors.Is(err, domain.ErrResolveTimeout))
	})

	t.Run("non-positive timeout returns the resolver", func(t *testing.T) {
		table := DefaultTable()
		assert.Same(t, table, WithTimeout(table, 0))
	})
}

func TestMemoize(t *testing.T) {
	var calls atomic.Int32
	backend := ResolverFunc(func(ctx context.Context, key Key) (*domain.RateSet, error) {
		calls.Add(1)
		return DefaultTable().Resolve(ctx, key)
	})
	memo := Memoize(backend)
	key := NewKey("", day(2025, 4, 1))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rs, err := memo.Resolve(context.Background(), key)
			assert.NoError(t, err)
			assert.Equal(t, "ma-2025", rs.ID)
		}()
	}
	wg.Wait()

	first := calls.Load()
	assert.LessOrEqual(t, first, int32(16))

	_, err := memo.Resolve(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, first, calls.Load(), "cached keys are not resolved again")
	assert.Equal(t, 1, memo.Len())

	rs, _ := memo.Resolve(context.Background(), key)
	rs.CNSSCeiling = domain.AmountFromInt(0)
	again, _ := memo.Resolve(context.Background(), key)
	assert.Equal(t, "6000", again.CNSSCeiling.String(), "cached sets are copied out")

	memo.Purge()
	assert.Equal(t, 0, memo.Len())
}

func TestMemoize_ErrorCaching(t *testing.T) {
	var calls atomic.Int32
	backend := ResolverFunc(func(_ context.Context, key Key) (*domain.RateSet, error) {
		calls.Add(1)
		switch key.CompanyID {
		case "missing":
			return nil, notFound(key)
		default:
			return nil, errors.New("connection reset")
		}
	})
	memo := Memoize(backend)

	for i := 0; i < 3; i++ {
		_, err := memo.Resolve(context.Background(), NewKey("missing", day(2025, 1, 1)))
		assert.True(t, domain.IsRateNotFound(err))
	}
	assert.Equal(t, int32(1), calls.Load(), "not-found answers are cached")

	for i := 0; i < 3; i++ {
		_, err := memo.Resolve(context.Background(), NewKey("flaky", day(2025, 1, 1)))
		assert.Error(t, err)
	}
	assert.Equal(t, int32(4), calls.Load(), "transport errors are retried")
}

func TestMemoize_CallerCancellation(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	backend := ResolverFunc(func(ctx context.Context, key Key) (*domain.RateSet, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return DefaultTable().Resolve(ctx, key)
	})
	memo := Memoize(backend)
	key := NewKey("", day(2025, 4, 1))

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := memo.Resolve(ctxA, key)
		errA <- err
	}()
	<-started

	type outcome struct {
		rs  *domain.RateSet
		err error
	}
	resB := make(chan outcome, 1)
	go func() {
		rs, err := memo.Resolve(context.Background(), key)
		resB <- outcome{rs, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting on the shared lookup")
	}

	close(release)
	select {
	case got := <-resB:
		require.NoError(t, got.err)
		assert.Equal(t, "ma-2025", got.rs.ID)
	case <-time.After(time.Second):
		t.Fatal("second caller never got an answer")
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, memo.Len())

	done, cancel := context.WithCancel(context.Background())
	cancel()
	rs, err := memo.Resolve(done, key)
	require.NoError(t, err, "cached answers do not need a live context")
	assert.Equal(t, "ma-2025", rs.ID)
}
