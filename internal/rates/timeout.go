package rates

import (
	"context"
	"errors"
	"time"

	"github.com/rgehrsitz/paygo/internal/domain"
)

type timeoutResolver struct {
	next    Resolver
	timeout time.Duration
}

// WithTimeout bounds every resolution by d. A lookup that does not finish in time
// returns domain.ErrResolveTimeout even if the wrapped resolver ignores ctx.
// A non-positive d returns next unchanged.
func WithTimeout(next Resolver, d time.Duration) Resolver {
	if d <= 0 {
		return next
	}
	return &timeoutResolver{next: next, timeout: d}
}

type resolveResult struct {
	rates *domain.RateSet
	err   error
}

func (r *timeoutResolver) Resolve(ctx context.Context, key Key) (*domain.RateSet, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan resolveResult, 1)
	go func() {
		rs, err := r.next.Resolve(ctx, key)
		done <- resolveResult{rates: rs, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) {
			return nil, domain.ErrResolveTimeout
		}
		return res.rates, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domain.ErrResolveTimeout
		}
		return nil, ctx.Err()
	}
}
