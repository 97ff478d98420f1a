package grossup

import (
	"context"

	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// SolveTargets grosses up the same employee for several amounts in parallel, for
// example to print a salary grid. Results keep the order of amounts; the first
// failure cancels the remaining searches.
func (s *Solver) SolveTargets(ctx context.Context, base domain.SimulationInput, target Target, amounts []decimal.Decimal) ([]*Result, error) {
	if len(amounts) == 0 {
		return nil, &GrossUpError{Operation: "solve_targets", Message: "no target amounts provided"}
	}

	results := make([]*Result, len(amounts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, amount := range amounts {
		g.Go(func() error {
			r, err := s.Solve(gctx, Request{Base: base, Target: target, Amount: amount})
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
