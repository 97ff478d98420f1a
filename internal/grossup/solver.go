// Package grossup finds the base gross salary that produces a requested net
// salary or total employer cost, keeping every other pay item of the employee
// fixed. Both figures grow with the gross salary, so a bisection over whole
// cents converges on the closest reachable value.
package grossup

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/paygo/internal/calculation"
	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/shopspring/decimal"
)

// initialUpperCents is the first upper bound tried when the target is smaller
const initialUpperCents = 10_000

// Solver runs gross-up searches against an engine and a rate resolver
type Solver struct {
	Engine   *calculation.Engine
	Resolver calculation.RateResolver
	Options  SolverOptions
}

// NewSolver creates a new gross-up solver
func NewSolver(engine *calculation.Engine, resolver calculation.RateResolver, options SolverOptions) *Solver {
	return &Solver{
		Engine:   engine,
		Resolver: resolver,
		Options:  options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(engine *calculation.Engine, resolver calculation.RateResolver) *Solver {
	return NewSolver(engine, resolver, DefaultSolverOptions())
}

type probe struct {
	cents int64
	sim   *domain.SimulationResult
	value decimal.Decimal
}

// Solve searches the gross salary for req. Rates are resolved once for the pay
// period of req.Base and reused for every probe.
func (s *Solver) Solve(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.Tolerance.IsZero() {
		req.Tolerance = s.Options.Tolerance
	}
	maxCents := s.Options.MaxGross.Shift(2).IntPart()
	if maxCents <= 0 {
		maxCents = DefaultSolverOptions().MaxGross.Shift(2).IntPart()
	}

	key := req.Base.RateKey(s.Engine.Now())
	rs, err := s.Resolver.Resolve(ctx, key)
	if err == nil {
		err = rs.Validate()
	}
	if err != nil {
		return nil, &GrossUpError{
			Operation: "resolve_rates",
			Message:   fmt.Sprintf("no usable rates for employee %s", req.Base.EmployeeID),
			Cause:     err,
		}
	}

	eval := func(cents int64) (probe, error) {
		in := req.Base
		in.GrossSalary = domain.NewAmount(decimal.New(cents, -2))
		sim, err := s.Engine.Simulate(in, rs)
		if err != nil {
			return probe{}, &GrossUpError{
				Operation: "simulate",
				Message:   fmt.Sprintf("failed at gross %s", in.GrossSalary.StringFixed(2)),
				Cause:     err,
			}
		}
		return probe{cents: cents, sim: sim, value: metric(req.Target, sim)}, nil
	}
	target := req.Amount

	lo, err := eval(1)
	if err != nil {
		return nil, err
	}
	if lo.value.GreaterThanOrEqual(target) {
		if lo.value.Sub(target).GreaterThan(req.Tolerance) {
			return nil, &GrossUpError{
				Operation: "bracket",
				Message: fmt.Sprintf("target %s %s is below the minimum reachable (%s) with the other pay items",
					req.Target, target.StringFixed(2), lo.value.StringFixed(2)),
			}
		}
		return s.result(req, lo, 0, "target reached at the minimum gross"), nil
	}

	// Grow the upper bound until it reaches the target.
	hiCents := max(target.Shift(2).IntPart(), initialUpperCents)
	var hi probe
	for {
		hiCents = min(hiCents, maxCents)
		if hi, err = eval(hiCents); err != nil {
			return nil, err
		}
		if hi.value.GreaterThanOrEqual(target) {
			break
		}
		if hiCents == maxCents {
			return nil, &GrossUpError{
				Operation: "bracket",
				Message: fmt.Sprintf("target %s %s is not reachable below a gross of %s",
					req.Target, target.StringFixed(2), decimal.New(maxCents, -2).StringFixed(2)),
			}
		}
		lo = hi
		hiCents *= 2
	}

	// lo.value < target <= hi.value
	iterations := 0
	for hi.cents-lo.cents > 1 && iterations < req.MaxIterations {
		iterations++

		select {
		case <-ctx.Done():
			return nil, &GrossUpError{Operation: "solve", Message: "cancelled", Cause: ctx.Err()}
		default:
		}

		mid, err := eval(lo.cents + (hi.cents-lo.cents)/2)
		if err != nil {
			return nil, err
		}
		if mid.value.LessThan(target) {
			lo = mid
		} else {
			hi = mid
		}
	}

	best := hi
	if target.Sub(lo.value).LessThan(hi.value.Sub(target)) {
		best = lo
	}

	info := fmt.Sprintf("bisection converged in %d iterations", iterations)
	if hi.cents-lo.cents > 1 {
		info = fmt.Sprintf("max iterations (%d) reached", req.MaxIterations)
	}
	return s.result(req, best, iterations, info), nil
}

func (s *Solver) result(req Request, p probe, iterations int, info string) *Result {
	diff := p.value.Sub(req.Amount)
	return &Result{
		EmployeeID:   req.Base.EmployeeID,
		Target:       req.Target,
		TargetAmount: domain.NewAmount(req.Amount),
		GrossSalary:  p.sim.Inputs.GrossSalary,
		Achieved:     domain.NewAmount(p.value),
		Difference:   domain.NewAmount(diff),
		Converged:    diff.Abs().LessThanOrEqual(req.Tolerance),
		Iterations:   iterations,
		Info:         info,
		Simulation:   p.sim,
	}
}

func metric(target Target, sim *domain.SimulationResult) decimal.Decimal {
	if target == TargetTotalCost {
		return sim.TotalCost.Decimal
	}
	return sim.NetSalary.Decimal
}
