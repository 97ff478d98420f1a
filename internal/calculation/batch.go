package calculation

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type resolvedRates struct {
	rates *domain.RateSet
	err   error
}

type batchOutcome struct {
	result *domain.SimulationResult
	err    error
}

// SimulateBatch runs Simulate for every input in parallel. Item failures are
// reported in the result and never stop the other items. The batch itself fails only
// when it is empty or when every item shares one misconfigured RateSet.
func (e *Engine) SimulateBatch(ctx context.Context, inputs []domain.SimulationInput, resolver RateResolver) (*domain.BatchResult, error) {
	if len(inputs) == 0 {
		return nil, domain.NewInvalidInput("", "no employees provided")
	}

	now := e.Now()
	keys := lo.Map(inputs, func(in domain.SimulationInput, _ int) domain.RateKey {
		return in.RateKey(now)
	})
	distinct := lo.Uniq(keys)

	resolved := e.resolveKeys(ctx, distinct, resolver)
	if len(distinct) == 1 {
		if err := resolved[distinct[0]].err; domain.IsConfiguration(err) {
			e.Logger.Errorf("batch aborted, rates for %s are misconfigured: %v", describeKey(distinct[0]), err)
			return nil, err
		}
	}

	outcomes := make([]batchOutcome, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for i := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i].err = err
				return nil
			}
			outcomes[i] = e.simulateItem(inputs[i], keys[i], resolved[keys[i]])
			return nil // item failures are non-fatal
		})
	}
	_ = g.Wait()

	batch := &domain.BatchResult{
		BatchID: uuid.NewString(),
		Results: []domain.BatchItem{},
		Errors:  []domain.BatchError{},
		Total:   len(inputs),
	}
	for i, out := range outcomes {
		if out.err != nil {
			batch.Errors = append(batch.Errors, domain.BatchError{
				Index:      i,
				EmployeeID: inputs[i].EmployeeID,
				Error:      out.err.Error(),
				Kind:       domain.ErrorKind(out.err),
			})
			continue
		}
		batch.Results = append(batch.Results, domain.BatchItem{
			Index:      i,
			EmployeeID: inputs[i].EmployeeID,
			Simulation: out.result,
		})
	}
	batch.Successful = len(batch.Results)
	batch.Failed = len(batch.Errors)

	e.Logger.Infof("batch %s: %d simulated, %d failed (%d rate sets)",
		batch.BatchID, batch.Successful, batch.Failed, len(distinct))
	return batch, nil
}

func (e *Engine) simulateItem(input domain.SimulationInput, key domain.RateKey, rr resolvedRates) batchOutcome {
	if err := input.Validate(); err != nil {
		e.Logger.Debugf("employee %s rejected: %v", input.EmployeeID, err)
		return batchOutcome{err: err}
	}
	if rr.err != nil {
		if domain.IsConfiguration(rr.err) {
			e.Logger.Errorf("employee %s: rates for %s are misconfigured: %v", input.EmployeeID, describeKey(key), rr.err)
		}
		return batchOutcome{err: rr.err}
	}
	result, err := e.Simulate(input, rr.rates)
	return batchOutcome{result: result, err: err}
}

// resolveKeys looks up every distinct key once, in parallel. Validation happens
// here so a broken RateSet is reported once per key rather than once per item.
func (e *Engine) resolveKeys(ctx context.Context, keys []domain.RateKey, resolver RateResolver) map[domain.RateKey]resolvedRates {
	var mu sync.Mutex
	resolved := make(map[domain.RateKey]resolvedRates, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for _, key := range keys {
		g.Go(func() error {
			rs, err := resolver.Resolve(gctx, key)
			if err == nil {
				err = rs.Validate()
			}
			if err != nil {
				err = fmt.Errorf("resolving rates for %s: %w", describeKey(key), err)
			}
			mu.Lock()
			resolved[key] = resolvedRates{rates: rs, err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return resolved
}
