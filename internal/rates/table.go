package rates

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/samber/lo"
)

// Table is an in-memory Resolver over a fixed list of RateSets. It is immutable
// after construction and safe for concurrent use.
type Table struct {
	sets []domain.RateSet // sorted by company, then effective_from descending
}

// NewTable builds a Table. Two sets for the same company and effective date are
// ambiguous and rejected. Invariants of individual sets are checked on Resolve so a
// broken set only affects the periods it covers; use Validate to check them all.
func NewTable(sets ...domain.RateSet) (*Table, error) {
	seen := make(map[Key]string, len(sets))
	copied := make([]domain.RateSet, 0, len(sets))
	for _, rs := range sets {
		if rs.EffectiveFrom.IsZero() {
			return nil, &domain.ConfigurationError{RateSetID: rs.ID, Reason: "effective_from is required"}
		}
		k := NewKey(rs.CompanyID, rs.EffectiveFrom)
		if other, dup := seen[k]; dup {
			return nil, &domain.ConfigurationError{
				RateSetID: rs.ID,
				Reason:    fmt.Sprintf("same company and effective date as %q", other),
			}
		}
		seen[k] = rs.ID
		copied = append(copied, *rs.Clone())
	}
	sort.SliceStable(copied, func(i, j int) bool {
		if copied[i].CompanyID != copied[j].CompanyID {
			return copied[i].CompanyID < copied[j].CompanyID
		}
		return copied[i].EffectiveFrom.After(copied[j].EffectiveFrom)
	})
	return &Table{sets: copied}, nil
}

// Resolve picks the latest set in force on key.EffectiveDate for key.CompanyID,
// falling back to the company-independent sets.
func (t *Table) Resolve(ctx context.Context, key Key) (*domain.RateSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rs, ok := t.latest(key.CompanyID, key)
	if !ok && key.CompanyID != "" {
		rs, ok = t.latest("", key)
	}
	if !ok {
		return nil, notFound(key)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs.Clone(), nil
}

func (t *Table) latest(companyID string, key Key) (*domain.RateSet, bool) {
	candidates := lo.Filter(t.sets, func(rs domain.RateSet, _ int) bool {
		return rs.CompanyID == companyID && !rs.EffectiveFrom.After(key.EffectiveDate)
	})
	if len(candidates) == 0 {
		return nil, false
	}
	// Sorted descending, so the first candidate is the one in force
	return &candidates[0], true
}

// Sets returns copies of every RateSet in the table
func (t *Table) Sets() []domain.RateSet {
	return lo.Map(t.sets, func(rs domain.RateSet, _ int) domain.RateSet {
		return *rs.Clone()
	})
}

// Len returns the number of sets in the table
func (t *Table) Len() int {
	return len(t.sets)
}

// Validate checks every set and joins all violations
func (t *Table) Validate() error {
	var errs []error
	for i := range t.sets {
		if err := t.sets[i].Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
