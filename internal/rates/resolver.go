// Package rates provides read-only lookup of statutory RateSets by company and date.
package rates

import (
	"context"
	"time"

	"github.com/rgehrsitz/paygo/internal/domain"
)

// Key selects a RateSet: a company (empty for company-independent sets) and the
// date on which the rates must be in force.
type Key = domain.RateKey

// Resolver finds the RateSet applicable to a Key. Implementations return
// *domain.RateNotFoundError when nothing applies and must honour ctx cancellation.
type Resolver interface {
	Resolve(ctx context.Context, key Key) (*domain.RateSet, error)
}

// ResolverFunc adapts a function to the Resolver interface
type ResolverFunc func(ctx context.Context, key Key) (*domain.RateSet, error)

func (f ResolverFunc) Resolve(ctx context.Context, key Key) (*domain.RateSet, error) {
	return f(ctx, key)
}

// NewKey builds a Key for the given company and calendar day
func NewKey(companyID string, date time.Time) Key {
	return Key{
		CompanyID:     companyID,
		EffectiveDate: time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
	}
}

// ParseKey builds a Key from a company and a YYYY-MM-DD date. An empty date means today.
func ParseKey(companyID, date string, now time.Time) (Key, error) {
	if date == "" {
		return NewKey(companyID, now), nil
	}
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return Key{}, domain.NewInvalidInput("date", "must be formatted as YYYY-MM-DD")
	}
	return NewKey(companyID, d), nil
}

func notFound(key Key) error {
	return &domain.RateNotFoundError{CompanyID: key.CompanyID, EffectiveDate: key.EffectiveDate}
}
