package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrResolveTimeout is returned when rate resolution does not finish in time.
// It wraps context.DeadlineExceeded so callers may test for either.
var ErrResolveTimeout = fmt.Errorf("rate resolution timed out: %w", context.DeadlineExceeded)

// InvalidInputError is a caller-correctable problem with a simulation request
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + " " + e.Reason
}

// NewInvalidInput creates an InvalidInputError
func NewInvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// RateNotFoundError means no RateSet applies to the requested company and date
type RateNotFoundError struct {
	CompanyID     string
	EffectiveDate time.Time
}

func (e *RateNotFoundError) Error() string {
	date := "unspecified date"
	if !e.EffectiveDate.IsZero() {
		date = e.EffectiveDate.Format("2006-01-02")
	}
	if e.CompanyID == "" {
		return fmt.Sprintf("no contribution rates effective on %s", date)
	}
	return fmt.Sprintf("no contribution rates for company %s effective on %s", e.CompanyID, date)
}

// ConfigurationError reports a RateSet that breaks its invariants. It is fatal for
// every use of that RateSet and is never retried.
type ConfigurationError struct {
	RateSetID string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	if e.RateSetID == "" {
		return "invalid rate configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid rate configuration %q: %s", e.RateSetID, e.Reason)
}

// IsInvalidInput reports whether err is or wraps an InvalidInputError
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// IsRateNotFound reports whether err is or wraps a RateNotFoundError
func IsRateNotFound(err error) bool {
	var target *RateNotFoundError
	return errors.As(err, &target)
}

// IsConfiguration reports whether err is or wraps a ConfigurationError
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// ErrorKind classifies an error for batch reporting and API responses
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsInvalidInput(err):
		return "invalid_input"
	case IsRateNotFound(err):
		return "rate_not_found"
	case IsConfiguration(err):
		return "configuration"
	case errors.Is(err, ErrResolveTimeout):
		return "timeout"
	default:
		return "internal"
	}
}
