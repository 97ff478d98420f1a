// Package transform implements composable what-if changes to a simulation input:
// a raise, extra overtime, a one-off bonus, a different pay period. Transforms are
// what the compare command and the gross-up solver use to derive alternative
// inputs from a base employee.
package transform

import (
	"fmt"

	"github.com/rgehrsitz/paygo/internal/domain"
)

// InputTransform is one what-if change to a simulation input.
type InputTransform interface {
	// Apply returns a modified copy of base. The base value is never changed.
	Apply(base domain.SimulationInput) (domain.SimulationInput, error)

	// Name returns a short identifier such as "raise" or "add_overtime".
	Name() string

	// Description returns a human-readable summary of the change.
	Description() string

	// Validate checks the transform parameters against base without applying them.
	Validate(base domain.SimulationInput) error
}

// ApplyTransforms applies transforms in order, each one receiving the output of the
// previous one. Every transform is validated against the current input before it is
// applied.
func ApplyTransforms(base domain.SimulationInput, transforms []InputTransform) (domain.SimulationInput, error) {
	current := base
	for i, t := range transforms {
		if t == nil {
			return domain.SimulationInput{}, fmt.Errorf("transform at index %d is nil", i)
		}
		if err := t.Validate(current); err != nil {
			return domain.SimulationInput{}, fmt.Errorf("transform %s validation failed: %w", t.Name(), err)
		}
		next, err := t.Apply(current)
		if err != nil {
			return domain.SimulationInput{}, fmt.Errorf("transform %s failed: %w", t.Name(), err)
		}
		current = next
	}
	return current, nil
}

// TransformError represents an error that occurred during transformation.
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError creates a new TransformError.
func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}
