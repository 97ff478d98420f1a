package grossup

import (
	"fmt"

	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/shopspring/decimal"
)

// Target selects the simulated figure the solver aims for
type Target string

const (
	TargetNetSalary Target = "net_salary" // what the employee takes home
	TargetTotalCost Target = "total_cost" // what the employer pays in total
)

// ParseTarget accepts "net", "net_salary", "cost" and "total_cost"
func ParseTarget(s string) (Target, error) {
	switch s {
	case "net", string(TargetNetSalary):
		return TargetNetSalary, nil
	case "cost", string(TargetTotalCost):
		return TargetTotalCost, nil
	}
	return "", fmt.Errorf("unknown target %q (expected net_salary or total_cost)", s)
}

// Request describes one gross-up. Base supplies every field except the gross
// salary, which is what the solver searches for.
type Request struct {
	Base          domain.SimulationInput
	Target        Target
	Amount        decimal.Decimal
	MaxIterations int             // zero uses the solver default
	Tolerance     decimal.Decimal // zero uses the solver default
}

// Validate checks the request before any simulation is run
func (r *Request) Validate() error {
	switch r.Target {
	case TargetNetSalary, TargetTotalCost:
	default:
		return &GrossUpError{
			Operation: "validate_request",
			Message:   fmt.Sprintf("unsupported target: %q", r.Target),
		}
	}
	if !r.Amount.IsPositive() {
		return &GrossUpError{
			Operation: "validate_request",
			Message:   fmt.Sprintf("target amount must be positive, got %s", r.Amount.String()),
		}
	}
	if r.MaxIterations < 0 {
		return &GrossUpError{
			Operation: "validate_request",
			Message:   "max iterations cannot be negative",
		}
	}
	if r.Tolerance.IsNegative() {
		return &GrossUpError{
			Operation: "validate_request",
			Message:   "tolerance cannot be negative",
		}
	}
	return nil
}

// Result is the gross salary found for a target, with the simulation at that gross
type Result struct {
	EmployeeID   domain.EmployeeID        `json:"employee_id"`
	Target       Target                   `json:"target"`
	TargetAmount domain.Amount            `json:"target_amount"`
	GrossSalary  domain.Amount            `json:"gross_salary"`
	Achieved     domain.Amount            `json:"achieved"`
	Difference   domain.Amount            `json:"difference"` // achieved minus target
	Converged    bool                     `json:"converged"`
	Iterations   int                      `json:"iterations"`
	Info         string                   `json:"info"`
	Simulation   *domain.SimulationResult `json:"simulation"`
}

// SolverOptions configures the search
type SolverOptions struct {
	Tolerance     decimal.Decimal // accepted |achieved - target|
	MaxIterations int             // bisection steps, excluding bracket expansion
	MaxGross      decimal.Decimal // upper search bound
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     decimal.NewFromFloat(0.01),
		MaxIterations: 100,
		MaxGross:      decimal.NewFromInt(100_000_000),
	}
}

// GrossUpError represents errors from the gross-up solver
type GrossUpError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *GrossUpError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *GrossUpError) Unwrap() error {
	return e.Cause
}
