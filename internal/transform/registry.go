package transform

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// TransformRegistry maps transform names to factories so transforms can be built
// from command-line strings.
type TransformRegistry struct {
	factories map[string]TransformFactory
}

// TransformFactory is a function that creates a transform from parameters.
type TransformFactory func(params map[string]string) (InputTransform, error)

// NewTransformRegistry creates a new registry with all built-in transforms registered.
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
	}

	registry.Register("raise", createRaiseSalary)
	registry.Register("set_gross", createSetGross)
	registry.Register("add_overtime", createAddOvertime)
	registry.Register("add_bonus", createAddBonus)
	registry.Register("add_allowance", createAddAllowance)
	registry.Register("set_deductions", createSetDeductions)
	registry.Register("set_period", createSetPayPeriod)
	registry.Register("set_company", createSetCompany)

	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (InputTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown transform: %s (expected one of %s)", name, strings.Join(r.List(), ", "))
	}
	return factory(params)
}

// List returns the registered transform names in alphabetical order.
func (r *TransformRegistry) List() []string {
	names := lo.Keys(r.factories)
	slices.Sort(names)
	return names
}

// ParseTransformSpec parses a transform specification string.
// Format: "transform_name:param1=value1,param2=value2"
// Example: "add_overtime:hours=10,rate=2"
func (r *TransformRegistry) ParseTransformSpec(spec string) (InputTransform, error) {
	name, paramsStr, _ := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	paramsStr = strings.TrimSpace(paramsStr)
	if name == "" {
		return nil, fmt.Errorf("invalid transform spec format, expected 'name:params', got: %q", spec)
	}

	params := make(map[string]string)
	if paramsStr != "" {
		for _, paramPair := range strings.Split(paramsStr, ",") {
			k, v, ok := strings.Cut(paramPair, "=")
			if !ok {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", paramPair)
			}
			params[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}

	return r.Create(name, params)
}

func decimalParam(params map[string]string, transform, key string, required bool) (decimal.Decimal, error) {
	raw, ok := params[key]
	if !ok {
		if required {
			return decimal.Zero, fmt.Errorf("%s requires '%s' parameter", transform, key)
		}
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return d, nil
}

func intParam(params map[string]string, key string) (int, error) {
	raw, ok := params[key]
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

// Factory functions for each transform

func createRaiseSalary(params map[string]string) (InputTransform, error) {
	pct, err := decimalParam(params, "raise", "percent", false)
	if err != nil {
		return nil, err
	}
	amount, err := decimalParam(params, "raise", "amount", false)
	if err != nil {
		return nil, err
	}
	if pct.IsZero() && amount.IsZero() {
		return nil, fmt.Errorf("raise requires 'percent' or 'amount' parameter")
	}
	return &RaiseSalary{Percent: pct, Amount: amount}, nil
}

func createSetGross(params map[string]string) (InputTransform, error) {
	gross, err := decimalParam(params, "set_gross", "gross", true)
	if err != nil {
		return nil, err
	}
	return &SetGross{Gross: gross}, nil
}

func createAddOvertime(params map[string]string) (InputTransform, error) {
	hours, err := decimalParam(params, "add_overtime", "hours", true)
	if err != nil {
		return nil, err
	}
	rate, err := decimalParam(params, "add_overtime", "rate", false)
	if err != nil {
		return nil, err
	}
	return &AddOvertime{Hours: hours, Rate: rate}, nil
}

func createAddBonus(params map[string]string) (InputTransform, error) {
	amount, err := decimalParam(params, "add_bonus", "amount", true)
	if err != nil {
		return nil, err
	}
	return &AddBonus{Amount: amount}, nil
}

func createAddAllowance(params map[string]string) (InputTransform, error) {
	amount, err := decimalParam(params, "add_allowance", "amount", true)
	if err != nil {
		return nil, err
	}
	return &AddAllowance{Amount: amount}, nil
}

func createSetDeductions(params map[string]string) (InputTransform, error) {
	amount, err := decimalParam(params, "set_deductions", "amount", true)
	if err != nil {
		return nil, err
	}
	return &SetDeductions{Amount: amount}, nil
}

func createSetPayPeriod(params map[string]string) (InputTransform, error) {
	month, err := intParam(params, "month")
	if err != nil {
		return nil, err
	}
	year, err := intParam(params, "year")
	if err != nil {
		return nil, err
	}
	if month == 0 && year == 0 {
		return nil, fmt.Errorf("set_period requires 'month' or 'year' parameter")
	}
	return &SetPayPeriod{Month: month, Year: year}, nil
}

func createSetCompany(params map[string]string) (InputTransform, error) {
	company, ok := params["company"]
	if !ok {
		return nil, fmt.Errorf("set_company requires 'company' parameter")
	}
	return &SetCompany{CompanyID: company}, nil
}
