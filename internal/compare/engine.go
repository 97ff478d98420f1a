// Package compare simulates one employee under several what-if alternatives and
// reports how net pay, income tax and employer cost move against the base.
package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/paygo/internal/calculation"
	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/rgehrsitz/paygo/internal/transform"
)

// BaseScenarioName labels the unmodified input
const BaseScenarioName = "base"

// CompareEngine orchestrates scenario comparison
type CompareEngine struct {
	Engine            *calculation.Engine
	Resolver          calculation.RateResolver
	MetricsCalculator *MetricsCalculator
	TemplateRegistry  *transform.TemplateRegistry
	TransformRegistry *transform.TransformRegistry
}

// NewCompareEngine creates a new comparison engine with the built-in templates
func NewCompareEngine(engine *calculation.Engine, resolver calculation.RateResolver) *CompareEngine {
	return &CompareEngine{
		Engine:            engine,
		Resolver:          resolver,
		MetricsCalculator: NewMetricsCalculator(),
		TemplateRegistry:  transform.CreateBuiltInTemplates(),
		TransformRegistry: transform.NewTransformRegistry(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	Templates  []string // built-in template names, one alternative each
	Transforms []string // transform specs ("raise:percent=5"), one alternative each
}

// Compare simulates base, then one alternative per template and per transform spec.
// Alternatives appear in the order templates then transforms were given.
func (ce *CompareEngine) Compare(ctx context.Context, base domain.SimulationInput, options CompareOptions) (*ComparisonSet, error) {
	alternatives := make([]Scenario, 0, len(options.Templates)+len(options.Transforms))

	for _, name := range options.Templates {
		template, ok := ce.TemplateRegistry.Get(name)
		if !ok {
			return nil, fmt.Errorf("template %s not found", name)
		}
		input, err := transform.ApplyTemplate(base, template)
		if err != nil {
			return nil, fmt.Errorf("failed to apply template %s: %w", name, err)
		}
		alternatives = append(alternatives, Scenario{Name: template.Name, Description: template.Description, Input: input})
	}

	for _, spec := range options.Transforms {
		t, err := ce.TransformRegistry.ParseTransformSpec(spec)
		if err != nil {
			return nil, err
		}
		input, err := transform.ApplyTransforms(base, []transform.InputTransform{t})
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, Scenario{Name: spec, Description: t.Description(), Input: input})
	}

	if len(alternatives) == 0 {
		return nil, fmt.Errorf("at least one template or transform is required")
	}

	return ce.CompareScenarios(ctx, Scenario{Name: BaseScenarioName, Input: base}, alternatives)
}

// CompareScenarios compares explicit scenarios against base
func (ce *CompareEngine) CompareScenarios(ctx context.Context, base Scenario, alternatives []Scenario) (*ComparisonSet, error) {
	baseSim, err := ce.Engine.Preview(ctx, base.Input, ce.Resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base scenario: %w", err)
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(base.Name, baseSim)
	baseResult.Description = base.Description

	results := make([]ComparisonResult, 0, len(alternatives))
	for _, alt := range alternatives {
		sim, err := ce.Engine.Preview(ctx, alt.Input, ce.Resolver)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate scenario %s: %w", alt.Name, err)
		}
		r := ce.MetricsCalculator.CalculateMetrics(alt.Name, sim)
		r.Description = alt.Description
		results = append(results, ce.MetricsCalculator.CalculateComparison(r, baseResult))
	}

	compSet := &ComparisonSet{
		BaseScenarioName:   base.Name,
		EmployeeID:         base.Input.EmployeeID,
		BaseResult:         &baseResult,
		AlternativeResults: results,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)
	return compSet, nil
}
