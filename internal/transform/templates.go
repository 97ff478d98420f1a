package transform

import (
	"slices"
	"strings"

	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// TemplateRegistry manages built-in what-if templates
type TemplateRegistry struct {
	templates map[string]Template
}

// Template represents a named collection of transforms
type Template struct {
	Name        string
	Description string
	Transforms  []InputTransform
}

// NewTemplateRegistry creates an empty template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry
func (tr *TemplateRegistry) Register(t Template) {
	tr.templates[strings.ToLower(t.Name)] = t
}

// Get retrieves a template by name (case-insensitive)
func (tr *TemplateRegistry) Get(name string) (Template, bool) {
	t, ok := tr.templates[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// List returns all registered template names, sorted
func (tr *TemplateRegistry) List() []string {
	names := lo.Keys(tr.templates)
	slices.Sort(names)
	return names
}

// CreateBuiltInTemplates creates a template registry with common payroll what-ifs
func CreateBuiltInTemplates() *TemplateRegistry {
	registry := NewTemplateRegistry()
	d := decimal.NewFromInt

	registry.Register(Template{
		Name:        "raise_5pct",
		Description: "Raise gross salary by 5%",
		Transforms:  []InputTransform{&RaiseSalary{Percent: d(5)}},
	})
	registry.Register(Template{
		Name:        "raise_10pct",
		Description: "Raise gross salary by 10%",
		Transforms:  []InputTransform{&RaiseSalary{Percent: d(10)}},
	})
	registry.Register(Template{
		Name:        "overtime_10h",
		Description: "Work 10 more overtime hours at the default multiplier",
		Transforms:  []InputTransform{&AddOvertime{Hours: d(10)}},
	})
	registry.Register(Template{
		Name:        "overtime_20h_double",
		Description: "Work 20 more overtime hours paid double",
		Transforms:  []InputTransform{&AddOvertime{Hours: d(20), Rate: d(2)}},
	})
	registry.Register(Template{
		Name:        "bonus_1000",
		Description: "Pay a 1,000 MAD bonus",
		Transforms:  []InputTransform{&AddBonus{Amount: d(1000)}},
	})
	registry.Register(Template{
		Name:        "no_deductions",
		Description: "Drop other deductions",
		Transforms:  []InputTransform{&SetDeductions{Amount: decimal.Zero}},
	})
	registry.Register(Template{
		Name:        "raise_5pct_bonus_1000",
		Description: "Raise gross salary by 5% and pay a 1,000 MAD bonus",
		Transforms: []InputTransform{
			&RaiseSalary{Percent: d(5)},
			&AddBonus{Amount: d(1000)},
		},
	})

	return registry
}

// ApplyTemplate applies a template to a base input
func ApplyTemplate(base domain.SimulationInput, template Template) (domain.SimulationInput, error) {
	return ApplyTransforms(base, template.Transforms)
}

// ParseTemplateList parses a comma-separated list of template names
func ParseTemplateList(templateList string) []string {
	if templateList == "" {
		return nil
	}
	parts := strings.Split(templateList, ",")
	templates := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			templates = append(templates, p)
		}
	}
	return templates
}
