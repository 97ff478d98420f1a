package config

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/paygo/internal/domain"
	"gopkg.in/yaml.v3"
)

// BatchFile is the on-disk layout of a batch simulation request. A bare list of
// employees is accepted too.
type BatchFile struct {
	Defaults  BatchDefaults            `yaml:"defaults"`
	Employees []domain.SimulationInput `yaml:"employees"`
}

// BatchDefaults fill rate-selection fields that individual employees leave empty
type BatchDefaults struct {
	CompanyID string `yaml:"company_id"`
	PayMonth  int    `yaml:"pay_month"`
	PayYear   int    `yaml:"pay_year"`
}

// InputParser handles parsing of simulation input files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a batch of simulation inputs from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) ([]domain.SimulationInput, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes a batch from YAML or JSON bytes. Only the file structure is
// checked here; per-employee validation is left to the engine so one bad row
// does not reject the whole file.
func (ip *InputParser) Parse(data []byte) ([]domain.SimulationInput, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, domain.NewInvalidInput("", "no employees provided")
	}

	var file BatchFile
	switch doc := root.Content[0]; doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&file.Employees); err != nil {
			return nil, fmt.Errorf("failed to decode employees: %w", err)
		}
	case yaml.MappingNode:
		if err := doc.Decode(&file); err != nil {
			return nil, fmt.Errorf("failed to decode batch file: %w", err)
		}
	default:
		return nil, fmt.Errorf("batch file must be a list of employees or a mapping with an employees key")
	}

	if err := ip.ValidateBatch(&file); err != nil {
		return nil, fmt.Errorf("batch validation failed: %w", err)
	}
	ip.applyDefaults(&file)
	return file.Employees, nil
}

// ValidateBatch validates the batch structure
func (ip *InputParser) ValidateBatch(file *BatchFile) error {
	if len(file.Employees) == 0 {
		return domain.NewInvalidInput("", "no employees provided")
	}
	if err := ip.validateDefaults(&file.Defaults); err != nil {
		return fmt.Errorf("defaults validation failed: %w", err)
	}
	return nil
}

func (ip *InputParser) validateDefaults(d *BatchDefaults) error {
	if d.PayMonth < 0 || d.PayMonth > 12 {
		return domain.NewInvalidInput("pay_month", fmt.Sprintf("must be between 1 and 12, got %d", d.PayMonth))
	}
	if d.PayYear < 0 {
		return domain.NewInvalidInput("pay_year", fmt.Sprintf("cannot be negative, got %d", d.PayYear))
	}
	return nil
}

func (ip *InputParser) applyDefaults(file *BatchFile) {
	for i := range file.Employees {
		e := &file.Employees[i]
		if e.CompanyID == "" {
			e.CompanyID = file.Defaults.CompanyID
		}
		if e.PayMonth == 0 {
			e.PayMonth = file.Defaults.PayMonth
		}
		if e.PayYear == 0 {
			e.PayYear = file.Defaults.PayYear
		}
	}
}
