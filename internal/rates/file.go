package rates

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rgehrsitz/paygo/internal/domain"
)

// TableFile is the on-disk layout of a rate table. JSON files load too since YAML
// is a superset.
type TableFile struct {
	RateSets []domain.RateSet `yaml:"rate_sets"`
}

// LoadTableFromFile reads a YAML rate table and builds a Table from it
func LoadTableFromFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate table %s: %w", path, err)
	}
	return ParseTable(data)
}

// ParseTable builds a Table from YAML bytes
func ParseTable(data []byte) (*Table, error) {
	var file TableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rate table: %w", err)
	}
	if len(file.RateSets) == 0 {
		return nil, &domain.ConfigurationError{Reason: "rate table defines no rate_sets"}
	}
	return NewTable(file.RateSets...)
}

// MarshalTable renders rate sets in the layout ParseTable reads
func MarshalTable(sets []domain.RateSet) ([]byte, error) {
	return yaml.Marshal(TableFile{RateSets: sets})
}
