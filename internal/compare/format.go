package compare

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Formatter renders a ComparisonSet for one output format
type Formatter interface {
	Format(compSet *ComparisonSet) (string, error)
}

// GetFormatter returns the formatter for console, table, csv or json
func GetFormatter(name string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "console", "table":
		return tableAdapter{}, nil
	case "csv":
		return &CSVFormatter{}, nil
	case "json":
		return &JSONFormatter{Pretty: true}, nil
	}
	return nil, fmt.Errorf("unsupported format: %s (expected one of console, csv, json)", name)
}

type tableAdapter struct{}

func (tableAdapter) Format(compSet *ComparisonSet) (string, error) {
	return (&TableFormatter{}).Format(compSet), nil
}

// JSONFormatter formats comparison results as JSON
type JSONFormatter struct {
	Pretty bool // If true, format with indentation
}

// Format generates JSON output for comparison results, newline terminated
func (jf *JSONFormatter) Format(compSet *ComparisonSet) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if jf.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(compSet); err != nil {
		return "", err
	}
	return buf.String(), nil
}
