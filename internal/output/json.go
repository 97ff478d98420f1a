package output

import (
	"encoding/json"

	"github.com/rgehrsitz/paygo/internal/domain"
)

// JSONFormatter emits results in the same shape the HTTP API returns
type JSONFormatter struct {
	Pretty bool // If true, format with indentation
}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) FormatSimulation(result *domain.SimulationResult) ([]byte, error) {
	return j.marshal(result)
}

func (j JSONFormatter) FormatBatch(batch *domain.BatchResult) ([]byte, error) {
	return j.marshal(batch)
}

func (j JSONFormatter) FormatRates(rs *domain.RateSet) ([]byte, error) {
	return j.marshal(rs)
}

func (j JSONFormatter) marshal(v interface{}) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if j.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
