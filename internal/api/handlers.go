package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/rgehrsitz/paygo/internal/rates"
)

const (
	maxPreviewBody = 1 << 20
	maxBatchBody   = 32 << 20
)

// PreviewRequest is a simulation input with optional what-if rate overrides
type PreviewRequest struct {
	domain.SimulationInput
	Rates *domain.RateOverrides `json:"rates,omitempty"`
}

// PreviewResponse wraps a single simulation
type PreviewResponse struct {
	Message    string                   `json:"message"`
	Simulation *domain.SimulationResult `json:"simulation"`
}

// BatchRequest lists the employees of a batch simulation
type BatchRequest struct {
	Employees []domain.SimulationInput `json:"employees"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPreviewBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	required := []struct {
		field   string
		missing bool
	}{
		{"employee_id", req.EmployeeID == ""},
		{"gross_salary", req.GrossSalary.IsZero()},
	}
	for _, f := range required {
		if f.missing {
			writeError(w, http.StatusBadRequest, f.field+" is required", "Please provide all required fields")
			return
		}
	}

	resolver := s.resolver
	if !req.Rates.IsEmpty() {
		resolver = withOverrides(resolver, req.Rates)
	}

	result, err := s.engine.Preview(r.Context(), req.SimulationInput, resolver)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{
		Message:    "Simulation computed successfully",
		Simulation: result,
	})
}

// withOverrides applies request-scoped overrides on top of the resolved rates.
// Overrides that break the RateSet invariants are the caller's fault.
func withOverrides(next rates.Resolver, o *domain.RateOverrides) rates.Resolver {
	return rates.ResolverFunc(func(ctx context.Context, key rates.Key) (*domain.RateSet, error) {
		rs, err := next.Resolve(ctx, key)
		if err != nil {
			return nil, err
		}
		out := rs.WithOverrides(o)
		if err := out.Validate(); err != nil {
			return nil, domain.NewInvalidInput("rates", err.Error())
		}
		return out, nil
	})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBatchBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	var req BatchRequest
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		err = json.Unmarshal(body, &req.Employees)
	} else {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if limit := s.opts.MaxBatchSize; limit > 0 && len(req.Employees) > limit {
		s.writeEngineError(w, r, domain.NewInvalidInput("employees",
			fmt.Sprintf("exceeds the limit of %d per batch (got %d)", limit, len(req.Employees))))
		return
	}

	batch, err := s.engine.SimulateBatch(r.Context(), req.Employees, s.resolver)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleResolveRates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key, err := rates.ParseKey(q.Get("company_id"), q.Get("date"), s.engine.Now())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	rs, err := s.resolver.Resolve(r.Context(), key)
	if err == nil {
		err = rs.Validate()
	}
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}
