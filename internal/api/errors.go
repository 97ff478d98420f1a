package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rgehrsitz/paygo/internal/domain"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps engine errors onto HTTP status codes with a user-facing hint
func statusFor(err error) (int, string) {
	switch {
	case domain.IsInvalidInput(err):
		return http.StatusBadRequest, "Please check the simulation input"
	case domain.IsRateNotFound(err):
		return http.StatusNotFound, "No contribution rates apply to the requested period"
	case errors.Is(err, domain.ErrResolveTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Rate lookup timed out, please retry"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "Request was cancelled"
	case domain.IsConfiguration(err):
		return http.StatusInternalServerError, "Contribution rates are misconfigured"
	default:
		return http.StatusInternalServerError, "Failed to compute simulation"
	}
}

func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, hint := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.WithField("kind", domain.ErrorKind(err)).Errorf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeError(w, status, err.Error(), hint)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, hint string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Message: hint})
}
