package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/agbru/fibapi/internal/errors"
	"github.com/agbru/fibapi/internal/service"
)

// FibonacciAPI is the service contract behind the /api/fibonacci routes.
type FibonacciAPI interface {
	GetValue(ctx context.Context, index int) (service.FibonacciResponse, int)
	GetNext(ctx context.Context, index int) (service.FibonacciResponse, int)
	GetSequence(ctx context.Context, start, count int) (service.FibonacciSequenceResponse, int)
}

// errorBody is the response for failures outside the Fibonacci routes.
type errorBody struct {
	Error string `json:"error"`
}

// paramErrorPrefix matches the prefix the service uses for non-overflow errors.
const paramErrorPrefix = "Error: "

// parseIntParam parses a base-10 integer request parameter. Failures are
// apperrors.ValidationError values.
func parseIntParam(name, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ValidationError{Field: name, Message: fmt.Sprintf("invalid %s %q", name, raw)}
	}
	return v, nil
}

// paramMessage renders a parameter error the way the service renders
// non-overflow failures.
func paramMessage(err error) string {
	var verr apperrors.ValidationError
	if errors.As(err, &verr) {
		return paramErrorPrefix + verr.Message
	}
	return paramErrorPrefix + err.Error()
}

// queryInt reads an optional integer query parameter.
func queryInt(q url.Values, name string, fallback int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return fallback, nil
	}
	return parseIntParam(name, raw)
}

func (s *Server) handleValue(w http.ResponseWriter, r *http.Request) {
	index, err := parseIntParam("index", r.PathValue("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, service.ValueError(-1, paramMessage(err)))
		return
	}
	resp, status := s.api.GetValue(r.Context(), index)
	writeJSON(w, status, resp)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	index, err := parseIntParam("index", r.PathValue("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, service.ValueError(-1, paramMessage(err)))
		return
	}
	resp, status := s.api.GetNext(r.Context(), index)
	writeJSON(w, status, resp)
}

func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := queryInt(q, "start", service.DefaultSequenceStart)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, service.SequenceError(paramMessage(err)))
		return
	}
	count, err := queryInt(q, "count", service.DefaultSequenceCount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, service.SequenceError(paramMessage(err)))
		return
	}
	resp, status := s.api.GetSequence(r.Context(), start, count)
	writeJSON(w, status, resp)
}

// handleMetrics serves the Prometheus exposition. Only GET is accepted.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: http.StatusText(http.StatusMethodNotAllowed)})
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openAPIDocument)
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
