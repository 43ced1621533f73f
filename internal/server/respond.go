package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/internal/catalog"
	"github.com/goliatone/go-formstate/internal/dashboard"
	"github.com/goliatone/go-formstate/pkg/form"
)

// Error codes returned in the `code` field.
const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeInvalidValue   = "INVALID_VALUE"
	CodeNotFound       = "NOT_FOUND"
	CodeSubmitInFlight = "SUBMIT_IN_FLIGHT"
	CodeUnsupported    = "UNSUPPORTED"
	CodeInternal       = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSON encodes v before writing the header so an unencodable value
// becomes a 500 instead of a success status with an empty body.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		body, _ = json.Marshal(ErrorResponse{Error: "internal server error", Code: CodeInternal})
		status = http.StatusInternalServerError
		err = fmt.Errorf("encode response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, werr := w.Write(append(body, '\n')); werr != nil && err == nil {
		err = fmt.Errorf("write response: %w", werr)
	}
	return err
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	_ = writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respond writes v and logs encoding or write failures.
func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	if err := writeJSON(w, status, v); err != nil {
		s.logger.Error("write response", zap.Int("status", status), zap.Error(err))
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

// errorToHTTP maps domain errors onto responses.
func (s *Server) errorToHTTP(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, dashboard.ErrInvalidValue), errors.Is(err, form.ErrInvalidPath):
		writeError(w, http.StatusBadRequest, CodeInvalidValue, err.Error())
	case errors.Is(err, form.ErrSubmitInFlight):
		writeError(w, http.StatusConflict, CodeSubmitInFlight, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}
