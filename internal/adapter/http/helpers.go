package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/NetPranav/Vyom/internal/domain"
)

const bodyLimit = 1 << 20 // 1 MiB

// readJSON decodes a JSON request body with a size limit.
func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid request body")
		}
		return v, false
	}
	return v, true
}

// urlParam is a short alias for chi.URLParam.
func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps the domain error taxonomy onto HTTP status codes.
// An invalid transition is a conflict: the resource exists but is not in a
// state that permits the request.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, domain.ErrSelfAssignment):
		msg := strings.TrimPrefix(err.Error(), domain.ErrSelfAssignment.Error()+": ")
		writeError(w, http.StatusForbidden, msg)
	case errors.Is(err, domain.ErrUnauthorized):
		msg := strings.TrimPrefix(err.Error(), domain.ErrUnauthorized.Error()+": ")
		writeError(w, http.StatusForbidden, msg)
	case errors.Is(err, domain.ErrInvalidState):
		msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidState.Error()+": ")
		writeError(w, http.StatusConflict, msg)
	case errors.Is(err, domain.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
		writeError(w, http.StatusBadRequest, msg)
	default:
		slog.Error("unhandled domain error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
