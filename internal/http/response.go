package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"salestats/internal/core"
	"salestats/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Failed to encode response",
			log.FieldError, err.Error())
	}
}

// writeError maps err onto a status code. fallback is the message clients
// see for failures they cannot act on; the cause is only logged.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, msg := classify(err, fallback)

	logger := log.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), fallback,
			log.FieldStatusCode, status,
			log.FieldError, err.Error())
	} else {
		logger.DebugContext(r.Context(), "Request rejected",
			log.FieldStatusCode, status,
			log.FieldError, err.Error())
	}

	writeJSON(w, r, status, errorResponse{Error: msg})
}

func classify(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidMonth):
		return http.StatusBadRequest, "Invalid month value"
	case errors.Is(err, core.ErrLoadInProgress):
		return http.StatusConflict, "A seed load is already in progress."
	case errors.Is(err, core.ErrInvalidRecord):
		return http.StatusBadGateway, "Seed data was rejected: " + err.Error()
	case errors.Is(err, core.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, fallback
	default:
		return http.StatusInternalServerError, fallback
	}
}
