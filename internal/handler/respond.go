package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"incidenttagger/internal/catalog"
	"incidenttagger/internal/logger"
	"incidenttagger/internal/service/storage"
	"incidenttagger/internal/service/tagger"
)

// writeJSON encodes data as the response body.
func writeJSON(w http.ResponseWriter, logger *logger.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

// writeError maps err onto a status code: rejected input is 400, anything else 500.
func writeError(w http.ResponseWriter, logger *logger.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrUnknownViolation),
		errors.Is(err, tagger.ErrFrameOutOfRange),
		errors.Is(err, storage.ErrInvalidFrameName):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed: %v", err)
		writeJSON(w, logger, status, map[string]string{"error": "Internal Server Error"})
		return
	}
	writeJSON(w, logger, status, map[string]string{"error": err.Error()})
}
