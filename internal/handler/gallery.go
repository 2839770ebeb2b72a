package handler

import (
	"encoding/json"
	"net/http"
	"os"

	"incidenttagger/internal/dto"
	"incidenttagger/internal/logger"
	"incidenttagger/internal/service"
)

// ListFramesHandler returns the displayed frames with the selector options.
func ListFramesHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		data, err := manager.Frames()
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, data)
	}
}

// ViewFrameHandler serves a single saved frame specified via the "image" query parameter.
func ViewFrameHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		image := r.URL.Query().Get("image")
		if image == "" {
			http.Error(w, "Image parameter is required", http.StatusBadRequest)
			return
		}

		filePath, err := manager.Workspace().Path(image)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "image/jpeg")
		http.ServeFile(w, r, filePath)
	}
}

// SelectionHandler handles PUT /api/selections and returns the rebuilt tag list.
func SelectionHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut && r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req dto.SelectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}

		tags, err := manager.Select(req.Index, req.Violation)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, tags)
	}
}
