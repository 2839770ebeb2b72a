package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"incidenttagger/internal/config"
	"incidenttagger/internal/logger"
	"incidenttagger/internal/service"
)

// UploadVideoHandler handles POST /api/videos: the multipart field "video" is
// sampled into the workspace and the extraction summary is returned.
func UploadVideoHandler(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes())
		file, header, err := r.FormFile("video")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "Video too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Video file is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		// The extension is a hint only; the decoder decides.
		if !strings.EqualFold(filepath.Ext(header.Filename), ".mp4") {
			logger.Warning("Uploaded file %s is not an .mp4", header.Filename)
		}

		result, err := manager.SubmitVideo(r.Context(), file, header.Filename)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		logger.Info("Video %s processed: %d frames saved", header.Filename, result.SavedCount)
		writeJSON(w, logger, http.StatusOK, result)
	}
}
