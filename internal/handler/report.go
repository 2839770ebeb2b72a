package handler

import (
	"net/http"

	"incidenttagger/internal/logger"
	"incidenttagger/internal/service"
)

// ReportHandler returns the tag list and its markdown rendering.
func ReportHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		report, err := manager.Report()
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, report)
	}
}

// ExportReportHandler is the export button. Export is not implemented yet.
func ExportReportHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		logger.Info("Report export requested")
		writeJSON(w, logger, http.StatusNotImplemented, map[string]string{"message": service.ExportPlaceholder})
	}
}

// CatalogHandler lists the violation catalog in order.
func CatalogHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, manager.Catalog().Entries())
	}
}

// HealthHandler reports liveness.
func HealthHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	}
}
