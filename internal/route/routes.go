package route

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"incidenttagger/internal/config"
	"incidenttagger/internal/handler"
	"incidenttagger/internal/logger"
	"incidenttagger/internal/middleware"
	"incidenttagger/internal/service"
	eventhub "incidenttagger/internal/service/websocket"
)

// dynamicHTMLHandler serves /path as <static>/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/" {
			path = "/index"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(path)+".html")

		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// SetupRoutes registers HTTP routes, static file serving and API endpoints,
// and wraps the mux with the request logging middleware.
func SetupRoutes(manager *service.Manager, hub *eventhub.Hub, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDirectory))))

	// API endpoints
	mux.HandleFunc("/api/videos", handler.UploadVideoHandler(manager, cfg, logger))
	mux.HandleFunc("/api/frames", handler.ListFramesHandler(manager, logger))
	mux.HandleFunc("/api/frames/view", handler.ViewFrameHandler(manager, logger))
	mux.HandleFunc("/api/selections", handler.SelectionHandler(manager, logger))
	mux.HandleFunc("/api/report", handler.ReportHandler(manager, logger))
	mux.HandleFunc("/api/report/export", handler.ExportReportHandler(logger))
	mux.HandleFunc("/api/catalog", handler.CatalogHandler(manager, logger))
	mux.HandleFunc("/api/events", handler.EventsWebsocketHandler(hub, logger))

	// Log endpoints
	mux.HandleFunc("/logs/info", handler.ShowLogsHandler(logger, "info.log"))
	mux.HandleFunc("/logs/warning", handler.ShowLogsHandler(logger, "warning.log"))
	mux.HandleFunc("/logs/error", handler.ShowLogsHandler(logger, "error.log"))

	mux.HandleFunc("/logs/info/clear", handler.ClearLogsHandler(logger, "info.log"))
	mux.HandleFunc("/logs/warning/clear", handler.ClearLogsHandler(logger, "warning.log"))
	mux.HandleFunc("/logs/error/clear", handler.ClearLogsHandler(logger, "error.log"))

	// Monitoring
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", handler.HealthHandler(logger))

	// Automatic HTML handler mapping, for example / -> <static>/index.html
	mux.HandleFunc("/", dynamicHTMLHandler(cfg.StaticDirectory))

	return middleware.LoggingMiddleware(logger, mux)
}
