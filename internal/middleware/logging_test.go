package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incidenttagger/internal/logger"
)

func TestLoggingMiddleware(t *testing.T) {
	dir := t.TempDir()
	log, err := logger.New(dir, "info")
	require.NoError(t, err)
	defer log.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/report", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/selections", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	})
	h := LoggingMiddleware(log, mux)

	for _, path := range []string{"/api/report", "/api/selections"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	info, err := os.ReadFile(filepath.Join(dir, logger.InfoFile))
	require.NoError(t, err)
	assert.Contains(t, string(info), "GET /api/report -> 200")

	warning, err := os.ReadFile(filepath.Join(dir, logger.WarningFile))
	require.NoError(t, err)
	assert.Contains(t, string(warning), "GET /api/selections -> 400")
}
