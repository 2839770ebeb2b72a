package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"incidenttagger/internal/catalog"
	"incidenttagger/internal/config"
	"incidenttagger/internal/logger"
	"incidenttagger/internal/repository/sqlite"
	"incidenttagger/internal/route"
	"incidenttagger/internal/service"
	"incidenttagger/internal/service/storage"
	eventhub "incidenttagger/internal/service/websocket"
	"incidenttagger/internal/tracing"
	"incidenttagger/internal/video"
	"incidenttagger/internal/video/opencv"
)

type App struct {
	config  *config.Config
	logger  *logger.Logger
	db      *sqlite.DB
	hub     *eventhub.Hub
	manager *service.Manager
	tracer  *sdktrace.TracerProvider
}

// NewOpener returns the video decoder selected by DECODER.
func NewOpener(cfg *config.Config) video.Opener {
	if cfg.Decoder == config.DecoderFFmpeg {
		return video.NewFFmpeg(cfg.FFmpegPath, cfg.FFprobePath)
	}
	return opencv.NewOpener()
}

// NewApp wires every service from cfg. The workspace is wiped here, so a
// directory that cannot be recreated stops the server from starting.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.LogDirectory, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &App{config: cfg, logger: log}
	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.config

	if cfg.OTelEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.OTelEndpoint)
		if err != nil {
			return err
		}
		a.tracer = tp
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	a.db = db

	workspace := storage.NewWorkspace(cfg.WorkspaceDirectory)
	if err := workspace.Reset(); err != nil {
		return err
	}

	a.hub = eventhub.NewHub(a.logger)
	a.manager = service.NewManager(workspace, NewOpener(cfg), sqlite.NewSelectionRepository(db),
		cat, a.hub, cfg, a.logger)
	return nil
}

// Run serves HTTP until ctx is cancelled, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	// Start background services
	go a.hub.Run(ctx)

	router := route.SetupRoutes(a.manager, a.hub, a.config, a.logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Port),
		Handler: router,
	}

	fmt.Printf("🚦 Incident Frame Tagger\n")
	fmt.Printf("📍 URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("📁 Frames: %s\n", a.config.WorkspaceDirectory)
	fmt.Printf("🎞️  Decoder: %s (every %d frame(s))\n", a.config.Decoder, a.config.SampleInterval)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Server shutdown failed: %v", err)
			return err
		}
		a.logger.Info("Server stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}

// Handler exposes the routed handler without starting a listener.
func (a *App) Handler() http.Handler {
	return route.SetupRoutes(a.manager, a.hub, a.config, a.logger)
}

func (a *App) Close() {
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil {
			a.logger.Warning("Tracer shutdown: %v", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	a.logger.Close()
}
