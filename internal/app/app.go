package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"housingcli/internal/config"
	apperrors "housingcli/internal/errors"
	"housingcli/internal/infrastructure"
	customMiddleware "housingcli/internal/middleware"
	"housingcli/internal/services"
	handlers "housingcli/internal/transport/http"
)

// Application represents the report server container
type Application struct {
	Config          *config.Config
	Paths           *config.Paths
	Router          *chi.Mux
	Server          *http.Server
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
	Metrics         *infrastructure.PipelineMetrics
	ArtifactService *services.ArtifactService
	HealthService   *services.HealthService
}

// NewApplication wires services, router and server. A nil providers value
// runs without tracing and without /metrics.
func NewApplication(cfg *config.Config, paths *config.Paths, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Application, error) {
	if cfg == nil || paths == nil {
		return nil, fmt.Errorf("config and paths are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := &Application{
		Config:          cfg,
		Paths:           paths,
		Logger:          logger,
		OTelProviders:   providers,
		ArtifactService: services.NewArtifactService(paths, logger),
		HealthService:   services.NewHealthService(config.AppVersion, paths, logger),
	}

	if providers != nil {
		metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
		app.Metrics = metrics
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// setupRouter builds the middleware chain and routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)
	if a.OTelProviders != nil {
		r.Use(customMiddleware.Tracing(a.OTelProviders.Tracer))
	}
	r.Use(customMiddleware.StructuredLogger(a.Logger, a.Metrics))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	if rl := a.Config.Server.RateLimit; rl.Enabled {
		r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
	}

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Get("/healthz", healthHandler.HealthCheck)

	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	artifactHandler := handlers.NewArtifactHandler(a.ArtifactService, a.Logger)
	r.Mount("/api/v1", artifactHandler.Routes())

	a.setupStaticRoutes(r)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteError(w, apperrors.NotFoundError(r.URL.Path))
	})

	a.Router = r
}

// setupStaticRoutes serves the generated charts
func (a *Application) setupStaticRoutes(r chi.Router) {
	reports := http.StripPrefix("/reports", http.FileServer(http.Dir(a.Paths.ReportsDir)))
	r.Route("/reports", func(r chi.Router) {
		r.Handle("/*", reports)
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts serving in the background. A listener failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting report server",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("reports_dir", a.Paths.ReportsDir),
		slog.String("analytics_dir", a.Paths.AnalyticsDir))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	status := a.HealthService.HealthCheck(ctx)
	if status.Status != "ok" {
		a.Logger.WarnContext(ctx, "Pipeline artifacts incomplete; run the pipeline first",
			slog.Any("artifacts", status.Artifacts))
	}
	return nil
}

// Stop gracefully stops the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down report server")

	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Report server shutdown complete")
	return nil
}

// Run serves until ctx is cancelled, then shuts down
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}
	<-ctx.Done()
	return a.Stop(context.WithoutCancel(ctx))
}
