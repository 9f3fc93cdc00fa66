// Package app wires configuration, services, and the HTTP server into a
// runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"fuelpulse/internal/config"
	apierrors "fuelpulse/internal/errors"
	"fuelpulse/internal/infrastructure"
	customMW "fuelpulse/internal/middleware"
	"fuelpulse/internal/operations"
	"fuelpulse/internal/services"
	httptransport "fuelpulse/internal/transport/http"
	ws "fuelpulse/internal/websocket"
	"fuelpulse/pkg/contracts"
)

// Application holds the wired components of the fuel analytics server.
type Application struct {
	config *config.Config
	paths  *config.Paths
	logger *slog.Logger
	server *http.Server

	hub             *ws.Hub
	otelProviders   *infrastructure.OTelProviders
	businessMetrics *infrastructure.BusinessMetrics
	systemMetrics   *infrastructure.SystemMetricsCollector
	errorHandler    *apierrors.ErrorHandler

	datasetService    *services.DatasetService
	operationsService *services.OperationsService
	healthService     *services.HealthService
}

// NewApplication builds a fully wired application from configuration,
// environment variables, and the resolved directory layout.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}
	paths.LogPathResolution()

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	if err := operations.InitGlobalOperationTracer(otelProviders); err != nil {
		logger.Warn("operation tracer initialization failed", slog.String("error", err.Error()))
	}
	if err := ws.InitOTelMetrics(); err != nil {
		logger.Warn("websocket metrics initialization failed", slog.String("error", err.Error()))
	}

	app := &Application{
		config:        cfg,
		paths:         paths,
		logger:        logger,
		otelProviders: otelProviders,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.server = app.createServer(app.setupRouter())

	logger.Info("application initialized",
		slog.String("version", contracts.Version),
		slog.Int("port", cfg.Server.Port),
		slog.String("data_dir", paths.DataDir),
	)

	return app, nil
}

func (app *Application) initializeServices() error {
	app.hub = ws.NewHub(app.logger)
	app.hub.Start()

	metrics, err := infrastructure.CreateBusinessMetrics(app.otelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	app.businessMetrics = metrics

	collector, err := infrastructure.NewSystemMetricsCollector(app.otelProviders.Meter, time.Minute)
	if err != nil {
		app.logger.Warn("system metrics collection disabled", slog.String("error", err.Error()))
	} else {
		app.systemMetrics = collector
	}

	app.datasetService = services.NewDatasetService(app.config, app.hub, metrics, app.logger)

	opsService, err := services.NewOperationsService(app.config, app.paths, app.hub, app.datasetService, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize operations service: %w", err)
	}
	app.operationsService = opsService

	app.healthService = services.NewHealthService(
		contracts.Version,
		contracts.BuildTime,
		app.datasetService,
		app.operationsService,
		app.hub,
		app.logger,
	)

	// Warm the in-memory dataset so queries work immediately after start.
	// A missing source file is not fatal: the server comes up degraded and
	// a refresh operation can populate the dataset later.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.datasetService.Load(ctx); err != nil {
		app.logger.Warn("initial dataset load failed, starting without data",
			slog.String("error", err.Error()),
		)
	}

	return nil
}

func (app *Application) setupRouter() chi.Router {
	r := chi.NewRouter()

	// Keep the outermost chain minimal so the websocket upgrade is not
	// wrapped by response middleware that breaks hijacking.
	r.Use(customMW.RequestID)
	r.Use(customMW.RealIP)

	// Unknown routes and wrong methods answer in the same problem+json
	// envelope as handler errors.
	r.NotFound(app.errorHandler.NotFound)
	r.MethodNotAllowed(app.errorHandler.MethodNotAllowed)

	r.With(customMW.WebSocketTraceMiddleware(app.logger)).Get("/ws", app.handleWebSocket)

	if app.otelProviders.PrometheusHTTP != nil {
		r.Method(http.MethodGet, "/metrics", app.otelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		if otelMW, err := customMW.NewOTelMiddleware(app.otelProviders); err == nil {
			r.Use(otelMW.Handler)
		} else {
			app.logger.Warn("otel middleware disabled", slog.String("error", err.Error()))
		}
		r.Use(customMW.BusinessMetricsMiddleware(app.businessMetrics))
		r.Use(customMW.StructuredLogger(app.logger))
		r.Use(customMW.Recoverer(app.logger))
		r.Use(customMW.SecurityHeaders)

		if app.config.Security.EnableCORS {
			r.Use(customMW.CORS(customMW.CORSConfig{
				AllowedOrigins:   app.config.Security.AllowedOrigins,
				AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
				ExposedHeaders:   []string{"X-Request-ID"},
				AllowCredentials: false,
				MaxAge:           300,
				Logger:           app.logger,
			}))
		}

		if app.config.Security.RateLimit.Enabled {
			limiter := customMW.NewRateLimiter(
				app.config.Security.RateLimit.RPS,
				app.config.Security.RateLimit.Burst,
				app.logger,
			)
			r.Use(limiter.Handler)
		}

		r.Route("/api", func(r chi.Router) {
			// Query endpoints share the read timeout; the refresh
			// pipeline gets the longer operation timeout.
			r.Group(func(r chi.Router) {
				r.Use(customMW.Timeout(app.config.Server.ReadTimeout, app.logger))

				r.Mount("/prices", httptransport.NewPricesHandler(app.datasetService, app.logger, app.errorHandler).Routes())
				r.Mount("/analytics", httptransport.NewAnalyticsHandler(app.datasetService, app.logger, app.errorHandler).Routes())
				r.Mount("/export", httptransport.NewExportHandler(app.datasetService, app.logger, app.errorHandler).Routes())

				healthHandler := httptransport.NewHealthHandler(app.healthService, app.logger)
				r.Mount("/health", healthHandler.Routes())
				r.Get("/version", healthHandler.Version)
			})

			r.Group(func(r chi.Router) {
				r.Use(customMW.Timeout(app.config.Server.OperationTimeout, app.logger))
				validation := customMW.NewValidationMiddleware(app.logger, app.errorHandler)
				r.Use(validation.ValidateRequest)
				r.Mount("/operations", httptransport.NewOperationsHandler(app.operationsService, app.logger, app.errorHandler).Routes())
			})
		})

		r.Get("/", httptransport.ServeDashboard(app.paths.WebDir))
		if config.FileExists(app.paths.StaticDir) {
			fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(app.paths.StaticDir)))
			r.Handle("/static/*", fileServer)
		}
	})

	return r
}

func (app *Application) createServer(handler http.Handler) *http.Server {
	return &http.Server{
		Addr:           fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:        handler,
		ReadTimeout:    app.config.Server.ReadTimeout,
		WriteTimeout:   app.config.Server.WriteTimeout,
		IdleTimeout:    app.config.Server.IdleTimeout,
		MaxHeaderBytes: app.config.Server.MaxHeaderBytes,
	}
}

func (app *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  app.config.WebSocket.ReadBufferSize,
		WriteBufferSize: app.config.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range app.config.Security.AllowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.logger.ErrorContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr),
		)
		return
	}

	traceID := infrastructure.GetTraceID(r.Context())
	client := ws.NewClientWithTrace(app.hub, conn, traceID, app.logger)
	app.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// Start begins serving HTTP requests. It blocks until the server stops.
func (app *Application) Start() error {
	app.logger.Info("server starting",
		slog.String("addr", app.server.Addr),
		slog.String("version", contracts.Version),
	)

	if app.systemMetrics != nil {
		go app.systemMetrics.Start(context.Background())
	}

	if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server, the websocket hub, and the
// telemetry pipeline.
func (app *Application) Stop(ctx context.Context) error {
	app.logger.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, app.config.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		firstErr = fmt.Errorf("server shutdown: %w", err)
	}

	app.hub.Stop()

	if app.systemMetrics != nil {
		app.systemMetrics.Stop()
	}

	if app.otelProviders != nil {
		if err := app.otelProviders.Shutdown(shutdownCtx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("telemetry shutdown: %w", err)
		}
	}

	app.logger.Info("server stopped")
	return firstErr
}

// Run starts the application and blocks until an interrupt or terminate
// signal arrives, then performs a graceful shutdown.
func (app *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		app.logger.Info("signal received", slog.String("signal", sig.String()))
	}

	return app.Stop(context.Background())
}

// Router exposes the HTTP handler for tests.
func (app *Application) Router() http.Handler {
	return app.server.Handler
}
