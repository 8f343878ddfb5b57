package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jgtann/gdp-dashboard/internal/config"
	apierrors "github.com/jgtann/gdp-dashboard/internal/errors"
	"github.com/jgtann/gdp-dashboard/internal/infrastructure"
	customMiddleware "github.com/jgtann/gdp-dashboard/internal/middleware"
	"github.com/jgtann/gdp-dashboard/internal/services"
	handlers "github.com/jgtann/gdp-dashboard/internal/transport/http"
	"github.com/jgtann/gdp-dashboard/pkg/contracts"
)

// AppName is the display name of the server
const AppName = "Accuracy Dashboard"

// APIPrefix is where the JSON API is mounted
const APIPrefix = "/api/v1"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.DashboardMetrics
	Core          *Core
	HealthService *services.HealthService
	ErrorHandler  *apierrors.ErrorHandler

	listener net.Listener
}

// NewApplication creates an application from cfg. A nil logger initializes
// the process logger from cfg.Logging.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if logger == nil {
		var err error
		logger, err = infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("source", cfg.Data.Source),
		slog.String("duplicate_policy", cfg.Data.DuplicatePolicy))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateDashboardMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard metrics: %w", err)
	}

	core := NewCore(cfg, logger, metrics, nil)

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		Core:          core,
		HealthService: services.NewHealthService(contracts.Version, contracts.BuildTime, contracts.GitCommit, core.ReadinessProbe(), logger),
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	a.setupRouter()
	a.createServer()
	return a, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer → the rest
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}
	r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
	r.Use(customMiddleware.Compress(5))

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	dashboard := handlers.NewDashboardHandler(a.Core.Dashboard, customMiddleware.NewValidator(), a.Logger, a.ErrorHandler)
	page := handlers.NewPageHandler(a.Core.Dashboard, a.Config.Chart.Height, APIPrefix, a.Logger, a.ErrorHandler)
	health := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.Get("/", page.ServeDashboard)
	r.Get("/healthz", health.HealthCheck)
	r.Get("/readyz", health.ReadinessCheck)
	r.Get("/livez", health.LivenessCheck)
	r.Get("/version", health.Version)
	r.Method(http.MethodGet, "/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))
	r.Mount(APIPrefix, dashboard.Routes())

	a.Router = r
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match", customMiddleware.RequestIDHeader},
		ExposedHeaders: []string{"ETag", "Content-Disposition", customMiddleware.RequestIDHeader},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	s := a.Config.Server
	a.Server = &http.Server{
		Addr:              s.Addr(),
		Handler:           a.Router,
		ReadTimeout:       s.ReadTimeout,
		ReadHeaderTimeout: s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
		MaxHeaderBytes:    s.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Preload loads the default source. A load failure is returned so the caller
// can refuse to start.
func (a *Application) Preload(ctx context.Context) error {
	start := time.Now()
	ds, err := a.Core.Dashboard.Dataset(ctx, "")
	if err != nil {
		return err
	}
	a.Logger.InfoContext(ctx, "dataset preloaded",
		slog.String("source", ds.Source().Identity()),
		slog.Int("rows", ds.Len()),
		slog.Int("measures", len(ds.DistinctMeasures())),
		slog.Int("groups", len(ds.DistinctGroups())),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Addr returns the address the server listens on once started
func (a *Application) Addr() string {
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return a.Server.Addr
}

// Start preloads the dataset when configured and starts serving in the
// background. cancel is called if the server stops with an error.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	if a.Config.Data.Preload {
		if err := a.Preload(ctx); err != nil {
			return fmt.Errorf("preload %s: %w", a.Config.Data.Source, err)
		}
	}

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", "http://"+a.Addr()),
		slog.String("version", contracts.Version))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	stats := a.Core.Store.Stats()
	a.Logger.InfoContext(ctx, "Application shutdown complete",
		slog.Int("cached_datasets", stats.Entries),
		slog.Any("sources", a.Core.Store.Sources()),
		slog.Int64("cache_hits", stats.Hits),
		slog.Int64("reads", stats.Reads))
	return errors.Join(errs...)
}

// Run runs the application until interrupted or ctx is done
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.InfoContext(context.Background(), "Received shutdown signal")
	return a.Stop(context.Background())
}
