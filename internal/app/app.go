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
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"trainpulse/internal/config"
	apierrors "trainpulse/internal/errors"
	"trainpulse/internal/infrastructure"
	customMiddleware "trainpulse/internal/middleware"
	"trainpulse/internal/services"
	"trainpulse/internal/sheets"
	transport "trainpulse/internal/transport/http"
	"trainpulse/pkg/contracts"
)

// AppName is the application name used in logs and health output
const AppName = "trainpulse"

// Application holds all application components
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Router        *chi.Mux
	Server        *http.Server
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	Service       *services.DashboardService
}

// NewApplication creates and wires the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("initialize otel: %w", err)
	}

	var metrics *infrastructure.PipelineMetrics
	if providers.Meter != nil {
		metrics, err = infrastructure.CreatePipelineMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("create metrics: %w", err)
		}
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the fetch layer and the dashboard service.
func (a *Application) initializeServices() error {
	var source sheets.Source
	if a.Config.Sources.APIKey != "" {
		client, err := sheets.NewAPIClient(context.Background(), a.Config.Sources.APIKey, a.Logger)
		if err != nil {
			return fmt.Errorf("create sheets api client: %w", err)
		}
		source = client
	} else {
		opts := []sheets.CSVExportOption{
			sheets.WithTimeout(a.Config.Fetch.Timeout),
			sheets.WithRetryWait(a.Config.Fetch.RetryWait),
		}
		if a.Metrics != nil {
			opts = append(opts, sheets.WithRetryNotify(func(table string) {
				a.Metrics.FetchRetriesTotal.Add(context.Background(), 1,
					metric.WithAttributes(attribute.String("table", table)))
			}))
		}
		source = sheets.NewCSVExportClient(a.Logger, opts...)
	}

	cache := sheets.NewCache(a.Config.Fetch.CacheTTL)
	loader := sheets.NewLoader(source, cache,
		sourceRef("catalog", a.Config.Sources.Catalog),
		sourceRef("orders", a.Config.Sources.Orders),
		sourceRef("customers", a.Config.Sources.Customers),
		a.Logger,
	)

	a.Service = services.NewDashboardService(loader, a.Config.Sources, a.Logger, a.Metrics)
	return nil
}

func sourceRef(name string, tab config.SheetConfig) sheets.SourceRef {
	return sheets.SourceRef{
		Name:          name,
		SpreadsheetID: tab.SpreadsheetID,
		GID:           tab.GID,
		SheetTitle:    tab.SheetTitle,
	}
}

// setupRouter configures the chi router and all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	if a.OTelProviders.Tracer != nil {
		otelMW := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		r.Use(otelMW.Handler)
	}
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.Compress(5))

	if a.Config.Server.RateLimitRPS > 0 {
		limiter := customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimitRPS,
			a.Config.Server.RateLimitBurst,
			a.Logger,
		)
		r.Use(limiter.Handler)
	}

	errorHandler := apierrors.NewErrorHandler(a.Logger)
	dashboardHandler := transport.NewDashboardHandler(a.Service, a.Logger, errorHandler)
	exportHandler := transport.NewExportHandler(a.Service, a.Logger, errorHandler)
	healthHandler := transport.NewHealthHandler(a.Service, contracts.Version, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Mount("/dashboard", dashboardHandler.Routes())
		r.Mount("/export", exportHandler.Routes())
		r.Get("/healthz", healthHandler.HealthCheck)
		r.Get("/healthz/ready", healthHandler.ReadinessCheck)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts the HTTP server and kicks off the initial refresh.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	// Initial refresh runs in the background so a slow or failing source
	// does not block startup. The API serves 503 until it succeeds.
	go func() {
		refreshCtx, refreshCancel := context.WithTimeout(ctx, 2*a.Config.Fetch.Timeout)
		defer refreshCancel()

		if _, err := a.Service.Refresh(refreshCtx, false); err != nil {
			a.Logger.ErrorContext(refreshCtx, "initial refresh failed",
				slog.String("error", err.Error()))
			return
		}
		a.Logger.InfoContext(refreshCtx, "initial refresh complete")
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry",
				slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "error closing log file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}
