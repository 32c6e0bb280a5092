package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	cacheNoStore  = "no-store"
)

// dashboardHandler renders the page shell; panels are filled over SSE.
func dashboardHandler(analytics *services.Analytics, report config.ReportConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		ds := analytics.Dataset()
		last := analytics.LastLoad()
		page := templates.Page{
			Title:   report.Title,
			Options: services.FilterOptionsOf(ds),
			KPI:     services.ComputeKPIs(ds),
			TopN:    report.TopN,
			Status: templates.Status{
				Records: ds.Len(),
				Source:  last.Source,
				Dropped: last.Report.Dropped,
			},
		}

		w.Header().Set("Cache-Control", cacheNoStore)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.Dashboard(page).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func newHandler(cfg *config.Config, analytics *services.Analytics, logger *slog.Logger, metrics *observability.Metrics) http.Handler {
	templateHandlers := &server.TemplateHandlers{
		Dashboard: dashboardHandler(analytics, cfg.Report),
	}

	srv := server.NewServer(analytics, logger, cfg.Report, metrics, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.Metrics(metrics),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		middleware.MaxBodySize(cfg.Security.MaxUploadBytes),
	)

	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", observability.ServiceVersion,
		"config", cfg,
	)

	shutdownTracing, err := observability.InitTracing(cfg.Tracing, logger)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	analytics := services.NewAnalytics(
		services.WithLogger(logger),
		services.WithMetrics(metrics),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Data.LoadTimeout)
	start := time.Now()
	report, err := analytics.LoadFile(ctx, cfg.Data.File, cfg.Data.Sheet)
	cancel()
	if err != nil {
		// The dashboard still starts so a workbook can be uploaded.
		logger.Warn("initial dataset not loaded, starting empty",
			"file", cfg.Data.File,
			"error", err,
		)
	} else {
		logger.Info("sales data loaded",
			"file", cfg.Data.File,
			"records", report.RowsKept,
			"dropped", report.Dropped,
			"duration", time.Since(start),
		)
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, logger, metrics),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook("tracing", shutdownTracing)

	if err := gracefulServer.ListenAndServe(context.Background()); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
