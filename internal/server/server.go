package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

type Server struct {
	analytics      *services.Analytics
	router         chi.Router
	logger         *slog.Logger
	apiHandlers    *handlers.APIHandlers
	sseHandlers    *handlers.SSEHandlers
	exportHandlers *handlers.ExportHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, report config.ReportConfig, metrics *observability.Metrics, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:      analytics,
		router:         chi.NewRouter(),
		logger:         logger,
		apiHandlers:    handlers.NewAPIHandlers(analytics, logger, report),
		sseHandlers:    handlers.NewSSEHandlers(analytics, logger, report),
		exportHandlers: handlers.NewExportHandlers(analytics, logger, report),
	}
	s.setupRoutes(templateHandlers, metrics)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers, metrics *observability.Metrics) {
	r := s.router

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		errors.WriteError(w, req, s.logger, errors.NotFound("route not found"), observability.GetRequestID(req.Context()))
	})

	// Dashboard routes
	r.Get("/", templateHandlers.Dashboard)
	r.Get("/health", s.apiHandlers.HandleHealth)
	r.Get("/admin/stats", s.apiHandlers.HandleStats)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/filter-options", s.apiHandlers.HandleFilterOptions)
		r.Get("/kpis", s.apiHandlers.HandleKPIs)
		r.Get("/monthly", s.apiHandlers.HandleMonthly)
		r.Get("/quarterly", s.apiHandlers.HandleQuarterly)
		r.Get("/regions", s.apiHandlers.HandleRegions)
		r.Get("/customer-types", s.apiHandlers.HandleCustomerTypes)
		r.Get("/products", s.apiHandlers.HandleProducts)
		r.Get("/pivot/product-month", s.apiHandlers.HandleProductMonthPivot)
		r.Get("/pivot/region-month", s.apiHandlers.HandleRegionMonthPivot)
		r.Get("/margins", s.apiHandlers.HandleMargins)
		r.Get("/growth", s.apiHandlers.HandleGrowth)
		r.Get("/data-dictionary", s.apiHandlers.HandleDataDictionary)
		r.Get("/trend", s.apiHandlers.HandleTrend)
		r.Get("/margin-histogram", s.apiHandlers.HandleMarginHistogram)
		r.Post("/dataset", s.apiHandlers.HandleUpload)

		r.Route("/export", func(r chi.Router) {
			r.Get("/workbook", s.exportHandlers.HandleWorkbook)
			r.Get("/csv/{sheet}", s.exportHandlers.HandleSheetCSV)
			r.Get("/pdf", s.exportHandlers.HandlePDF)
		})
	})

	// Datastar SSE endpoints
	r.Get("/sse/refresh", s.sseHandlers.HandleRefresh)
	r.Get("/sse/status", s.sseHandlers.HandleStatus)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
