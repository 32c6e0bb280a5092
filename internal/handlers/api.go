package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

const cacheControl = "no-cache"

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
	report    config.ReportConfig
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger, report config.ReportConfig) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
		report:    report,
	}
}

// serve filters the current dataset by the request's query and writes the
// result of compute.
func (h *APIHandlers) serve(w http.ResponseWriter, r *http.Request, compute func(ds *models.Dataset, topN int) (any, error)) {
	requestID := observability.GetRequestID(r.Context())

	f, topN, err := parseFilter(r, h.report.TopN)
	if err != nil {
		errors.WriteError(w, r, h.logger, err, requestID)
		return
	}

	data, err := compute(h.analytics.Filtered(f), topN)
	if err != nil {
		errors.WriteError(w, r, h.logger, err, requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, r, data, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleFilterOptions(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, r, services.FilterOptionsOf(h.analytics.Dataset()))
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ds *models.Dataset, _ int) (any, error) {
		return services.ComputeKPIs(ds), nil
	})
}

func (h *APIHandlers) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ds *models.Dataset, _ int) (any, error) {
		return services.MonthlyTrends(ds), nil
	})
}

func (h *APIHandlers) HandleQuarterly(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ds *models.Dataset, _ int) (any, error) {
		return services.QuarterlyTrends(ds), nil
	})
}

func (h *APIHandlers) HandleRegions(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ds *models.Dataset, _ int) (any, error) {
		return services.RegionalBreakdown(ds), nil
	})
}

func (h *APIHandlers) HandleCustomerTypes(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ds *models.Dataset, _ int) (any, error) {
		return services.ByCustomerType(ds), nil
	})
}

type productsResponse struct {
	N      int                 `json:"n"`
	Top    models.SummaryTable `json:"top"`
	Bottom models.SummaryTable `json:"bottom"`
}

func (h *APIHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ds *models.Dataset, topN int) (any, error) {
		top, bottom, err := services.TopBottomProducts(ds, topN)
		if err != nil {
			return nil, errors.ValidationWrap(err, "invalid top_n")
		}
		return productsResponse{N: topN, Top: top, Bottom: bottom}, nil
	})
}

func (h *APIHandlers) HandleProductMonthPivot(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ds *models.Dataset, _ int) (any, error) {
		return services.ProductMonthProfit(ds), nil
	})
}

func (h *APIHandlers) HandleRegionMonthPivot(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ds *models.Dataset, _ int) (any, error) {
		return services.RegionMonthSales(ds), nil
	})
}

func (h *APIHandlers) HandleMargins(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ds *models.Dataset, _ int) (any, error) {
		return services.DescribeMargins(ds), nil
	})
}

func (h *APIHandlers) HandleGrowth(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ds *models.Dataset, _ int) (any, error) {
		return services.MonthlyGrowth(ds), nil
	})
}

func (h *APIHandlers) HandleDataDictionary(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ds *models.Dataset, _ int) (any, error) {
		return services.DataDictionary(ds), nil
	})
}

func (h *APIHandlers) HandleTrend(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ds *models.Dataset, _ int) (any, error) {
		return services.RevenueTrend(services.MonthlyTrends(ds)), nil
	})
}

func (h *APIHandlers) HandleMarginHistogram(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ds *models.Dataset, _ int) (any, error) {
		return services.MarginHistogram(ds, h.report.HistogramBins), nil
	})
}

type uploadResponse struct {
	Source string                    `json:"source"`
	Report services.ValidationReport `json:"report"`
}

// HandleUpload replaces the current dataset with an uploaded workbook. The
// previous dataset stays in place when the upload fails validation.
func (h *APIHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			errors.WriteError(w, r, h.logger, errors.TooLarge("upload exceeds maximum size"), requestID)
			return
		}
		errors.WriteError(w, r, h.logger, errors.BadRequestWrap(err, "multipart field \"file\" is required"), requestID)
		return
	}
	defer file.Close()

	report, err := h.analytics.LoadReader(r.Context(), file, header.Filename, r.FormValue("sheet"))
	if err != nil {
		errors.WriteError(w, r, h.logger, loadError(err), requestID)
		return
	}

	errors.WriteSuccess(w, r, uploadResponse{Source: header.Filename, Report: report})
}

func loadError(err error) *errors.AppError {
	var schemaErr *services.SchemaError
	switch {
	case stderrors.As(err, &schemaErr):
		return errors.ValidationWrap(err, "required columns are missing").WithDetails(map[string][]string{
			"missing": schemaErr.Missing,
			"present": schemaErr.Present,
		})
	case stderrors.Is(err, services.ErrUnsupportedFormat):
		return errors.UnsupportedMediaWrap(err, "unsupported file format, expected .xlsx or .csv")
	default:
		return errors.BadRequestWrap(err, "could not read uploaded file")
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   observability.ServiceVersion,
	}

	errors.WriteSuccess(w, r, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, r, h.analytics.Stats())
}
