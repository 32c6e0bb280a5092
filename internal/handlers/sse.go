package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
	report    config.ReportConfig
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger, report config.ReportConfig) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
		report:    report,
	}
}

// chartSignals are patched into the page's local signals and drawn client side.
type chartSignals struct {
	Monthly        models.SummaryTable `json:"_monthlyData"`
	Quarterly      models.SummaryTable `json:"_quarterlyData"`
	Regions        models.SummaryTable `json:"_regionsData"`
	CustomerTypes  models.SummaryTable `json:"_customerTypesData"`
	TopProducts    models.SummaryTable `json:"_topProducts"`
	BottomProducts models.SummaryTable `json:"_bottomProducts"`
	Heatmap        models.PivotTable   `json:"_heatmapData"`
	Histogram      models.Histogram    `json:"_histogramData"`
	Trend          models.TrendLine    `json:"_trendData"`
}

func renderHTML(r *http.Request, c templ.Component) (string, error) {
	var buf bytes.Buffer
	err := c.Render(r.Context(), &buf)
	return buf.String(), err
}

// HandleRefresh recomputes every dashboard panel for the filter held in the
// client's signals.
func (h *SSEHandlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	var fq filterQuery
	if err := datastar.ReadSignals(r, &fq); err != nil {
		errors.WriteError(w, r, h.logger, errors.BadRequestWrap(err, "invalid signals"), requestID)
		return
	}
	f, topN, err := fq.toFilter(h.report.TopN)
	if err != nil {
		errors.WriteError(w, r, h.logger, err, requestID)
		return
	}

	ds := h.analytics.Filtered(f)
	top, bottom, err := services.TopBottomProducts(ds, topN)
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.ValidationWrap(err, "invalid top_n"), requestID)
		return
	}

	sse := datastar.NewSSE(w, r)

	kpiHTML, err := renderHTML(r, templates.KPICards(services.ComputeKPIs(ds)))
	if err != nil {
		h.logger.Error("render kpi cards", "error", err, "request_id", requestID)
		return
	}
	if err := sse.PatchElements(kpiHTML); err != nil {
		h.logger.Warn("patch kpi cards", "error", err, "request_id", requestID)
		return
	}

	productsHTML, err := renderHTML(r, templates.ProductsTable(topN, top, bottom))
	if err != nil {
		h.logger.Error("render products table", "error", err, "request_id", requestID)
		return
	}
	if err := sse.PatchElements(productsHTML); err != nil {
		h.logger.Warn("patch products table", "error", err, "request_id", requestID)
		return
	}

	monthly := services.MonthlyTrends(ds)
	signals, err := json.Marshal(chartSignals{
		Monthly:        monthly,
		Quarterly:      services.QuarterlyTrends(ds),
		Regions:        services.RegionalBreakdown(ds),
		CustomerTypes:  services.ByCustomerType(ds),
		TopProducts:    top,
		BottomProducts: bottom,
		Heatmap:        services.ProductMonthProfit(ds),
		Histogram:      services.MarginHistogram(ds, h.report.HistogramBins),
		Trend:          services.RevenueTrend(monthly),
	})
	if err != nil {
		h.logger.Error("marshal chart signals", "error", err, "request_id", requestID)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.Warn("patch chart signals", "error", err, "request_id", requestID)
	}
}

// HandleStatus patches the dataset banner, used after an upload.
func (h *SSEHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	last := h.analytics.LastLoad()
	html, err := renderHTML(r, templates.DatasetStatus(templates.Status{
		Records: h.analytics.Dataset().Len(),
		Source:  last.Source,
		Dropped: last.Report.Dropped,
	}))
	if err != nil {
		h.logger.Error("render dataset status", "error", err)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch dataset status", "error", err)
	}
}
