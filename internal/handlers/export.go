package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/exporter"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv; charset=utf-8"
	pdfContentType  = "application/pdf"
)

// ExportHandlers serve downloadable reports of the filtered dataset.
type ExportHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
	report    config.ReportConfig
	renderPDF func(*http.Request, []byte) ([]byte, error)
}

func NewExportHandlers(analytics *services.Analytics, logger *slog.Logger, report config.ReportConfig) *ExportHandlers {
	return &ExportHandlers{
		analytics: analytics,
		logger:    logger,
		report:    report,
		renderPDF: func(r *http.Request, html []byte) ([]byte, error) {
			return exporter.RenderPDF(r.Context(), string(html))
		},
	}
}

func (h *ExportHandlers) sheets() []services.Sheet {
	return services.ReportSheets(h.report.ExportTopN)
}

func attachment(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Cache-Control", "no-store")
}

func exportName(ext string) string {
	return fmt.Sprintf("sales_summary_%s.%s", time.Now().Format("20060102"), ext)
}

func (h *ExportHandlers) HandleWorkbook(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	f, _, err := parseFilter(r, h.report.TopN)
	if err != nil {
		errors.WriteError(w, r, h.logger, err, requestID)
		return
	}

	var buf bytes.Buffer
	err = exporter.WriteWorkbook(r.Context(), &buf, h.analytics.Filtered(f), h.sheets(), services.ComputeKPIs)
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "failed to build workbook"), requestID)
		return
	}

	attachment(w, xlsxContentType, exportName("xlsx"))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("write workbook response", "error", err, "request_id", requestID)
	}
}

// HandleSheetCSV writes a single report sheet, or the raw data sheet, as CSV.
func (h *ExportHandlers) HandleSheetCSV(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	name, err := url.PathUnescape(chi.URLParam(r, "sheet"))
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.BadRequestWrap(err, "invalid sheet name"), requestID)
		return
	}

	f, _, err := parseFilter(r, h.report.TopN)
	if err != nil {
		errors.WriteError(w, r, h.logger, err, requestID)
		return
	}
	ds := h.analytics.Filtered(f)

	var buf bytes.Buffer
	switch name {
	case exporter.KPISheet:
		err = exporter.WriteCSV(&buf, services.ComputeKPIs(ds).Table(name))
	case exporter.DataSheet:
		err = exporter.WriteCSV(&buf, exporter.DatasetTable(ds))
	default:
		sheet, ok := services.FindSheet(h.sheets(), name)
		if !ok {
			errors.WriteError(w, r, h.logger, errors.NotFound(fmt.Sprintf("unknown sheet %q", name)), requestID)
			return
		}
		var t models.Tabler
		t, err = sheet.Build(ds)
		if err == nil {
			err = exporter.WriteCSV(&buf, t.Table(name))
		}
	}
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "failed to build csv"), requestID)
		return
	}

	attachment(w, csvContentType, name+".csv")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("write csv response", "error", err, "request_id", requestID)
	}
}

func (h *ExportHandlers) HandlePDF(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	f, _, err := parseFilter(r, h.report.TopN)
	if err != nil {
		errors.WriteError(w, r, h.logger, err, requestID)
		return
	}
	ds := h.analytics.Filtered(f)

	tables, err := exporter.BuildTables(r.Context(), ds, h.sheets())
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "failed to build report"), requestID)
		return
	}

	var html bytes.Buffer
	if err := exporter.WriteHTML(&html, h.report.Title, services.ComputeKPIs(ds), tables); err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "failed to render report"), requestID)
		return
	}

	pdf, err := h.renderPDF(r, html.Bytes())
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.ServiceUnavailable("pdf rendering is unavailable"), requestID)
		h.logger.Error("render pdf", "error", err, "request_id", requestID)
		return
	}

	attachment(w, pdfContentType, exportName("pdf"))
	if _, err := w.Write(pdf); err != nil {
		h.logger.Warn("write pdf response", "error", err, "request_id", requestID)
	}
}
