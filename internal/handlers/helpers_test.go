package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

var testReport = config.ReportConfig{
	TopN:          2,
	ExportTopN:    20,
	HistogramBins: 4,
	Title:         "Test Report",
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func createTestAnalytics() *services.Analytics {
	a := services.NewAnalytics(services.WithLogger(testLogger()))
	a.SetDataset(models.NewDataset([]models.Record{
		models.NewRecord(day(2024, 1, 15), "Widget", "North", 100, 60, "Retail"),
		models.NewRecord(day(2024, 1, 20), "Gadget", "South", 200, 150, "Wholesale"),
		models.NewRecord(day(2024, 2, 10), "Widget", "North", 150, 90, "Retail"),
		models.NewRecord(day(2024, 2, 11), "Gizmo", "East", 50, 70, "Retail"),
	}))
	return a
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && env.Success {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}
