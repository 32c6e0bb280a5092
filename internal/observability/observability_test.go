package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/config"
)

func TestNewLoggerTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "info", Format: "json"})

	ctx := WithRequestID(context.Background(), "req-42")
	logger.InfoContext(ctx, "dataset loaded", "records", 3)
	logger.Debug("hidden")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "dataset loaded", entry["msg"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, ServiceName, entry["service"])
	assert.Equal(t, float64(3), entry["records"])
}

func TestNewLoggerTo_KeepsExplicitRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "debug", Format: "text"})

	ctx := WithRequestID(context.Background(), "from-context")
	logger.DebugContext(ctx, "request failed", "request_id", "explicit")

	assert.Contains(t, buf.String(), "request_id=explicit")
	assert.NotContains(t, buf.String(), "from-context")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("bogus"))
}

func TestGetRequestID(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Equal(t, "abc", GetRequestID(WithRequestID(context.Background(), "abc")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("GET", 200, 15*time.Millisecond)
	m.ObserveLoad(LoadOK, 120, 3)
	m.ObserveLoad(LoadSchemaError, 0, 0)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body := w.Body.String()

	assert.Contains(t, body, `http_requests_total{method="GET",status="200"} 1`)
	assert.Contains(t, body, `dataset_loads_total{result="ok"} 1`)
	assert.Contains(t, body, `dataset_loads_total{result="schema_error"} 1`)
	assert.Contains(t, body, "dataset_records 120")
	assert.Contains(t, body, "dataset_rows_dropped 3")
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", 200, time.Millisecond)
	m.ObserveLoad(LoadOK, 1, 0)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, w.Code)
}

func TestInitTracing_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	shutdown, err := InitTracing(config.TracingConfig{Enabled: false, Exporter: "stdout"}, logger)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, span := StartSpan(context.Background(), "noop")
	SetError(span, errors.New("ignored"))
	SetError(span, nil)
	span.End()
}
