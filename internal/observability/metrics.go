package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Load outcomes reported on dataset_loads_total.
const (
	LoadOK          = "ok"
	LoadSchemaError = "schema_error"
	LoadReadError   = "read_error"
)

// Metrics holds the application's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	datasetLoads   *prometheus.CounterVec
	datasetRecords prometheus.Gauge
	rowsDropped    prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		datasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dataset_loads_total",
			Help: "Dataset load attempts by outcome.",
		}, []string{"result"}),
		datasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dataset_records",
			Help: "Records in the current dataset.",
		}),
		rowsDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dataset_rows_dropped",
			Help: "Rows dropped during validation of the current dataset.",
		}),
	}
	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.datasetLoads,
		m.datasetRecords,
		m.rowsDropped,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) ObserveLoad(result string, records, dropped int) {
	if m == nil {
		return
	}
	m.datasetLoads.WithLabelValues(result).Inc()
	if result == LoadOK {
		m.datasetRecords.Set(float64(records))
		m.rowsDropped.Set(float64(dropped))
	}
}
