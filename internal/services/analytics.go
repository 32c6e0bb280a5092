package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
)

// LoadResult describes the load that produced the current dataset.
type LoadResult struct {
	Source   string           `json:"source"`
	Report   ValidationReport `json:"report"`
	LoadedAt time.Time        `json:"loaded_at"`
}

// Analytics holds the dataset currently being analysed. A dataset is only
// replaced by a load that validates; failed loads leave it untouched.
type Analytics struct {
	mu      sync.RWMutex
	dataset *models.Dataset
	last    LoadResult
	logger  *slog.Logger
	metrics *observability.Metrics
}

type Option func(*Analytics)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Analytics) { a.logger = logger }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(a *Analytics) { a.metrics = m }
}

func NewAnalytics(opts ...Option) *Analytics {
	a := &Analytics{
		dataset: models.NewDataset(nil),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analytics) SetDataset(ds *models.Dataset) {
	if ds == nil {
		ds = models.NewDataset(nil)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dataset = ds
	a.last = LoadResult{
		Source:   "memory",
		Report:   ValidationReport{RowsRead: ds.Len(), RowsKept: ds.Len()},
		LoadedAt: time.Now(),
	}
}

// LoadFile reads, validates and installs the dataset stored at path.
func (a *Analytics) LoadFile(ctx context.Context, path, sheet string) (ValidationReport, error) {
	ctx, span := observability.StartSpan(ctx, "analytics.LoadFile", attribute.String("path", path))
	defer span.End()

	raw, err := ReadFile(path, sheet)
	if err != nil {
		observability.SetError(span, err)
		a.metrics.ObserveLoad(observability.LoadReadError, 0, 0)
		return ValidationReport{}, err
	}
	report, err := a.install(ctx, raw, path)
	observability.SetError(span, err)
	return report, err
}

// LoadReader reads, validates and installs a dataset from r. name selects the
// file format by extension.
func (a *Analytics) LoadReader(ctx context.Context, r io.Reader, name, sheet string) (ValidationReport, error) {
	ctx, span := observability.StartSpan(ctx, "analytics.LoadReader", attribute.String("name", name))
	defer span.End()

	raw, err := ReadFrom(r, name, sheet)
	if err != nil {
		observability.SetError(span, err)
		a.metrics.ObserveLoad(observability.LoadReadError, 0, 0)
		return ValidationReport{}, err
	}
	report, err := a.install(ctx, raw, name)
	observability.SetError(span, err)
	return report, err
}

func (a *Analytics) install(ctx context.Context, raw models.RawTable, source string) (ValidationReport, error) {
	start := time.Now()

	ds, report, err := Validate(raw)
	if err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			a.metrics.ObserveLoad(observability.LoadSchemaError, 0, 0)
			a.logger.Warn("dataset rejected",
				"source", source,
				"missing", schemaErr.Missing,
				"present", schemaErr.Present,
			)
		}
		return ValidationReport{}, fmt.Errorf("validate %s: %w", source, err)
	}

	if err := ctx.Err(); err != nil {
		return ValidationReport{}, err
	}

	a.mu.Lock()
	a.dataset = ds
	a.last = LoadResult{Source: source, Report: report, LoadedAt: time.Now()}
	a.mu.Unlock()

	a.metrics.ObserveLoad(observability.LoadOK, report.RowsKept, report.Dropped)
	a.logger.Info("dataset loaded",
		"source", source,
		"rows_read", report.RowsRead,
		"records", report.RowsKept,
		"dropped", report.Dropped,
		"duration", time.Since(start),
	)
	if report.Dropped > 0 {
		a.logger.Debug("rows dropped during validation", "reasons", report.DropReasons)
	}
	return report, nil
}

// Dataset returns the current dataset. It is never nil.
func (a *Analytics) Dataset() *models.Dataset {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dataset
}

// Filtered applies f to the current dataset.
func (a *Analytics) Filtered(f models.Filter) *models.Dataset {
	return ApplyFilter(a.Dataset(), f)
}

func (a *Analytics) LastLoad() LoadResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	ds, last := a.dataset, a.last
	a.mu.RUnlock()

	opts := FilterOptionsOf(ds)
	return map[string]any{
		"record_count":   ds.Len(),
		"source":         last.Source,
		"last_loaded":    last.LoadedAt,
		"rows_dropped":   last.Report.Dropped,
		"regions":        len(opts.Regions),
		"customer_types": len(opts.CustomerTypes),
		"months":         len(MonthlyTrends(ds).Rows),
	}
}
