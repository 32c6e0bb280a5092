// Command report loads a sales workbook and writes the full summary workbook,
// optionally with a PDF rendering of the same report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/exporter"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

type options struct {
	in           string
	sheet        string
	out          string
	pdf          string
	from         string
	to           string
	regions      string
	customerType string
	top          int
	title        string
}

func parseFlags(args []string, defaults config.ReportConfig, output io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&o.in, "in", "", "input workbook (.xlsx or .csv)")
	fs.StringVar(&o.sheet, "sheet", "", "sheet to read (defaults to the first sheet)")
	fs.StringVar(&o.out, "out", "", "output workbook path (defaults to sales_summary_<date>.xlsx)")
	fs.StringVar(&o.pdf, "pdf", "", "optional PDF report path")
	fs.StringVar(&o.from, "from", "", "first date to include, YYYY-MM-DD")
	fs.StringVar(&o.to, "to", "", "last date to include, YYYY-MM-DD")
	fs.StringVar(&o.regions, "region", "", "comma separated regions to include")
	fs.StringVar(&o.customerType, "customer-type", "", "comma separated customer types to include")
	fs.IntVar(&o.top, "top", defaults.ExportTopN, "number of top and bottom products")
	fs.StringVar(&o.title, "title", defaults.Title, "report title")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if o.in == "" {
		return o, errors.New("-in is required")
	}
	if o.top <= 0 {
		return o, services.ErrInvalidTopN
	}
	if o.out == "" {
		o.out = fmt.Sprintf("sales_summary_%s.xlsx", time.Now().Format("20060102"))
	}
	return o, nil
}

func (o options) filter() (models.Filter, error) {
	f := models.Filter{
		Regions:       splitList(o.regions),
		CustomerTypes: splitList(o.customerType),
	}
	var err error
	if o.from != "" {
		if f.From, err = time.Parse("2006-01-02", o.from); err != nil {
			return f, fmt.Errorf("invalid -from: %w", err)
		}
	}
	if o.to != "" {
		if f.To, err = time.Parse("2006-01-02", o.to); err != nil {
			return f, fmt.Errorf("invalid -to: %w", err)
		}
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func run(ctx context.Context, o options, logger *slog.Logger) error {
	f, err := o.filter()
	if err != nil {
		return err
	}

	analytics := services.NewAnalytics(services.WithLogger(logger))
	report, err := analytics.LoadFile(ctx, o.in, o.sheet)
	if err != nil {
		return fmt.Errorf("load %s: %w", o.in, err)
	}
	logger.Info("dataset validated",
		"rows_read", report.RowsRead,
		"records", report.RowsKept,
		"dropped", report.Dropped,
		"drop_reasons", report.DropReasons,
	)

	ds := analytics.Filtered(f)
	kpis := services.ComputeKPIs(ds)
	logger.Info("kpis",
		"records", kpis.Records,
		"total_revenue", kpis.TotalRevenue,
		"total_profit", kpis.TotalProfit,
		"avg_revenue", kpis.AvgRevenue.Value(),
		"avg_margin", kpis.AvgMargin.Value(),
		"growth_mom", kpis.GrowthMoM.Value(),
	)

	sheets := services.ReportSheets(o.top)

	out, err := os.Create(o.out)
	if err != nil {
		return fmt.Errorf("create %s: %w", o.out, err)
	}
	if err := exporter.WriteWorkbook(ctx, out, ds, sheets, services.ComputeKPIs); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", o.out, err)
	}
	logger.Info("workbook written", "path", o.out)

	if o.pdf == "" {
		return nil
	}
	pdf, err := exporter.WritePDFReport(ctx, o.title, ds, sheets, services.ComputeKPIs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(o.pdf, pdf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", o.pdf, err)
	}
	logger.Info("pdf written", "path", o.pdf, "bytes", len(pdf))
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLoggerTo(os.Stderr, cfg.Logger)
	slog.SetDefault(logger)

	o, err := parseFlags(os.Args[1:], cfg.Report, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		logger.Error("invalid arguments", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, logger); err != nil {
		logger.Error("report failed", "error", err)
		os.Exit(1)
	}
}
