package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

const (
	KPISheet   = "KPI"
	DataSheet  = "Data"
	maxWorkers = 4
	colWidth   = 18
)

// KPIFunc computes the headline metrics written to the KPI sheet.
type KPIFunc func(*models.Dataset) models.KPISet

// BuildTables evaluates every sheet builder against ds. Builders run
// concurrently; the dataset is read-only so they share it safely.
func BuildTables(ctx context.Context, ds *models.Dataset, sheets []services.Sheet) ([]models.Table, error) {
	tables := make([]models.Table, len(sheets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, sheet := range sheets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := sheet.Build(ds)
			if err != nil {
				return fmt.Errorf("build sheet %q: %w", sheet.Name, err)
			}
			tables[i] = t.Table(sheet.Name)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// DatasetTable projects every record of ds into a table.
func DatasetTable(ds *models.Dataset) models.Table {
	t := models.Table{
		Name: DataSheet,
		Headers: []string{
			models.ColDate, models.ColProduct, models.ColRegion, models.ColSalesAmount,
			models.ColCost, models.ColCustomerType, "profit", "margin", "month", "quarter",
		},
		Rows: make([][]any, 0, ds.Len()),
	}
	for r := range ds.All() {
		t.Rows = append(t.Rows, []any{
			r.Date, r.Product, r.Region, r.SalesAmount, r.Cost, r.CustomerType,
			r.Profit, r.Margin.Value(), r.Month, r.Quarter,
		})
	}
	return t
}

// WriteWorkbook writes the full summary workbook: a KPI sheet, one sheet per
// report builder and the underlying data.
func WriteWorkbook(ctx context.Context, w io.Writer, ds *models.Dataset, sheets []services.Sheet, kpis KPIFunc) error {
	start := time.Now()

	tables, err := BuildTables(ctx, ds, sheets)
	if err != nil {
		return err
	}

	all := make([]models.Table, 0, len(tables)+2)
	all = append(all, kpis(ds).Table(KPISheet))
	all = append(all, tables...)
	all = append(all, DatasetTable(ds))

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return err
	}

	if err := f.SetSheetName(f.GetSheetName(0), all[0].Name); err != nil {
		return fmt.Errorf("rename first sheet: %w", err)
	}
	for i, t := range all {
		if i > 0 {
			if _, err := f.NewSheet(t.Name); err != nil {
				return fmt.Errorf("create sheet %q: %w", t.Name, err)
			}
		}
		if err := writeTable(f, t, styles); err != nil {
			return fmt.Errorf("write sheet %q: %w", t.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	slog.Debug("workbook written",
		"sheets", len(all),
		"records", ds.Len(),
		"duration", time.Since(start),
	)
	return nil
}

type workbookStyles struct {
	header int
	date   int
	number int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DCE6F1"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}

	dateFmt := "yyyy-mm-dd"
	s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return s, fmt.Errorf("create date style: %w", err)
	}

	numberFmt := "#,##0.00"
	s.number, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numberFmt})
	if err != nil {
		return s, fmt.Errorf("create number style: %w", err)
	}
	return s, nil
}

func writeTable(f *excelize.File, t models.Table, styles workbookStyles) error {
	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return err
	}
	if len(t.Headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(t.Headers))
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(t.Name, "A1", last+"1", styles.header); err != nil {
			return err
		}
		if err := f.SetColWidth(t.Name, "A", last, colWidth); err != nil {
			return err
		}
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.Name, cell, &row); err != nil {
			return err
		}
		for j, v := range row {
			style := 0
			switch v.(type) {
			case time.Time:
				style = styles.date
			case float64:
				style = styles.number
			}
			if style == 0 {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(t.Name, ref, ref, style); err != nil {
				return err
			}
		}
	}

	return f.SetPanes(t.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
