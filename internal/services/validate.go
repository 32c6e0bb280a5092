package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"

	"sales-dashboard/internal/models"
)

// SchemaError is returned when required columns are missing from the input.
type SchemaError struct {
	Missing []string
	Present []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing columns: %v; present: %v", e.Missing, e.Present)
}

// ValidationReport describes how many input rows survived coercion.
type ValidationReport struct {
	RowsRead    int            `json:"rows_read"`
	RowsKept    int            `json:"rows_kept"`
	Dropped     int            `json:"dropped"`
	DropReasons map[string]int `json:"drop_reasons,omitempty"`
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"20060102",
	"2006",
}

// Amounts beyond this magnitude are rejected so column sums stay finite.
const maxAmount = 1e15

// Excel day serials accepted as dates: 1900-01-01 through 9999-12-31.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// Validate checks raw for the required columns, coerces typed fields and
// derives profit, margin, month and quarter. Rows whose date, sales_amount or
// cost cannot be coerced are dropped and counted in the report.
func Validate(raw models.RawTable) (*models.Dataset, ValidationReport, error) {
	index, err := resolveColumns(raw.Columns)
	if err != nil {
		return nil, ValidationReport{}, err
	}

	report := ValidationReport{RowsRead: len(raw.Rows)}
	records := make([]models.Record, 0, len(raw.Rows))

	for _, row := range raw.Rows {
		cell := func(col string) string {
			i := index[col]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		date, dateOK := parseDate(cell(models.ColDate), raw.SerialDates)
		sales, salesOK := parseAmount(cell(models.ColSalesAmount))
		cost, costOK := parseAmount(cell(models.ColCost))
		if !dateOK || !salesOK || !costOK {
			report.Dropped++
			if report.DropReasons == nil {
				report.DropReasons = make(map[string]int)
			}
			if !dateOK {
				report.DropReasons[models.ColDate]++
			}
			if !salesOK {
				report.DropReasons[models.ColSalesAmount]++
			}
			if !costOK {
				report.DropReasons[models.ColCost]++
			}
			continue
		}

		records = append(records, models.NewRecord(
			date,
			cell(models.ColProduct),
			cell(models.ColRegion),
			sales,
			cost,
			cell(models.ColCustomerType),
		))
	}

	report.RowsKept = len(records)
	return models.NewDataset(records), report, nil
}

func resolveColumns(columns []string) (map[string]int, error) {
	fold := cases.Fold()
	index := make(map[string]int, len(models.RequiredColumns))
	for i, c := range columns {
		name := fold.String(strings.TrimSpace(c))
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range models.RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		present := make([]string, len(columns))
		copy(present, columns)
		return nil, &SchemaError{Missing: missing, Present: present}
	}
	return index, nil
}

// parseDate reads s as a calendar date. Numbers are Excel day serials only
// when serials is set; in text input they must match a layout.
func parseDate(s string, serials bool) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if serials {
		if t, ok := parseSerial(s); ok {
			return t, true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseSerial(s string) (time.Time, bool) {
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial < minExcelSerial || serial > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseAmount(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.Abs(v) > maxAmount {
		return 0, false
	}
	return v, true
}
