package services

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/models"
)

func TestValidate_AllColumnsPresent(t *testing.T) {
	raw := rawTable(canonicalColumns,
		[]string{"2024-01-15", "Widget", "North", "100", "60", "Retail"},
		[]string{"2024-02-10", "Gadget", "South", "200.5", "150.25", "Wholesale"},
	)

	ds, report, err := Validate(raw)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, ValidationReport{RowsRead: 2, RowsKept: 2}, report)

	r := ds.At(0)
	assert.Equal(t, day(2024, 1, 15), r.Date)
	assert.Equal(t, "Widget", r.Product)
	assert.Equal(t, 40.0, r.Profit)
	assert.True(t, r.Margin.Valid)
	assert.InDelta(t, 0.4, r.Margin.Float64, 1e-12)
	assert.Equal(t, day(2024, 1, 1), r.Month)
	assert.Equal(t, day(2024, 1, 1), r.Quarter)

	assert.InDelta(t, 50.25, ds.At(1).Profit, 1e-9)
}

func TestValidate_MissingColumns(t *testing.T) {
	raw := rawTable([]string{"Date", "Product", "Region", "Sales_Amount"},
		[]string{"2024-01-15", "Widget", "North", "100"},
	)

	ds, _, err := Validate(raw)
	assert.Nil(t, ds)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"cost", "customer_type"}, schemaErr.Missing)
	assert.Equal(t, []string{"Date", "Product", "Region", "Sales_Amount"}, schemaErr.Present)
	assert.Contains(t, err.Error(), "cost")
}

func TestValidate_EmptyInput(t *testing.T) {
	_, _, err := Validate(models.RawTable{})

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, models.RequiredColumns, schemaErr.Missing)
	assert.Empty(t, schemaErr.Present)
}

func TestValidate_HeaderMatching(t *testing.T) {
	raw := rawTable(
		[]string{" Customer_Type ", "COST", "notes", "Sales_Amount", "Region", "Product", "DATE"},
		[]string{"Retail", "60", "ignored", "100", "North", "Widget", "2024-03-31"},
	)

	ds, _, err := Validate(raw)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	r := ds.At(0)
	assert.Equal(t, "Retail", r.CustomerType)
	assert.Equal(t, 100.0, r.SalesAmount)
	assert.Equal(t, 60.0, r.Cost)
	assert.Equal(t, day(2024, 1, 1), r.Quarter)
}

func TestValidate_DuplicateColumnFirstWins(t *testing.T) {
	raw := rawTable(
		append(slices.Clone(canonicalColumns), "Sales_Amount"),
		[]string{"2024-01-15", "Widget", "North", "100", "60", "Retail", "999"},
	)

	ds, _, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, 100.0, ds.At(0).SalesAmount)
}

func TestValidate_DropsUncoercibleRows(t *testing.T) {
	raw := rawTable(canonicalColumns,
		[]string{"2024-01-15", "Widget", "North", "100", "60", "Retail"},
		[]string{"2024-01-16", "Widget", "North", "abc", "60", "Retail"},
		[]string{"not a date", "Widget", "North", "100", "60", "Retail"},
		[]string{"2024-01-17", "Widget", "North", "100", "", "Retail"},
		[]string{"2024-01-18", "Widget", "North", "NaN", "60", "Retail"},
		[]string{"2024-01-19", "Widget"},
	)

	ds, report, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, 6, report.RowsRead)
	assert.Equal(t, 1, report.RowsKept)
	assert.Equal(t, 5, report.Dropped)
	assert.Equal(t, 3, report.DropReasons[models.ColSalesAmount])
	assert.Equal(t, 1, report.DropReasons[models.ColDate])
	assert.Equal(t, 2, report.DropReasons[models.ColCost])
}

func TestValidate_KeepsEmptyLabels(t *testing.T) {
	raw := rawTable(canonicalColumns,
		[]string{"2024-01-15", "", "  ", "100", "60", ""},
	)

	ds, _, err := Validate(raw)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Empty(t, ds.At(0).Region)
}

func TestValidate_ZeroSalesHasUndefinedMargin(t *testing.T) {
	raw := rawTable(canonicalColumns,
		[]string{"2024-01-15", "Widget", "North", "0", "10", "Retail"},
		[]string{"2024-01-15", "Widget", "North", "-5", "10", "Retail"},
	)

	ds, _, err := Validate(raw)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.False(t, ds.At(0).Margin.Valid)
	assert.Equal(t, -10.0, ds.At(0).Profit)
	assert.False(t, ds.At(1).Margin.Valid)
	assert.Equal(t, -15.0, ds.At(1).Profit)
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	columns := []string{" Date ", "product", "region", "sales_amount", "cost", "customer_type"}
	rows := [][]string{{" 2024-01-15 ", " Widget ", "North", " 100 ", "60", "Retail"}}
	raw := models.RawTable{Columns: slices.Clone(columns), Rows: [][]string{slices.Clone(rows[0])}}

	_, _, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, columns, raw.Columns)
	assert.Equal(t, rows, raw.Rows)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		serials bool
		want    time.Time
		ok      bool
	}{
		{"iso", "2024-01-15", false, day(2024, 1, 15), true},
		{"iso seconds", "2024-01-15 13:45:00", false, day(2024, 1, 15), true},
		{"iso T seconds", "2024-01-15T13:45:00", false, day(2024, 1, 15), true},
		{"iso minutes", "2024-01-05 10:30", false, day(2024, 1, 5), true},
		{"iso T minutes", "2024-01-05T10:30", false, day(2024, 1, 5), true},
		{"rfc3339", "2024-01-15T13:45:00Z", false, day(2024, 1, 15), true},
		{"slashes", "2024/01/15", false, day(2024, 1, 15), true},
		{"us", "01/15/2024", false, day(2024, 1, 15), true},
		{"us short", "1/5/2024", false, day(2024, 1, 5), true},
		{"compact", "20240105", false, day(2024, 1, 5), true},
		{"bare year", "2024", false, day(2024, 1, 1), true},
		{"serial", "45306", true, day(2024, 1, 15), true},
		{"fractional serial", "45306.75", true, day(2024, 1, 15), true},
		{"serial in text input", "45306", false, time.Time{}, false},
		{"empty", "", false, time.Time{}, false},
		{"word", "yesterday", false, time.Time{}, false},
		{"negative serial", "-3", true, time.Time{}, false},
		{"negative number", "-3", false, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDate(tt.in, tt.serials)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			rec := models.NewRecord(got, "", "", 0, 0, "")
			assert.Equal(t, tt.want, rec.Date)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"100", 100, true},
		{"-12.5", -12.5, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1e308", 0, false},
		{"-2e15", 0, false},
		{"999999999999999", 999999999999999, true},
		{"1,000", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_TextDatesAreNotSerials(t *testing.T) {
	raw := rawTable(canonicalColumns,
		[]string{"2024", "Widget", "North", "10", "5", "Retail"},
		[]string{"20240305", "Widget", "North", "10", "5", "Retail"},
	)

	ds, report, err := Validate(raw)
	require.NoError(t, err)
	require.Equal(t, 2, report.RowsKept)

	recs := slices.Collect(ds.All())
	assert.Equal(t, day(2024, 1, 1), recs[0].Month)
	assert.Equal(t, day(2024, 3, 1), recs[1].Month)
}

func TestValidate_HugeAmountsKeepKPIsEncodable(t *testing.T) {
	raw := rawTable(canonicalColumns,
		[]string{"2024-01-01", "Widget", "North", "1e308", "5", "Retail"},
		[]string{"2024-01-02", "Widget", "North", "1e308", "5", "Retail"},
		[]string{"2024-01-03", "Gadget", "South", "40", "1e308", "Retail"},
		[]string{"2024-01-04", "Gadget", "South", "100", "60", "Retail"},
	)

	ds, report, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, report.RowsKept)
	assert.Equal(t, 2, report.DropReasons[models.ColSalesAmount])
	assert.Equal(t, 1, report.DropReasons[models.ColCost])

	_, err = json.Marshal(ComputeKPIs(ds))
	assert.NoError(t, err)
}
