package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/models"
)

func TestMonthlyTrends(t *testing.T) {
	got := MonthlyTrends(sampleDataset())

	assert.Equal(t, models.DimMonth, got.Dimension)
	require.Equal(t, []string{"2024-01", "2024-02", "2024-04"}, keys(got))
	assert.Equal(t, day(2024, 1, 1), got.Rows[0].Period)
	assert.Equal(t, 300.0, got.Rows[0].Sales)
	assert.Equal(t, 90.0, got.Rows[0].Profit)
	assert.Equal(t, 200.0, got.Rows[1].Sales)
	assert.Equal(t, 40.0, got.Rows[1].Profit)
	assert.Equal(t, 0.0, got.Rows[2].Sales)
	assert.Equal(t, -10.0, got.Rows[2].Profit)
}

func TestQuarterlyTrends(t *testing.T) {
	got := QuarterlyTrends(sampleDataset())

	require.Equal(t, []string{"2024-Q1", "2024-Q2"}, keys(got))
	assert.Equal(t, day(2024, 4, 1), got.Rows[1].Period)
	assert.Equal(t, 500.0, got.Rows[0].Sales)
	assert.Equal(t, 130.0, got.Rows[0].Profit)
}

func TestRegionalBreakdown(t *testing.T) {
	got := RegionalBreakdown(sampleDataset())

	require.Equal(t, []string{"North", "South", "East"}, keys(got))
	assert.Equal(t, 250.0, got.Rows[0].Sales)
	assert.Equal(t, 100.0, got.Rows[0].Profit)
	assert.Equal(t, 40.0, got.Rows[1].Profit)
	assert.True(t, got.Rows[0].Period.IsZero())
}

func TestRegionalBreakdown_TiesByName(t *testing.T) {
	ds := models.NewDataset([]models.Record{
		models.NewRecord(day(2024, 1, 1), "A", "West", 10, 0, "Retail"),
		models.NewRecord(day(2024, 1, 1), "A", "East", 10, 0, "Retail"),
		models.NewRecord(day(2024, 1, 1), "A", "North", 20, 0, "Retail"),
	})

	assert.Equal(t, []string{"North", "East", "West"}, keys(RegionalBreakdown(ds)))
}

func TestByCustomerType(t *testing.T) {
	got := ByCustomerType(sampleDataset())

	require.Equal(t, []string{"Retail", "Wholesale"}, keys(got))
	assert.Equal(t, 300.0, got.Rows[0].Sales)
	assert.Equal(t, 200.0, got.Rows[1].Sales)
}

func TestTopBottomProducts(t *testing.T) {
	top, bottom, err := TopBottomProducts(sampleDataset(), 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"Widget", "Gadget"}, keys(top))
	assert.Equal(t, 100.0, top.Rows[0].Profit)
	assert.Equal(t, []string{"Gizmo", "Gadget"}, keys(bottom))
	assert.Equal(t, -20.0, bottom.Rows[0].Profit)
}

func TestTopBottomProducts_FewerThanN(t *testing.T) {
	top, bottom, err := TopBottomProducts(sampleDataset(), 10)
	require.NoError(t, err)

	assert.Len(t, top.Rows, 3)
	assert.Len(t, bottom.Rows, 3)
	assert.Equal(t, []string{"Widget", "Gadget", "Gizmo"}, keys(top))
	assert.Equal(t, []string{"Gizmo", "Gadget", "Widget"}, keys(bottom))
}

func TestTopBottomProducts_InvalidN(t *testing.T) {
	for _, n := range []int{0, -3} {
		_, _, err := TopBottomProducts(sampleDataset(), n)
		assert.ErrorIs(t, err, ErrInvalidTopN)
	}
}

func TestTopBottomProducts_Empty(t *testing.T) {
	top, bottom, err := TopBottomProducts(models.NewDataset(nil), 5)
	require.NoError(t, err)
	assert.Empty(t, top.Rows)
	assert.Empty(t, bottom.Rows)
}

func TestRegionMonthSales(t *testing.T) {
	p := RegionMonthSales(sampleDataset())

	assert.Equal(t, models.DimRegion, p.Dimension)
	assert.Equal(t, models.MetricSales, p.Metric)
	assert.Equal(t, []time.Time{day(2024, 1, 1), day(2024, 2, 1), day(2024, 4, 1)}, p.Months)
	assert.Equal(t, []models.PivotRow{
		{Key: "East", Values: []float64{0, 50, 0}},
		{Key: "North", Values: []float64{100, 150, 0}},
		{Key: "South", Values: []float64{200, 0, 0}},
	}, p.Rows)
}

func TestProductMonthProfit(t *testing.T) {
	p := ProductMonthProfit(sampleDataset())

	assert.Equal(t, models.MetricProfit, p.Metric)
	assert.Equal(t, []models.PivotRow{
		{Key: "Gadget", Values: []float64{50, 0, -10}},
		{Key: "Gizmo", Values: []float64{0, -20, 0}},
		{Key: "Widget", Values: []float64{40, 60, 0}},
	}, p.Rows)
}

func TestPivot_CustomerTypeSales(t *testing.T) {
	p, err := Pivot(sampleDataset(), models.DimCustomerType, models.MetricSales)
	require.NoError(t, err)
	assert.Equal(t, models.DimCustomerType, p.Dimension)
	assert.Len(t, p.Months, 3)
	require.NotEmpty(t, p.Rows)
}

func TestPivot_RejectsTimeDimensions(t *testing.T) {
	for _, dim := range []models.Dimension{models.DimMonth, models.DimQuarter, "weekday"} {
		_, err := Pivot(sampleDataset(), dim, models.MetricSales)
		assert.ErrorIs(t, err, ErrInvalidDimension, string(dim))
	}
}

func TestPivot_Empty(t *testing.T) {
	p := ProductMonthProfit(models.NewDataset(nil))
	assert.Empty(t, p.Months)
	assert.Empty(t, p.Rows)
	assert.NotNil(t, p.Rows)
}

func TestDescribeMargins(t *testing.T) {
	s := DescribeMargins(sampleDataset())

	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 0.1625, s.Mean.Float64, 1e-9)
	assert.InDelta(t, 0.38161, s.Std.Float64, 1e-4)
	assert.InDelta(t, -0.4, s.Min.Float64, 1e-12)
	assert.InDelta(t, 0.4, s.Max.Float64, 1e-12)
	assert.InDelta(t, 0.0875, s.P25.Float64, 1e-9)
	assert.InDelta(t, 0.325, s.P50.Float64, 1e-9)
	assert.InDelta(t, 0.4, s.P75.Float64, 1e-9)
}

func TestDescribeMargins_SingleValue(t *testing.T) {
	ds := models.NewDataset([]models.Record{
		models.NewRecord(day(2024, 1, 1), "A", "North", 100, 75, "Retail"),
	})

	s := DescribeMargins(ds)
	assert.Equal(t, 1, s.Count)
	assert.InDelta(t, 0.25, s.Mean.Float64, 1e-12)
	assert.False(t, s.Std.Valid)
	assert.InDelta(t, 0.25, s.P90.Float64, 1e-12)
}

func TestDescribeMargins_Empty(t *testing.T) {
	s := DescribeMargins(models.NewDataset(nil))
	assert.Zero(t, s.Count)
	assert.False(t, s.Mean.Valid)
	assert.False(t, s.Std.Valid)
	assert.False(t, s.Min.Valid)
	assert.False(t, s.P50.Valid)
	assert.False(t, s.Max.Valid)
}

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, percentile(values, 0))
	assert.Equal(t, 4.0, percentile(values, 1))
	assert.InDelta(t, 2.5, percentile(values, 0.5), 1e-12)
	assert.InDelta(t, 1.3, percentile(values, 0.1), 1e-12)
}

func TestMonthlyGrowth(t *testing.T) {
	g := MonthlyGrowth(sampleDataset())

	require.Len(t, g.Rows, 3)
	assert.False(t, g.Rows[0].GrowthMoM.Valid)
	assert.InDelta(t, -1.0/3, g.Rows[1].GrowthMoM.Float64, 1e-12)
	assert.InDelta(t, -1.0, g.Rows[2].GrowthMoM.Float64, 1e-12)
}

func TestMonthlyGrowth_TwoMonths(t *testing.T) {
	ds := models.NewDataset([]models.Record{
		models.NewRecord(day(2024, 1, 10), "A", "North", 100, 50, "Retail"),
		models.NewRecord(day(2024, 2, 10), "A", "North", 150, 50, "Retail"),
	})

	g := MonthlyGrowth(ds)
	require.Len(t, g.Rows, 2)
	assert.False(t, g.Rows[0].GrowthMoM.Valid)
	assert.True(t, g.Rows[1].GrowthMoM.Valid)
	assert.InDelta(t, 0.5, g.Rows[1].GrowthMoM.Float64, 1e-12)
}

func TestMonthlyGrowth_ZeroPreviousMonth(t *testing.T) {
	ds := models.NewDataset([]models.Record{
		models.NewRecord(day(2024, 1, 10), "A", "North", 0, 5, "Retail"),
		models.NewRecord(day(2024, 2, 10), "A", "North", 150, 50, "Retail"),
	})

	g := MonthlyGrowth(ds)
	require.Len(t, g.Rows, 2)
	assert.False(t, g.Rows[1].GrowthMoM.Valid)
}

func TestDataDictionary(t *testing.T) {
	dict := DataDictionary(sampleDataset())

	require.Len(t, dict.Columns, 10)
	assert.Equal(t, models.ColDate, dict.Columns[0].Column)
	assert.Equal(t, "date", dict.Columns[0].Type)

	var margin models.ColumnInfo
	for _, c := range dict.Columns {
		if c.Column == "margin" {
			margin = c
		}
	}
	assert.Equal(t, 1, margin.Nulls)
}

func TestAggregations_EmptyDataset(t *testing.T) {
	ds := models.NewDataset(nil)

	assert.Empty(t, MonthlyTrends(ds).Rows)
	assert.Empty(t, QuarterlyTrends(ds).Rows)
	assert.Empty(t, RegionalBreakdown(ds).Rows)
	assert.Empty(t, ByCustomerType(ds).Rows)
	assert.Empty(t, MonthlyGrowth(ds).Rows)
	assert.Equal(t, models.DimRegion, RegionalBreakdown(ds).Dimension)
}

func TestTopBottomProducts_TiesStayDisjoint(t *testing.T) {
	ds := models.NewDataset([]models.Record{
		models.NewRecord(day(2024, 1, 1), "A", "North", 10, 0, "Retail"),
		models.NewRecord(day(2024, 1, 1), "B", "North", 10, 0, "Retail"),
		models.NewRecord(day(2024, 1, 1), "C", "North", 10, 0, "Retail"),
	})

	top, bottom, err := TopBottomProducts(ds, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, keys(top))
	assert.Equal(t, []string{"C"}, keys(bottom))
}
