package services

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"sales-dashboard/internal/models"
)

var (
	ErrInvalidTopN      = errors.New("top n must be a positive integer")
	ErrInvalidDimension = errors.New("pivot rows must be a category dimension")
)

// groupSums accumulates sales and profit per key in first-seen order.
type groupSums struct {
	order []string
	rows  map[string]*models.SummaryRow
}

func newGroupSums() *groupSums {
	return &groupSums{rows: make(map[string]*models.SummaryRow)}
}

func (g *groupSums) add(key string, period time.Time, sales, profit float64) {
	row, ok := g.rows[key]
	if !ok {
		row = &models.SummaryRow{Key: key, Period: period}
		g.rows[key] = row
		g.order = append(g.order, key)
	}
	row.Sales += sales
	row.Profit += profit
}

func (g *groupSums) collect() []models.SummaryRow {
	out := make([]models.SummaryRow, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, *g.rows[k])
	}
	return out
}

func groupBy(ds *models.Dataset, dim models.Dimension) models.SummaryTable {
	g := newGroupSums()
	for r := range ds.All() {
		switch dim {
		case models.DimMonth:
			g.add(r.Month.Format("2006-01"), r.Month, r.SalesAmount, r.Profit)
		case models.DimQuarter:
			g.add(quarterLabel(r.Quarter), r.Quarter, r.SalesAmount, r.Profit)
		default:
			g.add(categoryOf(r, dim), time.Time{}, r.SalesAmount, r.Profit)
		}
	}
	return models.SummaryTable{Dimension: dim, Rows: g.collect()}
}

func categoryOf(r models.Record, dim models.Dimension) string {
	switch dim {
	case models.DimRegion:
		return r.Region
	case models.DimProduct:
		return r.Product
	case models.DimCustomerType:
		return r.CustomerType
	default:
		panic(fmt.Sprintf("not a category dimension: %q", dim))
	}
}

func quarterLabel(q time.Time) string {
	return fmt.Sprintf("%d-Q%d", q.Year(), (int(q.Month())-1)/3+1)
}

func byPeriod(a, b models.SummaryRow) int {
	return a.Period.Compare(b.Period)
}

func bySalesDesc(a, b models.SummaryRow) int {
	if c := cmp.Compare(b.Sales, a.Sales); c != 0 {
		return c
	}
	return cmp.Compare(a.Key, b.Key)
}

func byProfitDesc(a, b models.SummaryRow) int {
	if c := cmp.Compare(b.Profit, a.Profit); c != 0 {
		return c
	}
	return cmp.Compare(a.Key, b.Key)
}

// byProfitAsc is the exact reverse of byProfitDesc so top and bottom never
// share a product while there are at least 2n of them.
func byProfitAsc(a, b models.SummaryRow) int {
	return byProfitDesc(b, a)
}

func MonthlyTrends(ds *models.Dataset) models.SummaryTable {
	t := groupBy(ds, models.DimMonth)
	slices.SortFunc(t.Rows, byPeriod)
	return t
}

func QuarterlyTrends(ds *models.Dataset) models.SummaryTable {
	t := groupBy(ds, models.DimQuarter)
	slices.SortFunc(t.Rows, byPeriod)
	return t
}

func RegionalBreakdown(ds *models.Dataset) models.SummaryTable {
	t := groupBy(ds, models.DimRegion)
	slices.SortFunc(t.Rows, bySalesDesc)
	return t
}

func ByCustomerType(ds *models.Dataset) models.SummaryTable {
	t := groupBy(ds, models.DimCustomerType)
	slices.SortFunc(t.Rows, bySalesDesc)
	return t
}

// TopBottomProducts returns the n most and n least profitable products.
// When fewer than n products exist both tables hold all of them.
func TopBottomProducts(ds *models.Dataset, n int) (top, bottom models.SummaryTable, err error) {
	if n <= 0 {
		return models.SummaryTable{}, models.SummaryTable{}, fmt.Errorf("%w: got %d", ErrInvalidTopN, n)
	}

	products := groupBy(ds, models.DimProduct)

	top = models.SummaryTable{Dimension: models.DimProduct, Rows: slices.Clone(products.Rows)}
	slices.SortFunc(top.Rows, byProfitDesc)
	top.Rows = top.Rows[:min(n, len(top.Rows))]

	bottom = models.SummaryTable{Dimension: models.DimProduct, Rows: slices.Clone(products.Rows)}
	slices.SortFunc(bottom.Rows, byProfitAsc)
	bottom.Rows = bottom.Rows[:min(n, len(bottom.Rows))]

	return top, bottom, nil
}

// Pivot cross-tabulates a category dimension against observed months. Missing
// category/month pairs are zero. Time dimensions are rejected.
func Pivot(ds *models.Dataset, dim models.Dimension, metric models.Metric) (models.PivotTable, error) {
	switch dim {
	case models.DimProduct, models.DimRegion, models.DimCustomerType:
	default:
		return models.PivotTable{}, fmt.Errorf("%w: got %q", ErrInvalidDimension, dim)
	}

	p := models.PivotTable{Dimension: dim, Metric: metric, Months: []time.Time{}, Rows: []models.PivotRow{}}

	cells := make(map[string]map[time.Time]float64)
	months := make(map[time.Time]struct{})
	for r := range ds.All() {
		key := categoryOf(r, dim)
		if cells[key] == nil {
			cells[key] = make(map[time.Time]float64)
		}
		v := r.SalesAmount
		if metric == models.MetricProfit {
			v = r.Profit
		}
		cells[key][r.Month] += v
		months[r.Month] = struct{}{}
	}

	for m := range months {
		p.Months = append(p.Months, m)
	}
	slices.SortFunc(p.Months, time.Time.Compare)

	keys := make([]string, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		row := models.PivotRow{Key: k, Values: make([]float64, len(p.Months))}
		for i, m := range p.Months {
			row.Values[i] = cells[k][m]
		}
		p.Rows = append(p.Rows, row)
	}
	return p, nil
}

func ProductMonthProfit(ds *models.Dataset) models.PivotTable {
	p, _ := Pivot(ds, models.DimProduct, models.MetricProfit)
	return p
}

func RegionMonthSales(ds *models.Dataset) models.PivotTable {
	p, _ := Pivot(ds, models.DimRegion, models.MetricSales)
	return p
}

// DescribeMargins summarises the distribution of defined margins. Percentiles
// use linear interpolation between closest ranks; std is the sample standard
// deviation.
func DescribeMargins(ds *models.Dataset) models.MarginStats {
	values := definedMargins(ds)
	stats := models.MarginStats{Count: len(values)}
	if len(values) == 0 {
		return stats
	}
	slices.Sort(values)

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	stats.Mean = models.Float(mean)

	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			sq += (v - mean) * (v - mean)
		}
		stats.Std = models.Float(math.Sqrt(sq / float64(len(values)-1)))
	}

	stats.Min = models.Float(values[0])
	stats.Max = models.Float(values[len(values)-1])
	stats.P10 = models.Float(percentile(values, 0.10))
	stats.P25 = models.Float(percentile(values, 0.25))
	stats.P50 = models.Float(percentile(values, 0.50))
	stats.P75 = models.Float(percentile(values, 0.75))
	stats.P90 = models.Float(percentile(values, 0.90))
	return stats
}

// percentile expects sorted, non-empty values.
func percentile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func definedMargins(ds *models.Dataset) []float64 {
	var values []float64
	for r := range ds.All() {
		if r.Margin.Valid {
			values = append(values, r.Margin.Float64)
		}
	}
	return values
}

// MonthlyGrowth adds month-over-month sales growth to the monthly series.
func MonthlyGrowth(ds *models.Dataset) models.GrowthTable {
	monthly := MonthlyTrends(ds)
	t := models.GrowthTable{Rows: make([]models.GrowthRow, 0, len(monthly.Rows))}
	for i, r := range monthly.Rows {
		row := models.GrowthRow{Month: r.Period, Sales: r.Sales}
		if i > 0 {
			row.GrowthMoM = growth(monthly.Rows[i-1].Sales, r.Sales)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func growth(prev, cur float64) models.NullFloat64 {
	if prev == 0 {
		return models.NullFloat64{}
	}
	return models.Float((cur - prev) / prev)
}

// DataDictionary lists the dataset's columns with their type and null count.
func DataDictionary(ds *models.Dataset) models.DataDictionary {
	var emptyProduct, emptyRegion, emptyCustomer, noMargin int
	for r := range ds.All() {
		if r.Product == "" {
			emptyProduct++
		}
		if r.Region == "" {
			emptyRegion++
		}
		if r.CustomerType == "" {
			emptyCustomer++
		}
		if !r.Margin.Valid {
			noMargin++
		}
	}
	return models.DataDictionary{Columns: []models.ColumnInfo{
		{Column: models.ColDate, Type: "date"},
		{Column: models.ColProduct, Type: "string", Nulls: emptyProduct},
		{Column: models.ColRegion, Type: "string", Nulls: emptyRegion},
		{Column: models.ColSalesAmount, Type: "float64"},
		{Column: models.ColCost, Type: "float64"},
		{Column: models.ColCustomerType, Type: "string", Nulls: emptyCustomer},
		{Column: "profit", Type: "float64"},
		{Column: "margin", Type: "float64", Nulls: noMargin},
		{Column: "month", Type: "date"},
		{Column: "quarter", Type: "date"},
	}}
}
