package models

import "time"

type Dimension string

const (
	DimMonth        Dimension = "month"
	DimQuarter      Dimension = "quarter"
	DimRegion       Dimension = "region"
	DimProduct      Dimension = "product"
	DimCustomerType Dimension = "customer_type"
)

// IsTime reports whether rows of this dimension are time buckets.
func (d Dimension) IsTime() bool {
	return d == DimMonth || d == DimQuarter
}

type Metric string

const (
	MetricSales  Metric = "sales_amount"
	MetricProfit Metric = "profit"
)

type SummaryRow struct {
	Key    string    `json:"key"`
	Period time.Time `json:"period,omitzero"`
	Sales  float64   `json:"sales_amount"`
	Profit float64   `json:"profit"`
}

type SummaryTable struct {
	Dimension Dimension    `json:"dimension"`
	Rows      []SummaryRow `json:"rows"`
}

func (t SummaryTable) Len() int { return len(t.Rows) }

// TotalSales sums the sales column over all rows.
func (t SummaryTable) TotalSales() float64 {
	var total float64
	for _, r := range t.Rows {
		total += r.Sales
	}
	return total
}

func (t SummaryTable) Table(name string) Table {
	out := Table{Name: name, Headers: []string{string(t.Dimension), "sales_amount", "profit"}}
	for _, r := range t.Rows {
		var key any = r.Key
		if t.Dimension.IsTime() {
			key = r.Period
		}
		out.Rows = append(out.Rows, []any{key, r.Sales, r.Profit})
	}
	return out
}

type GrowthRow struct {
	Month     time.Time   `json:"month"`
	Sales     float64     `json:"sales_amount"`
	GrowthMoM NullFloat64 `json:"growth_mom"`
}

type GrowthTable struct {
	Rows []GrowthRow `json:"rows"`
}

func (t GrowthTable) Table(name string) Table {
	out := Table{Name: name, Headers: []string{"month", "sales_amount", "growth_mom"}}
	for _, r := range t.Rows {
		out.Rows = append(out.Rows, []any{r.Month, r.Sales, r.GrowthMoM.Value()})
	}
	return out
}

type PivotRow struct {
	Key    string    `json:"key"`
	Values []float64 `json:"values"`
}

// PivotTable holds one row per category and one column per observed month.
type PivotTable struct {
	Dimension Dimension   `json:"dimension"`
	Metric    Metric      `json:"metric"`
	Months    []time.Time `json:"months"`
	Rows      []PivotRow  `json:"rows"`
}

func (p PivotTable) Table(name string) Table {
	out := Table{Name: name, Headers: []string{string(p.Dimension)}}
	for _, m := range p.Months {
		out.Headers = append(out.Headers, m.Format("2006-01"))
	}
	for _, r := range p.Rows {
		row := make([]any, 0, len(r.Values)+1)
		row = append(row, r.Key)
		for _, v := range r.Values {
			row = append(row, v)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

type MarginStats struct {
	Count int         `json:"count"`
	Mean  NullFloat64 `json:"mean"`
	Std   NullFloat64 `json:"std"`
	Min   NullFloat64 `json:"min"`
	P10   NullFloat64 `json:"p10"`
	P25   NullFloat64 `json:"p25"`
	P50   NullFloat64 `json:"p50"`
	P75   NullFloat64 `json:"p75"`
	P90   NullFloat64 `json:"p90"`
	Max   NullFloat64 `json:"max"`
}

func (s MarginStats) Table(name string) Table {
	return Table{
		Name:    name,
		Headers: []string{"stat", "margin"},
		Rows: [][]any{
			{"count", float64(s.Count)},
			{"mean", s.Mean.Value()},
			{"std", s.Std.Value()},
			{"min", s.Min.Value()},
			{"10%", s.P10.Value()},
			{"25%", s.P25.Value()},
			{"50%", s.P50.Value()},
			{"75%", s.P75.Value()},
			{"90%", s.P90.Value()},
			{"max", s.Max.Value()},
		},
	}
}

type ColumnInfo struct {
	Column string `json:"column"`
	Type   string `json:"dtype"`
	Nulls  int    `json:"nulls"`
}

type DataDictionary struct {
	Columns []ColumnInfo `json:"columns"`
}

func (d DataDictionary) Table(name string) Table {
	out := Table{Name: name, Headers: []string{"column", "dtype", "nulls"}}
	for _, c := range d.Columns {
		out.Rows = append(out.Rows, []any{c.Column, c.Type, c.Nulls})
	}
	return out
}

type KPISet struct {
	Records      int         `json:"records"`
	TotalRevenue float64     `json:"total_revenue"`
	AvgRevenue   NullFloat64 `json:"avg_revenue"`
	TotalProfit  float64     `json:"total_profit"`
	AvgMargin    NullFloat64 `json:"avg_margin"`
	GrowthMoM    NullFloat64 `json:"growth_mom"`
}

func (k KPISet) Table(name string) Table {
	return Table{
		Name:    name,
		Headers: []string{"metric", "value"},
		Rows: [][]any{
			{"total_revenue", k.TotalRevenue},
			{"avg_revenue", k.AvgRevenue.Value()},
			{"total_profit", k.TotalProfit},
			{"avg_margin", k.AvgMargin.Value()},
			{"growth_mom", k.GrowthMoM.Value()},
			{"records", k.Records},
		},
	}
}

// TrendLine is a least-squares fit of monthly revenue against month index.
type TrendLine struct {
	Months    []time.Time `json:"months"`
	Actual    []float64   `json:"actual"`
	Fitted    []float64   `json:"fitted,omitempty"`
	Slope     NullFloat64 `json:"slope"`
	Intercept NullFloat64 `json:"intercept"`
}

type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type Histogram struct {
	Bins []HistogramBin `json:"bins"`
}

// Table is a generic rectangular projection used by exporters.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// Tabler is implemented by every summary result that can become a report sheet.
type Tabler interface {
	Table(name string) Table
}
