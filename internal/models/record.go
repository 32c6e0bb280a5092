package models

import (
	"iter"
	"slices"
	"time"
)

// Canonical column names of the input workbook.
const (
	ColDate         = "date"
	ColProduct      = "product"
	ColRegion       = "region"
	ColSalesAmount  = "sales_amount"
	ColCost         = "cost"
	ColCustomerType = "customer_type"
)

var RequiredColumns = []string{ColDate, ColProduct, ColRegion, ColSalesAmount, ColCost, ColCustomerType}

type Record struct {
	Date         time.Time   `json:"date"`
	Product      string      `json:"product"`
	Region       string      `json:"region"`
	SalesAmount  float64     `json:"sales_amount"`
	Cost         float64     `json:"cost"`
	CustomerType string      `json:"customer_type"`
	Profit       float64     `json:"profit"`
	Margin       NullFloat64 `json:"margin"`
	Month        time.Time   `json:"month"`
	Quarter      time.Time   `json:"quarter"`
}

// NewRecord builds a record and fills in the derived fields.
func NewRecord(date time.Time, product, region string, sales, cost float64, customerType string) Record {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	r := Record{
		Date:         day,
		Product:      product,
		Region:       region,
		SalesAmount:  sales,
		Cost:         cost,
		CustomerType: customerType,
		Profit:       sales - cost,
		Month:        MonthStart(day),
		Quarter:      QuarterStart(day),
	}
	if sales > 0 {
		r.Margin = Float(r.Profit / sales)
	}
	return r
}

func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func QuarterStart(t time.Time) time.Time {
	first := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), first, 1, 0, 0, 0, 0, time.UTC)
}

// Dataset is an immutable, ordered set of validated records. It is safe for
// concurrent readers.
type Dataset struct {
	records []Record
}

// NewDataset copies records into a new Dataset.
func NewDataset(records []Record) *Dataset {
	return &Dataset{records: slices.Clone(records)}
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// All iterates records in dataset order.
func (d *Dataset) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		if d == nil {
			return
		}
		for _, r := range d.records {
			if !yield(r) {
				return
			}
		}
	}
}

// Records returns a copy of the underlying records.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return slices.Clone(d.records)
}

// Filter narrows a Dataset. Zero dates and empty sets impose no restriction.
type Filter struct {
	From          time.Time `json:"from,omitzero"`
	To            time.Time `json:"to,omitzero"`
	Regions       []string  `json:"regions,omitempty"`
	CustomerTypes []string  `json:"customer_types,omitempty"`
}

func (f Filter) IsEmpty() bool {
	return f.From.IsZero() && f.To.IsZero() && len(f.Regions) == 0 && len(f.CustomerTypes) == 0
}

type FilterOptions struct {
	Regions       []string  `json:"regions"`
	CustomerTypes []string  `json:"customer_types"`
	DateMin       time.Time `json:"date_min,omitzero"`
	DateMax       time.Time `json:"date_max,omitzero"`
}

// RawTable is the untyped tabular input read from a workbook or CSV file.
// SerialDates marks workbook input, where a bare number in a date cell is an
// Excel day serial rather than text.
type RawTable struct {
	Columns     []string
	Rows        [][]string
	SerialDates bool
}
