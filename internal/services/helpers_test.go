package services

import (
	"time"

	"sales-dashboard/internal/models"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// sampleDataset spans January, February and April 2024 with one loss-making
// product and one zero-sales record.
func sampleDataset() *models.Dataset {
	return models.NewDataset([]models.Record{
		models.NewRecord(day(2024, 1, 15), "Widget", "North", 100, 60, "Retail"),
		models.NewRecord(day(2024, 1, 20), "Gadget", "South", 200, 150, "Wholesale"),
		models.NewRecord(day(2024, 2, 10), "Widget", "North", 150, 90, "Retail"),
		models.NewRecord(day(2024, 2, 11), "Gizmo", "East", 50, 70, "Retail"),
		models.NewRecord(day(2024, 4, 5), "Gadget", "South", 0, 10, "Wholesale"),
	})
}

func keys(t models.SummaryTable) []string {
	out := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, r.Key)
	}
	return out
}

func rawTable(columns []string, rows ...[]string) models.RawTable {
	return models.RawTable{Columns: columns, Rows: rows}
}

var canonicalColumns = []string{"date", "product", "region", "sales_amount", "cost", "customer_type"}
