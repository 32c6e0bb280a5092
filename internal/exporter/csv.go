package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"sales-dashboard/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes t as CSV with a UTF-8 BOM so spreadsheet applications pick
// the right encoding.
func WriteCSV(w io.Writer, t models.Table) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(t.Headers))
	for i, row := range t.Rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, rawCell(v))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
