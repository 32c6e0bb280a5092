package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/models"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// ReadFile reads a raw table from an .xlsx/.xlsm workbook or a .csv file.
// For workbooks an empty sheet name selects the first sheet.
func ReadFile(path, sheet string) (models.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return ReadFrom(f, filepath.Base(path), sheet)
}

// ReadFrom reads a raw table from r. The format is chosen by name's extension.
func ReadFrom(r io.Reader, name, sheet string) (models.RawTable, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(r, sheet)
	case ".csv":
		return readCSV(r)
	default:
		return models.RawTable{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

func readWorkbook(r io.Reader, sheet string) (models.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return models.RawTable{}, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	// Raw values keep dates as serial numbers instead of locale formatted text.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return models.RawTable{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	raw := toRawTable(rows)
	raw.SerialDates = true
	return raw, nil
}

func readCSV(r io.Reader) (models.RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return models.RawTable{}, fmt.Errorf("parse csv: %w", err)
	}
	return toRawTable(rows), nil
}

func toRawTable(rows [][]string) models.RawTable {
	if len(rows) == 0 {
		return models.RawTable{}
	}
	return models.RawTable{Columns: rows[0], Rows: rows[1:]}
}
