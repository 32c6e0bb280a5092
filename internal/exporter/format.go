package exporter

import (
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sales-dashboard/internal/models"
)

const dateLayout = "2006-01-02"

var printer = message.NewPrinter(language.English)

// FormatNumber renders v with thousands separators and two decimals.
func FormatNumber(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// FormatPercent renders a ratio as a percentage, or a dash when undefined.
func FormatPercent(v models.NullFloat64) string {
	if !v.Valid {
		return "—"
	}
	return printer.Sprintf("%.2f%%", v.Float64*100)
}

// FormatOptional renders an optional amount, or a dash when undefined.
func FormatOptional(v models.NullFloat64) string {
	if !v.Valid {
		return "—"
	}
	return FormatNumber(v.Float64)
}

// FormatCell renders a table cell for human-readable output.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(dateLayout)
	case float64:
		return FormatNumber(x)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	default:
		return printer.Sprint(x)
	}
}

// rawCell renders a table cell for machine-readable output.
func rawCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(dateLayout)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	default:
		return printer.Sprint(x)
	}
}
