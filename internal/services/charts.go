package services

import (
	"math"

	"sales-dashboard/internal/models"
)

const DefaultHistogramBins = 30

// RevenueTrend fits a straight line through monthly revenue. Slope and
// intercept stay undefined with fewer than two months.
func RevenueTrend(monthly models.SummaryTable) models.TrendLine {
	t := models.TrendLine{}
	for _, r := range monthly.Rows {
		t.Months = append(t.Months, r.Period)
		t.Actual = append(t.Actual, r.Sales)
	}
	n := float64(len(t.Actual))
	if len(t.Actual) < 2 {
		return t
	}

	var sx, sy, sxx, sxy float64
	for i, y := range t.Actual {
		x := float64(i)
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	slope := (n*sxy - sx*sy) / (n*sxx - sx*sx)
	intercept := (sy - slope*sx) / n

	t.Slope = models.Float(slope)
	t.Intercept = models.Float(intercept)
	t.Fitted = make([]float64, len(t.Actual))
	for i := range t.Fitted {
		t.Fitted[i] = slope*float64(i) + intercept
	}
	return t
}

// MarginHistogram buckets defined margins into equal-width bins spanning
// [min, max]. A degenerate range yields a single bin.
func MarginHistogram(ds *models.Dataset, bins int) models.Histogram {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	values := definedMargins(ds)
	h := models.Histogram{Bins: []models.HistogramBin{}}
	if len(values) == 0 {
		return h
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		h.Bins = append(h.Bins, models.HistogramBin{Lower: lo, Upper: hi, Count: len(values)})
		return h
	}

	width := (hi - lo) / float64(bins)
	h.Bins = make([]models.HistogramBin, bins)
	for i := range h.Bins {
		h.Bins[i].Lower = lo + float64(i)*width
		h.Bins[i].Upper = lo + float64(i+1)*width
	}
	h.Bins[bins-1].Upper = hi
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		h.Bins[i].Count++
	}
	return h
}
