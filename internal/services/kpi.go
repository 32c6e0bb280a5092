package services

import "sales-dashboard/internal/models"

// ComputeKPIs derives the headline metrics of ds. Metrics without data are
// left undefined rather than zero.
func ComputeKPIs(ds *models.Dataset) models.KPISet {
	k := models.KPISet{Records: ds.Len()}

	var marginSum float64
	var margins int
	for r := range ds.All() {
		k.TotalRevenue += r.SalesAmount
		k.TotalProfit += r.Profit
		if r.Margin.Valid {
			marginSum += r.Margin.Float64
			margins++
		}
	}

	if k.Records > 0 {
		k.AvgRevenue = models.Float(k.TotalRevenue / float64(k.Records))
	}
	if margins > 0 {
		k.AvgMargin = models.Float(marginSum / float64(margins))
	}

	monthly := MonthlyTrends(ds)
	if n := len(monthly.Rows); n >= 2 {
		k.GrowthMoM = growth(monthly.Rows[n-2].Sales, monthly.Rows[n-1].Sales)
	}
	return k
}
